package v1

import (
	"strings"

	"go-studio-backend/internal/delivery/http/response"
	"go-studio-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"net/http"
)

// validate is shared by all handlers in this package. Custom validators
// (valid_name, valid_phone, no_emoji, future_time) are registered once.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	validation.RegisterValidators(v)
	return v
}

// bindAndValidate decodes the JSON body into req and runs struct validation.
// On failure it writes the error response and returns false; the handler
// should just return.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error(), nil)
		return false
	}
	if err := validate.Struct(req); err != nil {
		msgs := validation.FormatValidationErrors(err)
		response.Error(c, http.StatusBadRequest, strings.Join(msgs, "; "), nil)
		return false
	}
	return true
}
