package v1

import (
	"net/http"
	"strconv"

	"go-studio-backend/internal/delivery/http/middleware"
	"go-studio-backend/internal/delivery/http/response"
	"go-studio-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CreditHandler struct {
	creditUC domain.CreditUsecase
}

func NewCreditHandler(protected *gin.RouterGroup, creditUC domain.CreditUsecase) {
	handler := &CreditHandler{creditUC: creditUC}

	credits := protected.Group("/credits")
	{
		credits.GET("/balance", handler.Balance)
		credits.GET("/history", handler.History)
		credits.GET("/packages", handler.ListPackages)
		credits.POST("/packages/:id/purchase", handler.PurchasePackage)
	}

	admin := protected.Group("/admin/credits")
	admin.Use(middleware.RequireRoles(domain.RoleAdmin))
	{
		admin.POST("/grant", handler.Grant)
		admin.POST("/refund", handler.Refund)
	}
}

// Balance godoc
// @Summary      Credit balance
// @Description  Sum of the caller's active, unexpired credit entries
// @Tags         credits
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /credits/balance [get]
// @Security     BearerAuth
func (h *CreditHandler) Balance(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))

	balance, err := h.creditUC.Balance(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Balance retrieved", gin.H{"balance": balance})
}

// History godoc
// @Summary      Credit history
// @Description  The caller's credit ledger entries, newest first
// @Tags         credits
// @Produce      json
// @Param        limit  query     int  false  "Max rows (default 50)"
// @Success      200    {object}  response.Response{data=[]domain.CreditLog}
// @Failure      401    {object}  response.Response
// @Router       /credits/history [get]
// @Security     BearerAuth
func (h *CreditHandler) History(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.creditUC.History(c, userID, limit)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Credit history retrieved", logs)
}

// ListPackages godoc
// @Summary      List credit packages
// @Tags         credits
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.CreditPackage}
// @Router       /credits/packages [get]
// @Security     BearerAuth
func (h *CreditHandler) ListPackages(c *gin.Context) {
	packages, err := h.creditUC.ListPackages(c)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Packages retrieved", packages)
}

// PurchasePackage godoc
// @Summary      Purchase a credit package
// @Description  Grants the package's credits with its validity window as expiry
// @Tags         credits
// @Produce      json
// @Param        id   path      int  true  "Package ID"
// @Success      201  {object}  response.Response{data=domain.CreditEntry}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /credits/packages/{id}/purchase [post]
// @Security     BearerAuth
func (h *CreditHandler) PurchasePackage(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))
	packageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	entry, err := h.creditUC.PurchasePackage(c, userID, packageID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Package purchased", entry)
}

// Grant godoc
// @Summary      Grant credits
// @Description  Admin grant of credits to any user, written to the hash-chained ledger
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        grant  body      domain.GrantRequest  true  "Grant details"
// @Success      201    {object}  response.Response{data=domain.CreditEntry}
// @Failure      400    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Router       /admin/credits/grant [post]
// @Security     BearerAuth
func (h *CreditHandler) Grant(c *gin.Context) {
	var req domain.GrantRequest
	if !bindAndValidate(c, &req) {
		return
	}

	entry, err := h.creditUC.Grant(c, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Credits granted", entry)
}

type RefundCreditsRequest struct {
	UserID     int64   `json:"user_id" validate:"required"`
	Amount     int     `json:"amount" validate:"required,gt=0"`
	EntityType string  `json:"entity_type" validate:"required,max=50"`
	EntityID   string  `json:"entity_id" validate:"required,max=64"`
	Note       *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// Refund godoc
// @Summary      Refund credits
// @Description  Admin refund against a prior redemption, restoring consumed entries
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        refund  body      RefundCreditsRequest  true  "Refund details"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Failure      403     {object}  response.Response
// @Router       /admin/credits/refund [post]
// @Security     BearerAuth
func (h *CreditHandler) Refund(c *gin.Context) {
	var req RefundCreditsRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ref := domain.RedemptionRef{EntityType: req.EntityType, EntityID: req.EntityID}
	if req.Note != nil {
		ref.Note = *req.Note
	}

	if err := h.creditUC.Refund(c, req.UserID, req.Amount, ref); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Credits refunded", nil)
}
