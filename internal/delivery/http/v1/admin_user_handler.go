package v1

import (
	"net/http"
	"strconv"

	"go-studio-backend/internal/delivery/http/middleware"
	"go-studio-backend/internal/delivery/http/response"
	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AdminUserHandler struct {
	adminUC domain.AdminUserUsecase
	authUC  domain.AuthUsecase
}

func NewAdminUserHandler(protected *gin.RouterGroup, adminUC domain.AdminUserUsecase, authUC domain.AuthUsecase) {
	handler := &AdminUserHandler{adminUC: adminUC, authUC: authUC}

	users := protected.Group("/admin/users")
	users.Use(middleware.RequireRoles(domain.RoleAdmin))
	{
		users.GET("", handler.List)
		users.POST("", handler.Create)
		users.PATCH("/:id", handler.Update)
		users.PUT("/:id/role", handler.AssignRole)
		users.DELETE("/:id", handler.Deactivate)
		users.POST("/:id/activate", handler.Activate)
	}
}

// List godoc
// @Summary      List users
// @Description  Paginated user listing, optionally filtered by role
// @Tags         admin
// @Produce      json
// @Param        role       query     string  false  "Role filter (ADMIN, TRAINER, CLIENT, HOME_USER)"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /admin/users [get]
// @Security     BearerAuth
func (h *AdminUserHandler) List(c *gin.Context) {
	role := domain.Role(c.Query("role"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.adminUC.ListUsers(c, role, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Users retrieved", result)
}

// Create godoc
// @Summary      Create user
// @Description  Create a user with an explicit role, including staff roles
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        user  body      domain.CreateUserRequest  true  "User details"
// @Success      201   {object}  response.Response{data=domain.User}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /admin/users [post]
// @Security     BearerAuth
func (h *AdminUserHandler) Create(c *gin.Context) {
	var req domain.CreateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.adminUC.CreateUser(c, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "User created", user)
}

// Update godoc
// @Summary      Update user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int                       true  "User ID"
// @Param        user  body      domain.UpdateUserRequest  true  "Fields to update"
// @Success      200   {object}  response.Response{data=domain.User}
// @Failure      404   {object}  response.Response
// @Router       /admin/users/{id} [patch]
// @Security     BearerAuth
func (h *AdminUserHandler) Update(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req domain.UpdateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.adminUC.UpdateUser(c, userID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "User updated", user)
}

type AssignRoleRequest struct {
	Role domain.Role `json:"role" validate:"required"`
}

// AssignRole godoc
// @Summary      Assign role
// @Description  Change a user's role. Takes effect on the user's next request.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "User ID"
// @Param        role  body      AssignRoleRequest  true  "New role"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /admin/users/{id}/role [put]
// @Security     BearerAuth
func (h *AdminUserHandler) AssignRole(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req AssignRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.authUC.AssignRole(c, userID, req.Role); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Role assigned", nil)
}

// Deactivate godoc
// @Summary      Deactivate user
// @Description  Soft-delete a user. Their data and ledger history are kept.
// @Tags         admin
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/users/{id} [delete]
// @Security     BearerAuth
func (h *AdminUserHandler) Deactivate(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.adminUC.SetUserActive(c, userID, false); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "User deactivated", nil)
}

// Activate godoc
// @Summary      Reactivate user
// @Tags         admin
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/users/{id}/activate [post]
// @Security     BearerAuth
func (h *AdminUserHandler) Activate(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.adminUC.SetUserActive(c, userID, true); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "User activated", nil)
}

// pathID parses a numeric path parameter, writing the error response itself
// on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.BadRequest("Invalid " + name + " parameter"))
		return 0, false
	}
	return id, true
}
