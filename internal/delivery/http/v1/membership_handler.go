package v1

import (
	"net/http"

	"go-studio-backend/internal/delivery/http/middleware"
	"go-studio-backend/internal/delivery/http/response"
	"go-studio-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type MembershipHandler struct {
	membershipUC domain.MembershipUsecase
}

func NewMembershipHandler(protected *gin.RouterGroup, membershipUC domain.MembershipUsecase) {
	handler := &MembershipHandler{membershipUC: membershipUC}

	memberships := protected.Group("/memberships")
	{
		memberships.GET("/types", handler.ListTypes)
		memberships.GET("/me", handler.MyMembership)
		memberships.POST("/enroll", handler.Enroll)
		memberships.POST("/:id/pause", handler.Pause)
		memberships.POST("/:id/resume", handler.Resume)
		memberships.POST("/:id/cancel", handler.Cancel)
	}

	admin := protected.Group("/admin/memberships")
	admin.Use(middleware.RequireRoles(domain.RoleAdmin))
	{
		admin.POST("/types", handler.CreateType)
	}
}

// ListTypes godoc
// @Summary      List membership types
// @Tags         memberships
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.MembershipType}
// @Router       /memberships/types [get]
// @Security     BearerAuth
func (h *MembershipHandler) ListTypes(c *gin.Context) {
	types, err := h.membershipUC.ListTypes(c)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Membership types retrieved", types)
}

// MyMembership godoc
// @Summary      My membership
// @Tags         memberships
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Membership}
// @Failure      404  {object}  response.Response
// @Router       /memberships/me [get]
// @Security     BearerAuth
func (h *MembershipHandler) MyMembership(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))

	membership, err := h.membershipUC.MyMembership(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Membership retrieved", membership)
}

// Enroll godoc
// @Summary      Enroll in a membership
// @Description  Creates an active membership and grants its first credit allocation
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Param        enroll  body      domain.EnrollMembershipRequest  true  "Membership type"
// @Success      201     {object}  response.Response{data=domain.Membership}
// @Failure      400     {object}  response.Response
// @Failure      409     {object}  response.Response
// @Router       /memberships/enroll [post]
// @Security     BearerAuth
func (h *MembershipHandler) Enroll(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))

	var req domain.EnrollMembershipRequest
	if !bindAndValidate(c, &req) {
		return
	}

	membership, err := h.membershipUC.Enroll(c, userID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Membership created", membership)
}

// Pause godoc
// @Summary      Pause membership
// @Tags         memberships
// @Produce      json
// @Param        id   path      int  true  "Membership ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /memberships/{id}/pause [post]
// @Security     BearerAuth
func (h *MembershipHandler) Pause(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))
	membershipID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.membershipUC.Pause(c, userID, membershipID); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Membership paused", nil)
}

// Resume godoc
// @Summary      Resume membership
// @Tags         memberships
// @Produce      json
// @Param        id   path      int  true  "Membership ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /memberships/{id}/resume [post]
// @Security     BearerAuth
func (h *MembershipHandler) Resume(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))
	membershipID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.membershipUC.Resume(c, userID, membershipID); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Membership resumed", nil)
}

// Cancel godoc
// @Summary      Cancel membership
// @Tags         memberships
// @Produce      json
// @Param        id   path      int  true  "Membership ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /memberships/{id}/cancel [post]
// @Security     BearerAuth
func (h *MembershipHandler) Cancel(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))
	membershipID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.membershipUC.Cancel(c, userID, membershipID); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Membership cancelled", nil)
}

// CreateType godoc
// @Summary      Create membership type
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        membershipType  body      domain.CreateMembershipTypeRequest  true  "Type details"
// @Success      201             {object}  response.Response{data=domain.MembershipType}
// @Failure      400             {object}  response.Response
// @Router       /admin/memberships/types [post]
// @Security     BearerAuth
func (h *MembershipHandler) CreateType(c *gin.Context) {
	var req domain.CreateMembershipTypeRequest
	if !bindAndValidate(c, &req) {
		return
	}

	mt, err := h.membershipUC.CreateType(c, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Membership type created", mt)
}
