package v1

import (
	"net/http"

	"go-studio-backend/internal/delivery/http/middleware"
	"go-studio-backend/internal/delivery/http/response"
	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingUC domain.BookingUsecase
}

func NewBookingHandler(protected *gin.RouterGroup, bookingUC domain.BookingUsecase) {
	handler := &BookingHandler{bookingUC: bookingUC}

	bookings := protected.Group("/bookings")
	{
		bookings.POST("/class", handler.BookClass)
		bookings.POST("/session", handler.BookSession)
		bookings.GET("/me", handler.MyBookings)
		bookings.POST("/:id/cancel", handler.Cancel)
	}

	staff := protected.Group("/admin/bookings")
	staff.Use(middleware.RequireRoles(domain.RoleAdmin, domain.RoleTrainer))
	{
		staff.POST("", handler.AdminBook)
		staff.PATCH("/:id/attendance", handler.MarkAttendance)
		staff.GET("/classes/:id/roster", handler.ClassRoster)
	}
}

// BookClass godoc
// @Summary      Book a class
// @Description  Reserves a spot and redeems the class's credit cost atomically
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        booking  body      domain.BookClassRequest  true  "Class to book"
// @Success      201      {object}  response.Response{data=domain.Booking}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /bookings/class [post]
// @Security     BearerAuth
func (h *BookingHandler) BookClass(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))

	var req domain.BookClassRequest
	if !bindAndValidate(c, &req) {
		return
	}

	booking, err := h.bookingUC.BookClass(c, userID, req.ClassID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Class booked", booking)
}

// BookSession godoc
// @Summary      Book a private session
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        booking  body      domain.BookSessionRequest  true  "Session to book"
// @Success      201      {object}  response.Response{data=domain.Booking}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /bookings/session [post]
// @Security     BearerAuth
func (h *BookingHandler) BookSession(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))

	var req domain.BookSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	booking, err := h.bookingUC.BookPrivateSession(c, userID, req.SessionID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Session booked", booking)
}

// MyBookings godoc
// @Summary      My bookings
// @Tags         bookings
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Booking}
// @Failure      401  {object}  response.Response
// @Router       /bookings/me [get]
// @Security     BearerAuth
func (h *BookingHandler) MyBookings(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))

	bookings, err := h.bookingUC.MyBookings(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Bookings retrieved", bookings)
}

// Cancel godoc
// @Summary      Cancel a booking
// @Description  Refunds credits only when cancelled before the cutoff window
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id      path      int                          true   "Booking ID"
// @Param        cancel  body      domain.CancelBookingRequest  false  "Optional reason"
// @Success      200     {object}  response.Response
// @Failure      403     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /bookings/{id}/cancel [post]
// @Security     BearerAuth
func (h *BookingHandler) Cancel(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	// Body is optional; an empty body means no reason given.
	var req domain.CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if !bindAndValidate(c, &req) {
			return
		}
	}

	if err := h.bookingUC.CancelBooking(c, userID, bookingID, req.Reason); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Booking cancelled", nil)
}

// AdminBook godoc
// @Summary      Book on behalf of a client
// @Description  Staff booking that bypasses credit deduction but still enforces capacity
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        booking  body      domain.AdminBookRequest  true  "Booking details"
// @Success      201      {object}  response.Response{data=domain.Booking}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /admin/bookings [post]
// @Security     BearerAuth
func (h *BookingHandler) AdminBook(c *gin.Context) {
	staffID := c.GetInt64(string(domain.KeyUserID))

	var req domain.AdminBookRequest
	if !bindAndValidate(c, &req) {
		return
	}

	booking, err := h.bookingUC.AdminBook(c, staffID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Booking created", booking)
}

type AttendanceRequest struct {
	Status domain.BookingStatus `json:"status" validate:"required,oneof=ATTENDED NO_SHOW"`
}

// MarkAttendance godoc
// @Summary      Mark attendance
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id          path      int                true  "Booking ID"
// @Param        attendance  body      AttendanceRequest  true  "ATTENDED or NO_SHOW"
// @Success      200         {object}  response.Response
// @Failure      400         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /admin/bookings/{id}/attendance [patch]
// @Security     BearerAuth
func (h *BookingHandler) MarkAttendance(c *gin.Context) {
	staffID := c.GetInt64(string(domain.KeyUserID))
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req AttendanceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if req.Status != domain.StatusAttended && req.Status != domain.StatusNoShow {
		c.Error(apperror.BadRequest("Status must be ATTENDED or NO_SHOW"))
		return
	}

	if err := h.bookingUC.MarkAttendance(c, staffID, bookingID, req.Status); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Attendance recorded", nil)
}

// ClassRoster godoc
// @Summary      Class roster
// @Description  Active bookings for one class instance
// @Tags         admin
// @Produce      json
// @Param        id   path      int  true  "Class ID"
// @Success      200  {object}  response.Response{data=[]domain.Booking}
// @Failure      404  {object}  response.Response
// @Router       /admin/bookings/classes/{id}/roster [get]
// @Security     BearerAuth
func (h *BookingHandler) ClassRoster(c *gin.Context) {
	staffID := c.GetInt64(string(domain.KeyUserID))
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}

	roster, err := h.bookingUC.ClassRoster(c, staffID, classID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Roster retrieved", roster)
}
