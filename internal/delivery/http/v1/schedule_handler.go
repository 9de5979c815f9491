package v1

import (
	"net/http"
	"time"

	"go-studio-backend/internal/delivery/http/middleware"
	"go-studio-backend/internal/delivery/http/response"
	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	scheduleUC domain.ScheduleUsecase
}

func NewScheduleHandler(protected *gin.RouterGroup, scheduleUC domain.ScheduleUsecase) {
	handler := &ScheduleHandler{scheduleUC: scheduleUC}

	schedule := protected.Group("/schedule")
	{
		schedule.GET("/classes", handler.ListClasses)
		schedule.GET("/classes/:id", handler.GetClass)
		schedule.GET("/service-types", handler.ListServiceTypes)
	}

	staff := protected.Group("/schedule")
	staff.Use(middleware.RequireRoles(domain.RoleAdmin, domain.RoleTrainer))
	{
		staff.POST("/classes", handler.CreateClass)
		staff.POST("/classes/:id/cancel", handler.CancelClass)
		staff.POST("/classes/:id/complete", handler.CompleteClass)
		staff.POST("/service-types", handler.CreateServiceType)
		staff.POST("/sessions", handler.CreateSession)
		staff.GET("/trainers/:id/sessions", handler.TrainerSessions)
	}
}

// ListClasses godoc
// @Summary      List classes
// @Description  Classes within a time window. Defaults to the next 7 days.
// @Tags         schedule
// @Produce      json
// @Param        from  query     string  false  "RFC3339 start of window"
// @Param        to    query     string  false  "RFC3339 end of window"
// @Success      200   {object}  response.Response{data=[]domain.Class}
// @Failure      400   {object}  response.Response
// @Router       /schedule/classes [get]
// @Security     BearerAuth
func (h *ScheduleHandler) ListClasses(c *gin.Context) {
	from, to, ok := timeWindow(c, 7*24*time.Hour)
	if !ok {
		return
	}

	classes, err := h.scheduleUC.ListClasses(c, from, to)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Classes retrieved", classes)
}

// GetClass godoc
// @Summary      Get class
// @Tags         schedule
// @Produce      json
// @Param        id   path      int  true  "Class ID"
// @Success      200  {object}  response.Response{data=domain.Class}
// @Failure      404  {object}  response.Response
// @Router       /schedule/classes/{id} [get]
// @Security     BearerAuth
func (h *ScheduleHandler) GetClass(c *gin.Context) {
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}

	class, err := h.scheduleUC.GetClass(c, classID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Class retrieved", class)
}

// ListServiceTypes godoc
// @Summary      List service types
// @Tags         schedule
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.ServiceType}
// @Router       /schedule/service-types [get]
// @Security     BearerAuth
func (h *ScheduleHandler) ListServiceTypes(c *gin.Context) {
	types, err := h.scheduleUC.ListServiceTypes(c)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Service types retrieved", types)
}

// CreateClass godoc
// @Summary      Create class
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Param        class  body      domain.CreateClassRequest  true  "Class details"
// @Success      201    {object}  response.Response{data=domain.Class}
// @Failure      400    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Router       /schedule/classes [post]
// @Security     BearerAuth
func (h *ScheduleHandler) CreateClass(c *gin.Context) {
	actorID := c.GetInt64(string(domain.KeyUserID))

	var req domain.CreateClassRequest
	if !bindAndValidate(c, &req) {
		return
	}

	class, err := h.scheduleUC.CreateClass(c, actorID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Class created", class)
}

// CancelClass godoc
// @Summary      Cancel class
// @Description  Cancels the instance and refunds every active booking
// @Tags         schedule
// @Produce      json
// @Param        id   path      int  true  "Class ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /schedule/classes/{id}/cancel [post]
// @Security     BearerAuth
func (h *ScheduleHandler) CancelClass(c *gin.Context) {
	actorID := c.GetInt64(string(domain.KeyUserID))
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.scheduleUC.CancelClass(c, actorID, classID); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Class cancelled", nil)
}

// CompleteClass godoc
// @Summary      Complete class
// @Tags         schedule
// @Produce      json
// @Param        id   path      int  true  "Class ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /schedule/classes/{id}/complete [post]
// @Security     BearerAuth
func (h *ScheduleHandler) CompleteClass(c *gin.Context) {
	actorID := c.GetInt64(string(domain.KeyUserID))
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.scheduleUC.CompleteClass(c, actorID, classID); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Class completed", nil)
}

// CreateServiceType godoc
// @Summary      Create service type
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Param        serviceType  body      domain.CreateServiceTypeRequest  true  "Service type details"
// @Success      201          {object}  response.Response{data=domain.ServiceType}
// @Failure      400          {object}  response.Response
// @Router       /schedule/service-types [post]
// @Security     BearerAuth
func (h *ScheduleHandler) CreateServiceType(c *gin.Context) {
	var req domain.CreateServiceTypeRequest
	if !bindAndValidate(c, &req) {
		return
	}

	st, err := h.scheduleUC.CreateServiceType(c, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Service type created", st)
}

// CreateSession godoc
// @Summary      Create private session
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Param        session  body      domain.CreateSessionRequest  true  "Session details"
// @Success      201      {object}  response.Response{data=domain.PrivateSession}
// @Failure      400      {object}  response.Response
// @Router       /schedule/sessions [post]
// @Security     BearerAuth
func (h *ScheduleHandler) CreateSession(c *gin.Context) {
	actorID := c.GetInt64(string(domain.KeyUserID))

	var req domain.CreateSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	session, err := h.scheduleUC.CreateSession(c, actorID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Session created", session)
}

// TrainerSessions godoc
// @Summary      Trainer sessions
// @Description  A trainer's private sessions within a time window
// @Tags         schedule
// @Produce      json
// @Param        id    path      int     true   "Trainer ID"
// @Param        from  query     string  false  "RFC3339 start of window"
// @Param        to    query     string  false  "RFC3339 end of window"
// @Success      200   {object}  response.Response{data=[]domain.PrivateSession}
// @Failure      400   {object}  response.Response
// @Router       /schedule/trainers/{id}/sessions [get]
// @Security     BearerAuth
func (h *ScheduleHandler) TrainerSessions(c *gin.Context) {
	trainerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	from, to, ok := timeWindow(c, 30*24*time.Hour)
	if !ok {
		return
	}

	sessions, err := h.scheduleUC.TrainerSessions(c, trainerID, from, to)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Sessions retrieved", sessions)
}

// timeWindow parses optional from/to query params, defaulting to
// [now, now+span). It writes the error response itself on bad input.
func timeWindow(c *gin.Context, span time.Duration) (time.Time, time.Time, bool) {
	from := time.Now()
	to := from.Add(span)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.Error(apperror.BadRequest("Invalid 'from' timestamp, expected RFC3339"))
			return time.Time{}, time.Time{}, false
		}
		from = parsed
		to = from.Add(span)
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.Error(apperror.BadRequest("Invalid 'to' timestamp, expected RFC3339"))
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}
	if !to.After(from) {
		c.Error(apperror.BadRequest("'to' must be after 'from'"))
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
