package v1

import (
	"io"
	"net/http"
	"strconv"

	"go-studio-backend/internal/delivery/http/middleware"
	"go-studio-backend/internal/delivery/http/response"
	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"
	"go-studio-backend/pkg/media"

	"github.com/gin-gonic/gin"
)

// maxPostureUploadBytes caps a single posture media upload (images and short
// squat videos).
const maxPostureUploadBytes = 50 << 20

type OnboardingHandler struct {
	onboardingUC domain.OnboardingUsecase
	limiter      *media.UploadLimiter
}

func NewOnboardingHandler(protected *gin.RouterGroup, onboardingUC domain.OnboardingUsecase, limiter *media.UploadLimiter) {
	handler := &OnboardingHandler{onboardingUC: onboardingUC, limiter: limiter}

	onboarding := protected.Group("/onboarding")
	{
		onboarding.GET("/status", handler.Status)
		onboarding.POST("/parq", handler.SubmitParq)
		onboarding.GET("/posture", handler.GetPostureAssessment)
		onboarding.POST("/posture/:slot", handler.UploadPostureMedia)
		onboarding.POST("/safety-video/progress", handler.SafetyVideoProgress)
	}

	admin := protected.Group("/admin/onboarding")
	admin.Use(middleware.RequireRoles(domain.RoleAdmin))
	{
		admin.POST("/:userId/clear-medical-review", handler.ClearMedicalReview)
		admin.POST("/:userId/reset-stage", handler.ResetStage)
	}
}

// Status godoc
// @Summary      Onboarding status
// @Description  Per-stage status plus computed booking eligibility
// @Tags         onboarding
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.OnboardingStatus}
// @Failure      401  {object}  response.Response
// @Router       /onboarding/status [get]
// @Security     BearerAuth
func (h *OnboardingHandler) Status(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))

	status, err := h.onboardingUC.Status(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Onboarding status retrieved", status)
}

// SubmitParq godoc
// @Summary      Submit PAR-Q
// @Description  Submit the readiness questionnaire. Any positive answer flags the account for medical review.
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        parq  body      domain.ParqSubmission  true  "Questionnaire answers"
// @Success      200   {object}  response.Response{data=domain.ParqResult}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Router       /onboarding/parq [post]
// @Security     BearerAuth
func (h *OnboardingHandler) SubmitParq(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))

	var sub domain.ParqSubmission
	if !bindAndValidate(c, &sub) {
		return
	}

	result, err := h.onboardingUC.SubmitParq(c, userID, &sub)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "PAR-Q submitted", result)
}

// GetPostureAssessment godoc
// @Summary      Posture assessment
// @Description  The caller's posture media with presigned view URLs
// @Tags         onboarding
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.PostureAssessment}
// @Failure      404  {object}  response.Response
// @Router       /onboarding/posture [get]
// @Security     BearerAuth
func (h *OnboardingHandler) GetPostureAssessment(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))

	pa, err := h.onboardingUC.GetPostureAssessment(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Posture assessment retrieved", pa)
}

// UploadPostureMedia godoc
// @Summary      Upload posture media
// @Description  Upload one of the five posture slots (front_view_image, side_view_image, anterior_squat_video, posterior_squat_video, side_squat_video)
// @Tags         onboarding
// @Accept       multipart/form-data
// @Produce      json
// @Param        slot  path      string  true  "Media slot"
// @Param        file  formData  file    true  "Image or video file"
// @Success      200   {object}  response.Response{data=domain.PostureAssessment}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      429   {object}  response.Response
// @Router       /onboarding/posture/{slot} [post]
// @Security     BearerAuth
func (h *OnboardingHandler) UploadPostureMedia(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))
	slot := domain.PostureMediaSlot(c.Param("slot"))

	allowed, retryAfter, err := h.limiter.AllowUpload(c.Request.Context(), c.ClientIP(), userID)
	if err == nil && !allowed {
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		response.Error(c, http.StatusTooManyRequests, "Upload limit reached. Please try again later.", nil)
		c.Abort()
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.BadRequest("No file uploaded"))
		return
	}
	if file.Size > maxPostureUploadBytes {
		c.Error(apperror.BadRequest("File exceeds the 50MB upload limit"))
		return
	}

	src, err := file.Open()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxPostureUploadBytes+1))
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	if len(data) > maxPostureUploadBytes {
		c.Error(apperror.BadRequest("File exceeds the 50MB upload limit"))
		return
	}

	contentType := file.Header.Get("Content-Type")

	pa, err := h.onboardingUC.AttachPostureMedia(c, userID, slot, file.Filename, data, contentType)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Media uploaded", pa)
}

// SafetyVideoProgress godoc
// @Summary      Report safety video progress
// @Description  Records watch progress. The stage completes at 90% watched.
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        progress  body      domain.SafetyVideoProgressRequest  true  "Watch progress"
// @Success      200       {object}  response.Response{data=domain.OnboardingStatus}
// @Failure      400       {object}  response.Response
// @Failure      403       {object}  response.Response
// @Router       /onboarding/safety-video/progress [post]
// @Security     BearerAuth
func (h *OnboardingHandler) SafetyVideoProgress(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))

	var req domain.SafetyVideoProgressRequest
	if !bindAndValidate(c, &req) {
		return
	}

	status, err := h.onboardingUC.ReportSafetyVideoProgress(c, userID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Progress recorded", status)
}

// ClearMedicalReview godoc
// @Summary      Clear medical review
// @Description  Marks a held PAR-Q as cleared so the user can continue onboarding
// @Tags         admin
// @Produce      json
// @Param        userId  path      int  true  "User ID"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /admin/onboarding/{userId}/clear-medical-review [post]
// @Security     BearerAuth
func (h *OnboardingHandler) ClearMedicalReview(c *gin.Context) {
	adminID := c.GetInt64(string(domain.KeyUserID))
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	if err := h.onboardingUC.ClearMedicalReview(c, adminID, userID); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Medical review cleared", nil)
}

type ResetStageRequest struct {
	Stage domain.OnboardingStage `json:"stage" validate:"required"`
}

// ResetStage godoc
// @Summary      Reset onboarding stage
// @Description  Sets one stage back to NOT_STARTED so the user can redo it
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        userId  path      int                true  "User ID"
// @Param        stage   body      ResetStageRequest  true  "Stage to reset (PARQ, POSTURE_ASSESSMENT, SAFETY_VIDEO)"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /admin/onboarding/{userId}/reset-stage [post]
// @Security     BearerAuth
func (h *OnboardingHandler) ResetStage(c *gin.Context) {
	adminID := c.GetInt64(string(domain.KeyUserID))
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	var req ResetStageRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.onboardingUC.ResetStage(c, adminID, userID, req.Stage); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Stage reset", nil)
}
