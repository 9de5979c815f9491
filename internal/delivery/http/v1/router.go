package v1

import (
	"net/http"

	"go-studio-backend/config"
	"go-studio-backend/internal/delivery/http/middleware"
	"go-studio-backend/internal/delivery/http/response"
	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/audit"
	"go-studio-backend/pkg/auth"
	"go-studio-backend/pkg/media"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	AdminUserUC   domain.AdminUserUsecase
	CreditUC      domain.CreditUsecase
	BookingUC     domain.BookingUsecase
	ScheduleUC    domain.ScheduleUsecase
	MembershipUC  domain.MembershipUsecase
	OnboardingUC  domain.OnboardingUsecase
	MessageUC     domain.MessageUsecase
	ReportUC      domain.ReportUsecase
	ConfigUC      domain.ConfigUsecase
	Integrity     *audit.LedgerIntegrityService
	TOTPGate      *audit.TOTPGate
	UploadLimiter *media.UploadLimiter
	JWKSProvider  *auth.Provider
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CSRFMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.GlobalRateLimitMiddleware())

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Signup and login carry a stricter per-IP rate limit.
	authPublic := v1.Group("")
	authPublic.Use(middleware.RateLimitMiddleware(middleware.AuthRateLimitConfig()))

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config, deps.AuthUC))
	{
		// Branding/content reads stay public so the frontend can theme
		// the login screen.
		NewConfigHandler(v1, protected, deps.ConfigUC)
		NewAuthHandler(authPublic, protected, deps.AuthUC, deps.Config)
		NewAdminUserHandler(protected, deps.AdminUserUC, deps.AuthUC)
		NewCreditHandler(protected, deps.CreditUC)
		NewBookingHandler(protected, deps.BookingUC)
		NewScheduleHandler(protected, deps.ScheduleUC)
		NewMembershipHandler(protected, deps.MembershipUC)
		NewOnboardingHandler(protected, deps.OnboardingUC, deps.UploadLimiter)
		NewMessageHandler(protected, deps.MessageUC)
		NewReportHandler(protected, deps.ReportUC)
		NewAuditHandler(protected, deps.Integrity, deps.TOTPGate)
	}

	return r
}
