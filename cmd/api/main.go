package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-studio-backend/config"
	_ "go-studio-backend/docs" // Important for Swagger
	v1 "go-studio-backend/internal/delivery/http/v1"
	"go-studio-backend/internal/repository/postgres"
	"go-studio-backend/internal/usecase"
	"go-studio-backend/pkg/audit"
	"go-studio-backend/pkg/auth"
	"go-studio-backend/pkg/database"
	"go-studio-backend/pkg/logger"
	"go-studio-backend/pkg/media"
	"go-studio-backend/pkg/redis"
)

// @title           Studio Backend API
// @version         1.0
// @description     Booking, credit ledger and onboarding backend for a fitness studio.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init()
	audit.Init("studio-backend", cfg.Environment)
	logger.Log.Info("Starting studio backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (rate limiting and upload quotas degrade to in-memory
	// fallbacks without it)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
	}
	defer redis.Close()

	// 5. Setup S3 storage for posture media and ledger anchors
	var mediaStorage *media.Storage
	var anchorer *audit.Anchorer
	if cfg.S3AccessKeyID != "" {
		s3Client, err := audit.NewS3Client(context.Background(), cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretAccessKey)
		if err != nil {
			logger.Log.Error("Failed to create S3 client", "error", err)
			os.Exit(1)
		}
		mediaStorage = media.NewStorage(s3Client, cfg.MediaBucket)
		anchorer = audit.NewAnchorer(s3Client, audit.AnchorerConfig{
			Region: cfg.S3Region,
			Bucket: cfg.AuditAnchorBucket,
		})
	} else {
		logger.Log.Warn("S3 not configured - posture uploads and ledger anchoring are disabled")
	}

	// 6. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	creditRepo := postgres.NewCreditRepository(dbPool)
	packageRepo := postgres.NewCreditPackageRepository(dbPool)
	bookingRepo := postgres.NewBookingRepository(dbPool)
	scheduleRepo := postgres.NewScheduleRepository(dbPool)
	membershipRepo := postgres.NewMembershipRepository(dbPool)
	onboardingRepo := postgres.NewOnboardingRepository(dbPool)
	messageRepo := postgres.NewMessageRepository(dbPool)
	reportRepo := postgres.NewReportRepository(dbPool)
	configRepo := postgres.NewConfigRepository(dbPool)

	// 7. Setup UseCases
	authUC := usecase.NewAuthUsecase(userRepo, creditRepo, usecase.AuthConfig{
		JWTSecret:            cfg.JWTSecret,
		TokenTTL:             time.Duration(cfg.TokenTTLMinutes) * time.Minute,
		DefaultSignupCredits: cfg.DefaultSignupCredits,
	})
	adminUserUC := usecase.NewAdminUserUsecase(userRepo)
	creditUC := usecase.NewCreditUsecase(creditRepo, packageRepo)
	bookingUC := usecase.NewBookingUsecase(bookingRepo, scheduleRepo, userRepo, onboardingRepo, usecase.BookingConfig{
		CancellationCutoffHours: cfg.CancellationCutoffHours,
	})
	scheduleUC := usecase.NewScheduleUsecase(scheduleRepo, bookingRepo)
	membershipUC := usecase.NewMembershipUsecase(membershipRepo, creditRepo)
	// A plain nil keeps the usecase's storage guard working; a typed nil
	// pointer would not compare equal to nil through the interface.
	var postureStorage usecase.MediaStorage
	if mediaStorage != nil {
		postureStorage = mediaStorage
	}
	onboardingUC := usecase.NewOnboardingUsecase(onboardingRepo, postureStorage)
	messageUC := usecase.NewMessageUsecase(messageRepo, userRepo)
	reportUC := usecase.NewReportUsecase(reportRepo, onboardingRepo, usecase.ReportConfig{
		RevenuePerCredit: cfg.RevenuePerCredit,
	})
	configUC := usecase.NewConfigUsecase(configRepo)

	// 8. Setup ledger integrity and audit gate
	integrity := audit.NewLedgerIntegrityService(dbPool, anchorer)
	totpGate := audit.NewTOTPGate(cfg.AuditTOTPSecret)
	uploadLimiter := media.NewUploadLimiter(10, 100)

	// 9. Optional RS256 provider for externally issued tokens
	var jwksProvider *auth.Provider
	if cfg.JWKSUrl != "" {
		jwksProvider = auth.NewProvider(cfg.JWKSUrl)
	}

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:        authUC,
		AdminUserUC:   adminUserUC,
		CreditUC:      creditUC,
		BookingUC:     bookingUC,
		ScheduleUC:    scheduleUC,
		MembershipUC:  membershipUC,
		OnboardingUC:  onboardingUC,
		MessageUC:     messageUC,
		ReportUC:      reportUC,
		ConfigUC:      configUC,
		Integrity:     integrity,
		TOTPGate:      totpGate,
		UploadLimiter: uploadLimiter,
		JWKSProvider:  jwksProvider,
		Config:        cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Nightly anchor job: yesterday's ledger root goes to WORM storage.
	if anchorer != nil {
		go runAnchorLoop(integrity)
	}

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

// runAnchorLoop anchors the previous day's root once per day, shortly after
// midnight UTC.
func runAnchorLoop(integrity *audit.LedgerIntegrityService) {
	for {
		now := time.Now().UTC()
		next := time.Date(now.Year(), now.Month(), now.Day(), 0, 15, 0, 0, time.UTC).AddDate(0, 0, 1)
		time.Sleep(time.Until(next))

		yesterday := time.Now().UTC().AddDate(0, 0, -1)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := integrity.AnchorDay(ctx, yesterday); err != nil {
			logger.Log.Error("Ledger anchor failed", "date", yesterday.Format("2006-01-02"), "error", err)
		}
		cancel()
	}
}
