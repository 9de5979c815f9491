package usecase_test

import (
	"context"
	"testing"
	"time"

	"go-studio-backend/internal/domain"
	"go-studio-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAuthPrivilege(t *testing.T) {
	userRepo := new(MockUserRepo)
	uc := usecase.NewAuthUsecase(userRepo, new(MockCreditRepo), usecase.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})

	t.Run("Should fail if role is not admin", func(t *testing.T) {
		ctx := authedCtx(1, domain.RoleClient)
		err := uc.AssignRole(ctx, 2, domain.RoleTrainer)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Only admins can assign roles")
	})

	t.Run("Should fail safe if role is missing from context", func(t *testing.T) {
		err := uc.AssignRole(context.Background(), 2, domain.RoleTrainer)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Only admins can assign roles")
	})

	t.Run("Should reject self-registering a staff role", func(t *testing.T) {
		role := domain.RoleAdmin
		_, err := uc.Signup(context.Background(), &domain.SignupRequest{
			Email:    "attacker@example.com",
			Password: "password123",
			Role:     &role,
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot self-register a staff role")
		userRepo.AssertNotCalled(t, "Create")
	})
}

func TestMembershipTransitions(t *testing.T) {
	t.Run("Should reject resuming a cancelled membership", func(t *testing.T) {
		membershipRepo := new(MockMembershipRepo)
		uc := usecase.NewMembershipUsecase(membershipRepo, new(MockCreditRepo))
		membershipRepo.On("GetByID", mock.Anything, int64(5)).Return(&domain.Membership{
			ID: 5, UserID: 1, Status: domain.MembershipCancelled,
		}, nil)

		err := uc.Resume(authedCtx(1, domain.RoleClient), 1, 5)
		assert.Error(t, err)
		membershipRepo.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("Should reject managing another user's membership", func(t *testing.T) {
		membershipRepo := new(MockMembershipRepo)
		uc := usecase.NewMembershipUsecase(membershipRepo, new(MockCreditRepo))
		membershipRepo.On("GetByID", mock.Anything, int64(5)).Return(&domain.Membership{
			ID: 5, UserID: 1, Status: domain.MembershipActive,
		}, nil)

		err := uc.Pause(authedCtx(99, domain.RoleClient), 99, 5)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "another user's membership")
	})

	t.Run("Should reject a second active membership", func(t *testing.T) {
		membershipRepo := new(MockMembershipRepo)
		uc := usecase.NewMembershipUsecase(membershipRepo, new(MockCreditRepo))
		membershipRepo.On("GetType", mock.Anything, int64(3)).Return(&domain.MembershipType{
			ID: 3, Name: "Monthly 8", DurationDays: 30, CreditAmount: 8, CreditFrequency: "monthly", Active: true,
		}, nil)
		membershipRepo.On("GetActiveByUser", mock.Anything, int64(1)).Return(&domain.Membership{
			ID: 4, UserID: 1, Status: domain.MembershipActive,
		}, nil)

		_, err := uc.Enroll(authedCtx(1, domain.RoleClient), 1, &domain.EnrollMembershipRequest{MembershipTypeID: 3})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already has an active membership")
	})

	t.Run("Should grant the first credit allocation on enrollment", func(t *testing.T) {
		membershipRepo := new(MockMembershipRepo)
		creditRepo := new(MockCreditRepo)
		uc := usecase.NewMembershipUsecase(membershipRepo, creditRepo)
		membershipRepo.On("GetType", mock.Anything, int64(3)).Return(&domain.MembershipType{
			ID: 3, Name: "Monthly 8", DurationDays: 30, CreditAmount: 8, CreditFrequency: "monthly", Active: true,
		}, nil)
		membershipRepo.On("GetActiveByUser", mock.Anything, int64(1)).Return(nil, domain.ErrNotFound)
		membershipRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Membership")).
			Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Membership).ID = 6
		})
		creditRepo.On("Grant", mock.Anything, mock.AnythingOfType("*domain.CreditEntry"), mock.Anything).
			Return(nil).Run(func(args mock.Arguments) {
			entry := args.Get(1).(*domain.CreditEntry)
			assert.Equal(t, 8, entry.Amount)
			assert.Equal(t, domain.SourceMembership, entry.Source)
		})

		membership, err := uc.Enroll(authedCtx(1, domain.RoleClient), 1, &domain.EnrollMembershipRequest{MembershipTypeID: 3})
		assert.NoError(t, err)
		assert.Equal(t, domain.MembershipActive, membership.Status)
	})
}

func TestMessageAccess(t *testing.T) {
	t.Run("Should reject non-staff senders", func(t *testing.T) {
		uc := usecase.NewMessageUsecase(new(MockMessageRepo), new(MockUserRepo))
		_, err := uc.Send(authedCtx(1, domain.RoleClient), 1, &domain.SendMessageRequest{
			RecipientID: 2, Subject: "Hi", Content: "Hello",
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Staff role required")
	})

	t.Run("Should reject marking another user's message as read", func(t *testing.T) {
		messageRepo := new(MockMessageRepo)
		uc := usecase.NewMessageUsecase(messageRepo, new(MockUserRepo))
		messageRepo.On("GetByID", mock.Anything, int64(9)).Return(&domain.ClientMessage{
			ID: 9, RecipientID: 2,
		}, nil)

		err := uc.MarkRead(authedCtx(1, domain.RoleClient), 1, 9)
		assert.Error(t, err)
		messageRepo.AssertNotCalled(t, "MarkRead")
	})

	t.Run("Should stamp sender identity server-side", func(t *testing.T) {
		messageRepo := new(MockMessageRepo)
		userRepo := new(MockUserRepo)
		uc := usecase.NewMessageUsecase(messageRepo, userRepo)
		first := "Dana"
		userRepo.On("GetByID", mock.Anything, int64(50)).Return(&domain.User{
			ID: 50, Email: "dana@studio.test", FirstName: &first, Role: domain.RoleTrainer,
		}, nil)
		userRepo.On("GetByID", mock.Anything, int64(2)).Return(&domain.User{ID: 2, Role: domain.RoleClient}, nil)
		messageRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ClientMessage")).
			Return(nil).Run(func(args mock.Arguments) {
			msg := args.Get(1).(*domain.ClientMessage)
			assert.Equal(t, "Dana", msg.SenderName)
			assert.Equal(t, domain.RoleTrainer, msg.SenderRole)
		})

		msg, err := uc.Send(authedCtx(50, domain.RoleTrainer), 50, &domain.SendMessageRequest{
			RecipientID: 2, Subject: "Session notes", Content: "Great work today.",
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.PriorityNormal, msg.Priority)
	})
}

func TestConfigAccess(t *testing.T) {
	t.Run("Should require admin role for branding updates", func(t *testing.T) {
		uc := usecase.NewConfigUsecase(new(MockConfigRepo))
		err := uc.UpdateBranding(authedCtx(50, domain.RoleTrainer), 50, &domain.BrandingConfig{CompanyName: "X"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Admin role required")
	})

	t.Run("Should serve defaults when nothing is stored", func(t *testing.T) {
		configRepo := new(MockConfigRepo)
		uc := usecase.NewConfigUsecase(configRepo)
		configRepo.On("Get", mock.Anything, domain.ConfigBranding).Return(nil, domain.ErrNotFound)

		branding, err := uc.Branding(context.Background())
		assert.NoError(t, err)
		assert.NotEmpty(t, branding.CompanyName)
		assert.NotEmpty(t, branding.PrimaryColor)
	})

	t.Run("Should apply a known preset to both documents", func(t *testing.T) {
		configRepo := new(MockConfigRepo)
		uc := usecase.NewConfigUsecase(configRepo)
		configRepo.On("Upsert", mock.Anything, domain.ConfigBranding, mock.Anything, mock.Anything).
			Return(&domain.SystemConfiguration{ID: domain.ConfigBranding, Version: 2}, nil)
		configRepo.On("Upsert", mock.Anything, domain.ConfigContent, mock.Anything, mock.Anything).
			Return(&domain.SystemConfiguration{ID: domain.ConfigContent, Version: 2}, nil)

		preset, err := uc.ApplyPreset(authedCtx(50, domain.RoleAdmin), 50, "boutique-studio")
		assert.NoError(t, err)
		assert.Equal(t, "boutique-studio", preset.Key)
		configRepo.AssertNumberOfCalls(t, "Upsert", 2)
	})

	t.Run("Should reject an unknown preset", func(t *testing.T) {
		uc := usecase.NewConfigUsecase(new(MockConfigRepo))
		_, err := uc.ApplyPreset(authedCtx(50, domain.RoleAdmin), 50, "does-not-exist")
		assert.Error(t, err)
	})
}

func TestReportStats(t *testing.T) {
	staffCtx := authedCtx(50, domain.RoleAdmin)

	t.Run("Should reject non-staff callers", func(t *testing.T) {
		uc := usecase.NewReportUsecase(new(MockReportRepo), new(MockOnboardingRepo), usecase.ReportConfig{RevenuePerCredit: 10})
		_, err := uc.BookingStats(authedCtx(1, domain.RoleClient), 30)
		assert.Error(t, err)
	})

	t.Run("Should compute growth against the previous period", func(t *testing.T) {
		reportRepo := new(MockReportRepo)
		uc := usecase.NewReportUsecase(reportRepo, new(MockOnboardingRepo), usecase.ReportConfig{RevenuePerCredit: 10})
		// Current period first, then the preceding one.
		reportRepo.On("BookingCounts", mock.Anything, mock.Anything, mock.Anything).
			Return(int64(150), int64(10), int64(120), int64(5), int64(40), int64(300), nil).Once()
		reportRepo.On("BookingCounts", mock.Anything, mock.Anything, mock.Anything).
			Return(int64(100), int64(8), int64(80), int64(4), int64(30), int64(200), nil).Once()

		stats, err := uc.BookingStats(staffCtx, 30)
		assert.NoError(t, err)
		assert.Equal(t, int64(150), stats.TotalBookings)
		assert.Equal(t, 50, stats.BookingGrowth)
		assert.Equal(t, float64(3000), stats.TotalRevenue)
		assert.Equal(t, 50, stats.RevenueGrowth)
	})

	t.Run("Should report 100 percent growth from a silent period", func(t *testing.T) {
		reportRepo := new(MockReportRepo)
		uc := usecase.NewReportUsecase(reportRepo, new(MockOnboardingRepo), usecase.ReportConfig{RevenuePerCredit: 10})
		reportRepo.On("BookingCounts", mock.Anything, mock.Anything, mock.Anything).
			Return(int64(20), int64(0), int64(0), int64(0), int64(10), int64(40), nil).Once()
		reportRepo.On("BookingCounts", mock.Anything, mock.Anything, mock.Anything).
			Return(int64(0), int64(0), int64(0), int64(0), int64(0), int64(0), nil).Once()

		stats, err := uc.BookingStats(staffCtx, 30)
		assert.NoError(t, err)
		assert.Equal(t, 100, stats.BookingGrowth)
	})

	t.Run("Should assemble the onboarding funnel", func(t *testing.T) {
		onboardingRepo := new(MockOnboardingRepo)
		uc := usecase.NewReportUsecase(new(MockReportRepo), onboardingRepo, usecase.ReportConfig{RevenuePerCredit: 10})
		onboardingRepo.On("CountByStageStatus", mock.Anything).Return(map[domain.OnboardingStage]map[domain.StageStatus]int64{
			domain.StageParq: {domain.StageCompleted: 12, domain.StageMedicalReview: 3},
		}, nil)
		onboardingRepo.On("CountEligibility", mock.Anything).Return(int64(20), int64(8), int64(3), nil)

		funnel, err := uc.OnboardingFunnel(staffCtx)
		assert.NoError(t, err)
		assert.Equal(t, int64(20), funnel.TotalHomeUsers)
		assert.Equal(t, int64(8), funnel.Eligible)
		assert.Equal(t, int64(3), funnel.MedicalHolds)
		assert.Equal(t, int64(3), funnel.ByStage[domain.StageParq][domain.StageMedicalReview])
	})
}
