package usecase_test

import (
	"testing"
	"time"

	"go-studio-backend/internal/domain"
	"go-studio-backend/internal/usecase"
	"go-studio-backend/pkg/media"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func freshOnboarding(userID int64) *domain.HomeUserOnboarding {
	return &domain.HomeUserOnboarding{
		ID:                      1,
		UserID:                  userID,
		ParqStatus:              domain.StageNotStarted,
		PostureAssessmentStatus: domain.StageNotStarted,
		SafetyVideoStatus:       domain.StageNotStarted,
	}
}

// mp4Bytes fabricates the smallest payload the file validator accepts as an
// MP4: an ftyp box marker at offset 4.
func mp4Bytes() []byte {
	return []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00}
}

func TestSubmitParq(t *testing.T) {
	ctx := authedCtx(2, domain.RoleHomeUser)

	t.Run("Should flag for medical review on any positive answer", func(t *testing.T) {
		repo := new(MockOnboardingRepo)
		uc := usecase.NewOnboardingUsecase(repo, new(MockMediaStorage))
		repo.On("GetOrCreate", mock.Anything, int64(2)).Return(freshOnboarding(2), nil)
		repo.On("UpdateStage", mock.Anything, int64(2), domain.StageParq, domain.StageMedicalReview, (*time.Time)(nil)).Return(nil)

		result, err := uc.SubmitParq(ctx, 2, &domain.ParqSubmission{HeartCondition: true})
		assert.NoError(t, err)
		assert.True(t, result.RequiresMedicalClearance)
		assert.False(t, result.CanProceed)
		assert.Equal(t, domain.StageMedicalReview, result.Status)
	})

	t.Run("Should complete the stage when all answers are negative", func(t *testing.T) {
		repo := new(MockOnboardingRepo)
		uc := usecase.NewOnboardingUsecase(repo, new(MockMediaStorage))
		repo.On("GetOrCreate", mock.Anything, int64(2)).Return(freshOnboarding(2), nil)
		repo.On("UpdateStage", mock.Anything, int64(2), domain.StageParq, domain.StageCompleted, mock.AnythingOfType("*time.Time")).Return(nil)

		result, err := uc.SubmitParq(ctx, 2, &domain.ParqSubmission{})
		assert.NoError(t, err)
		assert.True(t, result.CanProceed)
		assert.Equal(t, domain.StageCompleted, result.Status)
	})

	t.Run("Should reject resubmission after completion", func(t *testing.T) {
		repo := new(MockOnboardingRepo)
		uc := usecase.NewOnboardingUsecase(repo, new(MockMediaStorage))
		o := freshOnboarding(2)
		o.ParqStatus = domain.StageCompleted
		repo.On("GetOrCreate", mock.Anything, int64(2)).Return(o, nil)

		_, err := uc.SubmitParq(ctx, 2, &domain.ParqSubmission{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already been completed")
	})

	t.Run("Should reject resubmission while held for review", func(t *testing.T) {
		repo := new(MockOnboardingRepo)
		uc := usecase.NewOnboardingUsecase(repo, new(MockMediaStorage))
		o := freshOnboarding(2)
		o.ParqStatus = domain.StageMedicalReview
		repo.On("GetOrCreate", mock.Anything, int64(2)).Return(o, nil)

		_, err := uc.SubmitParq(ctx, 2, &domain.ParqSubmission{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "pending medical review")
	})
}

func TestAttachPostureMedia(t *testing.T) {
	ctx := authedCtx(2, domain.RoleHomeUser)

	t.Run("Should store a squat video and advance the stage", func(t *testing.T) {
		repo := new(MockOnboardingRepo)
		storage := new(MockMediaStorage)
		uc := usecase.NewOnboardingUsecase(repo, storage)
		repo.On("GetOrCreate", mock.Anything, int64(2)).Return(freshOnboarding(2), nil)
		storage.On("PutPostureMedia", mock.Anything, int64(2), "anterior_squat_video", mock.Anything, "video/mp4", []byte(nil)).
			Return(&media.StoredObject{Key: "posture/2/anterior_squat_video/abc.mp4"}, nil)
		repo.On("UpsertPostureAssessment", mock.Anything, mock.AnythingOfType("*domain.PostureAssessment")).Return(nil)
		repo.On("UpdateStage", mock.Anything, int64(2), domain.StagePosture, domain.StageInProgress, (*time.Time)(nil)).Return(nil)
		storage.On("PresignGet", mock.Anything, "posture/2/anterior_squat_video/abc.mp4", mock.Anything).
			Return("https://cdn.example.com/signed", nil)

		pa, err := uc.AttachPostureMedia(ctx, 2, domain.SlotAnteriorSquat, "squat.mp4", mp4Bytes(), "video/mp4")
		assert.NoError(t, err)
		if assert.NotNil(t, pa.AnteriorSquatVideoURL) {
			assert.Equal(t, "https://cdn.example.com/signed", *pa.AnteriorSquatVideoURL)
		}
	})

	t.Run("Should reject a video in an image slot", func(t *testing.T) {
		repo := new(MockOnboardingRepo)
		storage := new(MockMediaStorage)
		uc := usecase.NewOnboardingUsecase(repo, storage)
		repo.On("GetOrCreate", mock.Anything, int64(2)).Return(freshOnboarding(2), nil)

		_, err := uc.AttachPostureMedia(ctx, 2, domain.SlotFrontImage, "squat.mp4", mp4Bytes(), "video/mp4")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "still image")
		storage.AssertNotCalled(t, "PutPostureMedia")
	})

	t.Run("Should reject an unknown slot", func(t *testing.T) {
		uc := usecase.NewOnboardingUsecase(new(MockOnboardingRepo), new(MockMediaStorage))
		_, err := uc.AttachPostureMedia(ctx, 2, "left_view_image", "a.jpg", nil, "image/jpeg")
		assert.Error(t, err)
	})

	t.Run("Should keep the completion timestamp on re-upload after completion", func(t *testing.T) {
		repo := new(MockOnboardingRepo)
		storage := new(MockMediaStorage)
		uc := usecase.NewOnboardingUsecase(repo, storage)
		o := freshOnboarding(2)
		o.ParqStatus = domain.StageCompleted
		o.PostureAssessmentStatus = domain.StageCompleted
		repo.On("GetOrCreate", mock.Anything, int64(2)).Return(o, nil)
		storage.On("PutPostureMedia", mock.Anything, int64(2), "anterior_squat_video", mock.Anything, "video/mp4", []byte(nil)).
			Return(&media.StoredObject{Key: "posture/2/anterior_squat_video/def.mp4"}, nil)
		repo.On("UpsertPostureAssessment", mock.Anything, mock.AnythingOfType("*domain.PostureAssessment")).Return(nil)
		storage.On("PresignGet", mock.Anything, mock.Anything, mock.Anything).Return("https://cdn.example.com/signed", nil)

		_, err := uc.AttachPostureMedia(ctx, 2, domain.SlotAnteriorSquat, "squat2.mp4", mp4Bytes(), "video/mp4")
		assert.NoError(t, err)
		repo.AssertNotCalled(t, "UpdateStage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should block uploads while held for medical review", func(t *testing.T) {
		repo := new(MockOnboardingRepo)
		uc := usecase.NewOnboardingUsecase(repo, new(MockMediaStorage))
		o := freshOnboarding(2)
		o.ParqStatus = domain.StageMedicalReview
		repo.On("GetOrCreate", mock.Anything, int64(2)).Return(o, nil)

		_, err := uc.AttachPostureMedia(ctx, 2, domain.SlotAnteriorSquat, "squat.mp4", mp4Bytes(), "video/mp4")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "medical review")
	})
}

func TestReportSafetyVideoProgress(t *testing.T) {
	ctx := authedCtx(2, domain.RoleHomeUser)
	req := func(watched int) *domain.SafetyVideoProgressRequest {
		return &domain.SafetyVideoProgressRequest{VideoID: "intro-v1", WatchedDuration: watched, TotalDuration: 600}
	}

	t.Run("Should complete the stage at the watch threshold", func(t *testing.T) {
		repo := new(MockOnboardingRepo)
		uc := usecase.NewOnboardingUsecase(repo, new(MockMediaStorage))
		repo.On("GetOrCreate", mock.Anything, int64(2)).Return(freshOnboarding(2), nil)
		repo.On("LogSafetyVideoProgress", mock.Anything, mock.AnythingOfType("*domain.SafetyVideoLog")).
			Return(nil).Run(func(args mock.Arguments) {
			log := args.Get(1).(*domain.SafetyVideoLog)
			assert.True(t, log.IsCompleted)
			assert.InDelta(t, 95.0, log.PercentageWatched, 0.01)
		})
		repo.On("UpdateStage", mock.Anything, int64(2), domain.StageSafetyVideo, domain.StageCompleted, mock.AnythingOfType("*time.Time")).Return(nil)

		_, err := uc.ReportSafetyVideoProgress(ctx, 2, req(570))
		assert.NoError(t, err)
		repo.AssertCalled(t, "UpdateStage", mock.Anything, int64(2), domain.StageSafetyVideo, domain.StageCompleted, mock.AnythingOfType("*time.Time"))
	})

	t.Run("Should only mark progress below the threshold", func(t *testing.T) {
		repo := new(MockOnboardingRepo)
		uc := usecase.NewOnboardingUsecase(repo, new(MockMediaStorage))
		repo.On("GetOrCreate", mock.Anything, int64(2)).Return(freshOnboarding(2), nil)
		repo.On("LogSafetyVideoProgress", mock.Anything, mock.Anything).Return(nil)
		repo.On("UpdateStage", mock.Anything, int64(2), domain.StageSafetyVideo, domain.StageInProgress, (*time.Time)(nil)).Return(nil)

		_, err := uc.ReportSafetyVideoProgress(ctx, 2, req(300))
		assert.NoError(t, err)
	})

	t.Run("Should reject watched duration above total", func(t *testing.T) {
		repo := new(MockOnboardingRepo)
		uc := usecase.NewOnboardingUsecase(repo, new(MockMediaStorage))
		repo.On("GetOrCreate", mock.Anything, int64(2)).Return(freshOnboarding(2), nil)

		_, err := uc.ReportSafetyVideoProgress(ctx, 2, req(700))
		assert.Error(t, err)
	})
}

func TestClearMedicalReview(t *testing.T) {
	t.Run("Should require admin role", func(t *testing.T) {
		uc := usecase.NewOnboardingUsecase(new(MockOnboardingRepo), new(MockMediaStorage))
		err := uc.ClearMedicalReview(authedCtx(50, domain.RoleTrainer), 50, 2)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Admin role required")
	})

	t.Run("Should complete the PAR-Q stage when clearing a hold", func(t *testing.T) {
		repo := new(MockOnboardingRepo)
		uc := usecase.NewOnboardingUsecase(repo, new(MockMediaStorage))
		o := freshOnboarding(2)
		o.ParqStatus = domain.StageMedicalReview
		repo.On("Get", mock.Anything, int64(2)).Return(o, nil)
		repo.On("UpdateStage", mock.Anything, int64(2), domain.StageParq, domain.StageCompleted, mock.AnythingOfType("*time.Time")).Return(nil)

		err := uc.ClearMedicalReview(authedCtx(50, domain.RoleAdmin), 50, 2)
		assert.NoError(t, err)
	})

	t.Run("Should reject clearing a user who is not on hold", func(t *testing.T) {
		repo := new(MockOnboardingRepo)
		uc := usecase.NewOnboardingUsecase(repo, new(MockMediaStorage))
		repo.On("Get", mock.Anything, int64(2)).Return(freshOnboarding(2), nil)

		err := uc.ClearMedicalReview(authedCtx(50, domain.RoleAdmin), 50, 2)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not pending medical review")
	})
}
