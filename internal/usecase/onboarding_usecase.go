package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"
	"go-studio-backend/pkg/audit"
	"go-studio-backend/pkg/media"
)

// safetyVideoCompletionThreshold is the watched percentage at which the
// safety video stage counts as completed.
const safetyVideoCompletionThreshold = 90.0

// presignExpiry bounds how long returned media URLs stay valid.
const presignExpiry = 15 * time.Minute

// MediaStorage is the slice of the media store the onboarding flow needs.
type MediaStorage interface {
	PutPostureMedia(ctx context.Context, userID int64, slot string, data []byte, contentType string, thumbnail []byte) (*media.StoredObject, error)
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type onboardingUsecase struct {
	onboardingRepo domain.OnboardingRepository
	storage        MediaStorage
	audit          *audit.Logger
}

func NewOnboardingUsecase(onboardingRepo domain.OnboardingRepository, storage MediaStorage) domain.OnboardingUsecase {
	return &onboardingUsecase{
		onboardingRepo: onboardingRepo,
		storage:        storage,
		audit:          audit.Default(),
	}
}

func (u *onboardingUsecase) Status(ctx context.Context, userID int64) (*domain.OnboardingStatus, error) {
	o, err := u.onboardingRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toStatus(o), nil
}

func (u *onboardingUsecase) SubmitParq(ctx context.Context, userID int64, sub *domain.ParqSubmission) (*domain.ParqResult, error) {
	o, err := u.onboardingRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if o.ParqStatus == domain.StageCompleted {
		return nil, apperror.BadRequest("PAR-Q has already been completed")
	}
	if o.MedicalHold() {
		return nil, apperror.Forbidden("PAR-Q is pending medical review")
	}

	if sub.RequiresMedicalClearance() {
		if err := u.onboardingRepo.UpdateStage(ctx, userID, domain.StageParq, domain.StageMedicalReview, nil); err != nil {
			return nil, err
		}
		u.audit.Log(ctx, audit.Event{
			Event:        audit.EventMedicalReviewFlagged,
			SubjectType:  "user_id",
			SubjectValue: audit.HashID(userID),
		})
		return &domain.ParqResult{
			Status:                   domain.StageMedicalReview,
			RequiresMedicalClearance: true,
			CanProceed:               false,
			Message:                  "Based on your answers, a medical clearance is required before you can continue. Our team will review your submission.",
		}, nil
	}

	now := time.Now()
	if err := u.onboardingRepo.UpdateStage(ctx, userID, domain.StageParq, domain.StageCompleted, &now); err != nil {
		return nil, err
	}
	return &domain.ParqResult{
		Status:                   domain.StageCompleted,
		RequiresMedicalClearance: false,
		CanProceed:               true,
		Message:                  "PAR-Q completed. You can continue with your posture assessment.",
	}, nil
}

func (u *onboardingUsecase) AttachPostureMedia(ctx context.Context, userID int64, slot domain.PostureMediaSlot, filename string, data []byte, mime string) (*domain.PostureAssessment, error) {
	if !slot.IsValid() {
		return nil, apperror.BadRequest("Unknown posture media slot")
	}
	if u.storage == nil {
		return nil, apperror.Unavailable("Media storage is not configured", nil)
	}

	o, err := u.onboardingRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if o.MedicalHold() {
		return nil, apperror.Forbidden("Onboarding is blocked pending medical review")
	}

	result := media.Validate(filename, data, mime)
	if !result.Valid {
		return nil, apperror.BadRequest(result.Error)
	}
	if slot.IsImage() && result.IsVideo {
		return nil, apperror.BadRequest("This slot requires a still image")
	}
	if !slot.IsImage() && !result.IsVideo {
		return nil, apperror.BadRequest("This slot requires a video")
	}

	var thumbnail []byte
	if slot.IsImage() {
		thumbnail, err = media.Thumbnail(data, media.ThumbnailMaxDimension, media.ThumbnailQuality)
		if err != nil {
			return nil, apperror.BadRequest("Image could not be processed")
		}
	}

	stored, err := u.storage.PutPostureMedia(ctx, userID, string(slot), data, result.DetectedMIME, thumbnail)
	if err != nil {
		return nil, apperror.Unavailable("Media storage unavailable", err)
	}

	pa := &domain.PostureAssessment{UserID: userID}
	switch slot {
	case domain.SlotFrontImage:
		pa.FrontViewImageURL = &stored.Key
	case domain.SlotSideImage:
		pa.SideViewImageURL = &stored.Key
	case domain.SlotAnteriorSquat:
		pa.AnteriorSquatVideoURL = &stored.Key
	case domain.SlotPosteriorSquat:
		pa.PosteriorSquatVideoURL = &stored.Key
	case domain.SlotSideSquat:
		pa.SideSquatVideoURL = &stored.Key
	}
	if err := u.onboardingRepo.UpsertPostureAssessment(ctx, pa); err != nil {
		return nil, err
	}

	status := domain.StageInProgress
	var completedAt *time.Time
	if pa.Complete() {
		status = domain.StageCompleted
		now := time.Now()
		completedAt = &now
	}
	// A completed stage keeps its original completion timestamp; re-uploads
	// only replace the media.
	if o.PostureAssessmentStatus != domain.StageCompleted &&
		(o.PostureAssessmentStatus.CanTransition(status) || o.PostureAssessmentStatus == status) {
		if err := u.onboardingRepo.UpdateStage(ctx, userID, domain.StagePosture, status, completedAt); err != nil {
			return nil, err
		}
	}

	return u.presignAssessment(ctx, pa)
}

func (u *onboardingUsecase) GetPostureAssessment(ctx context.Context, userID int64) (*domain.PostureAssessment, error) {
	pa, err := u.onboardingRepo.GetPostureAssessment(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("No posture assessment on file")
		}
		return nil, err
	}
	return u.presignAssessment(ctx, pa)
}

func (u *onboardingUsecase) ReportSafetyVideoProgress(ctx context.Context, userID int64, req *domain.SafetyVideoProgressRequest) (*domain.OnboardingStatus, error) {
	o, err := u.onboardingRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if o.MedicalHold() {
		return nil, apperror.Forbidden("Onboarding is blocked pending medical review")
	}
	if req.WatchedDuration > req.TotalDuration {
		return nil, apperror.BadRequest("Watched duration cannot exceed total duration")
	}

	percentage := float64(req.WatchedDuration) / float64(req.TotalDuration) * 100
	completed := percentage >= safetyVideoCompletionThreshold

	log := &domain.SafetyVideoLog{
		UserID:            userID,
		VideoID:           req.VideoID,
		WatchedDuration:   req.WatchedDuration,
		TotalDuration:     req.TotalDuration,
		PercentageWatched: percentage,
		IsCompleted:       completed,
	}
	if err := u.onboardingRepo.LogSafetyVideoProgress(ctx, log); err != nil {
		return nil, err
	}

	if completed && o.SafetyVideoStatus.CanTransition(domain.StageCompleted) {
		now := time.Now()
		if err := u.onboardingRepo.UpdateStage(ctx, userID, domain.StageSafetyVideo, domain.StageCompleted, &now); err != nil {
			return nil, err
		}
	} else if !completed && o.SafetyVideoStatus == domain.StageNotStarted {
		if err := u.onboardingRepo.UpdateStage(ctx, userID, domain.StageSafetyVideo, domain.StageInProgress, nil); err != nil {
			return nil, err
		}
	}

	return u.Status(ctx, userID)
}

func (u *onboardingUsecase) ClearMedicalReview(ctx context.Context, adminID, userID int64) error {
	if domain.RoleFromContext(ctx) != string(domain.RoleAdmin) {
		return apperror.Forbidden("Admin role required")
	}

	o, err := u.onboardingRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Onboarding record not found")
		}
		return err
	}
	if !o.MedicalHold() {
		return apperror.BadRequest("User is not pending medical review")
	}

	now := time.Now()
	if err := u.onboardingRepo.UpdateStage(ctx, userID, domain.StageParq, domain.StageCompleted, &now); err != nil {
		return err
	}

	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventMedicalReviewCleared,
		SubjectType:  "user_id",
		SubjectValue: audit.HashID(userID),
		Details:      map[string]any{"cleared_by": audit.HashID(adminID)},
	})
	return nil
}

func (u *onboardingUsecase) ResetStage(ctx context.Context, adminID, userID int64, stage domain.OnboardingStage) error {
	if domain.RoleFromContext(ctx) != string(domain.RoleAdmin) {
		return apperror.Forbidden("Admin role required")
	}
	if !stage.IsValid() {
		return apperror.BadRequest("Unknown onboarding stage")
	}

	if _, err := u.onboardingRepo.Get(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Onboarding record not found")
		}
		return err
	}
	return u.onboardingRepo.UpdateStage(ctx, userID, stage, domain.StageNotStarted, nil)
}

// presignAssessment swaps stored object keys for short-lived download URLs.
func (u *onboardingUsecase) presignAssessment(ctx context.Context, pa *domain.PostureAssessment) (*domain.PostureAssessment, error) {
	if u.storage == nil {
		return pa, nil
	}
	fields := []**string{
		&pa.FrontViewImageURL, &pa.SideViewImageURL,
		&pa.AnteriorSquatVideoURL, &pa.PosteriorSquatVideoURL, &pa.SideSquatVideoURL,
	}
	for _, f := range fields {
		if *f == nil {
			continue
		}
		url, err := u.storage.PresignGet(ctx, **f, presignExpiry)
		if err != nil {
			return nil, fmt.Errorf("presign posture media: %w", err)
		}
		*f = &url
	}
	return pa, nil
}

func toStatus(o *domain.HomeUserOnboarding) *domain.OnboardingStatus {
	return &domain.OnboardingStatus{
		ParqStatus:                   o.ParqStatus,
		ParqCompletedAt:              o.ParqCompletedAt,
		PostureAssessmentStatus:      o.PostureAssessmentStatus,
		PostureAssessmentCompletedAt: o.PostureAssessmentCompletedAt,
		SafetyVideoStatus:            o.SafetyVideoStatus,
		SafetyVideoCompletedAt:       o.SafetyVideoCompletedAt,
		IsEligibleForBooking:         o.Eligible(),
		RequiresMedicalClearance:     o.MedicalHold(),
	}
}
