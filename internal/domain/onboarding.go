package domain

import (
	"context"
	"time"
)

// StageStatus is the per-stage onboarding state. PENDING_MEDICAL_REVIEW is
// only reachable from the PAR-Q stage and blocks all progression until an
// admin clears it.
type StageStatus string

const (
	StageNotStarted    StageStatus = "NOT_STARTED"
	StageInProgress    StageStatus = "IN_PROGRESS"
	StageCompleted     StageStatus = "COMPLETED"
	StageMedicalReview StageStatus = "PENDING_MEDICAL_REVIEW"
)

// stageTransitions is one-directional; the only way back from COMPLETED or
// PENDING_MEDICAL_REVIEW is an explicit admin action.
var stageTransitions = map[StageStatus][]StageStatus{
	StageNotStarted:    {StageInProgress, StageCompleted, StageMedicalReview},
	StageInProgress:    {StageCompleted, StageMedicalReview},
	StageCompleted:     {},
	StageMedicalReview: {StageCompleted},
}

func (s StageStatus) CanTransition(next StageStatus) bool {
	for _, allowed := range stageTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type OnboardingStage string

const (
	StageParq        OnboardingStage = "PARQ"
	StagePosture     OnboardingStage = "POSTURE_ASSESSMENT"
	StageSafetyVideo OnboardingStage = "SAFETY_VIDEO"
)

func (s OnboardingStage) IsValid() bool {
	return s == StageParq || s == StagePosture || s == StageSafetyVideo
}

// HomeUserOnboarding is one row per home-EMS user, created lazily on the
// first onboarding interaction.
type HomeUserOnboarding struct {
	ID                           int64       `json:"id"`
	UserID                       int64       `json:"user_id"`
	ParqStatus                   StageStatus `json:"parq_status"`
	ParqCompletedAt              *time.Time  `json:"parq_completed_at,omitempty"`
	PostureAssessmentStatus      StageStatus `json:"posture_assessment_status"`
	PostureAssessmentCompletedAt *time.Time  `json:"posture_assessment_completed_at,omitempty"`
	SafetyVideoStatus            StageStatus `json:"safety_video_status"`
	SafetyVideoCompletedAt       *time.Time  `json:"safety_video_completed_at,omitempty"`
	CreatedAt                    time.Time   `json:"created_at"`
	UpdatedAt                    time.Time   `json:"updated_at"`
}

// Eligible recomputes booking eligibility from current stage state. It is
// derived on every read, never cached.
func (o *HomeUserOnboarding) Eligible() bool {
	return o.ParqStatus == StageCompleted &&
		o.PostureAssessmentStatus == StageCompleted &&
		o.SafetyVideoStatus == StageCompleted
}

// MedicalHold reports whether a PAR-Q medical review is blocking progression.
func (o *HomeUserOnboarding) MedicalHold() bool {
	return o.ParqStatus == StageMedicalReview
}

// OnboardingStatus is the response shape for status reads; eligibility and
// the hold flag are computed fields.
type OnboardingStatus struct {
	ParqStatus                   StageStatus `json:"parq_status"`
	ParqCompletedAt              *time.Time  `json:"parq_completed_at,omitempty"`
	PostureAssessmentStatus      StageStatus `json:"posture_assessment_status"`
	PostureAssessmentCompletedAt *time.Time  `json:"posture_assessment_completed_at,omitempty"`
	SafetyVideoStatus            StageStatus `json:"safety_video_status"`
	SafetyVideoCompletedAt       *time.Time  `json:"safety_video_completed_at,omitempty"`
	IsEligibleForBooking         bool        `json:"is_eligible_for_booking"`
	RequiresMedicalClearance     bool        `json:"requires_medical_clearance"`
}

// ParqSubmission carries the Physical Activity Readiness Questionnaire
// answers. Any true answer flags the submission for medical review.
type ParqSubmission struct {
	HeartCondition bool    `json:"heart_condition"`
	ChestPain      bool    `json:"chest_pain"`
	LoseBalance    bool    `json:"lose_balance"`
	BoneProblems   bool    `json:"bone_problems"`
	Medications    bool    `json:"medications"`
	OtherReasons   bool    `json:"other_reasons"`
	Notes          *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// RequiresMedicalClearance mirrors the PAR-Q rule: one positive answer is
// enough to require clearance.
func (p *ParqSubmission) RequiresMedicalClearance() bool {
	return p.HeartCondition || p.ChestPain || p.LoseBalance ||
		p.BoneProblems || p.Medications || p.OtherReasons
}

type ParqResult struct {
	Status                   StageStatus `json:"parq_status"`
	RequiresMedicalClearance bool        `json:"requires_medical_clearance"`
	CanProceed               bool        `json:"can_proceed"`
	Message                  string      `json:"message"`
}

// PostureAssessment holds uploaded media for posture analysis; at most one
// row per user (upsert semantics).
type PostureAssessment struct {
	ID                     int64     `json:"id"`
	UserID                 int64     `json:"user_id"`
	FrontViewImageURL      *string   `json:"front_view_image_url,omitempty"`
	SideViewImageURL       *string   `json:"side_view_image_url,omitempty"`
	AnteriorSquatVideoURL  *string   `json:"anterior_squat_video_url,omitempty"`
	PosteriorSquatVideoURL *string   `json:"posterior_squat_video_url,omitempty"`
	SideSquatVideoURL      *string   `json:"side_squat_video_url,omitempty"`
	Notes                  *string   `json:"notes,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Complete reports whether all required media has been provided.
func (p *PostureAssessment) Complete() bool {
	return p.FrontViewImageURL != nil && p.SideViewImageURL != nil &&
		p.AnteriorSquatVideoURL != nil && p.PosteriorSquatVideoURL != nil &&
		p.SideSquatVideoURL != nil
}

// PostureMediaSlot names one of the five required uploads.
type PostureMediaSlot string

const (
	SlotFrontImage     PostureMediaSlot = "front_view_image"
	SlotSideImage      PostureMediaSlot = "side_view_image"
	SlotAnteriorSquat  PostureMediaSlot = "anterior_squat_video"
	SlotPosteriorSquat PostureMediaSlot = "posterior_squat_video"
	SlotSideSquat      PostureMediaSlot = "side_squat_video"
)

func (s PostureMediaSlot) IsValid() bool {
	switch s {
	case SlotFrontImage, SlotSideImage, SlotAnteriorSquat, SlotPosteriorSquat, SlotSideSquat:
		return true
	}
	return false
}

// IsImage distinguishes image slots from squat-video slots for validation.
func (s PostureMediaSlot) IsImage() bool {
	return s == SlotFrontImage || s == SlotSideImage
}

// SafetyVideoLog records one watch-progress report for the safety video.
type SafetyVideoLog struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	VideoID           string    `json:"video_id"`
	WatchedDuration   int       `json:"watched_duration"`
	TotalDuration     int       `json:"total_duration"`
	PercentageWatched float64   `json:"percentage_watched"`
	IsCompleted       bool      `json:"is_completed"`
	WatchedAt         time.Time `json:"watched_at"`
}

type SafetyVideoProgressRequest struct {
	VideoID         string `json:"video_id" validate:"required,max=255"`
	WatchedDuration int    `json:"watched_duration" validate:"gte=0"`
	TotalDuration   int    `json:"total_duration" validate:"required,gt=0"`
}

type OnboardingRepository interface {
	// GetOrCreate returns the user's onboarding row, inserting the
	// NOT_STARTED baseline on first touch.
	GetOrCreate(ctx context.Context, userID int64) (*HomeUserOnboarding, error)
	Get(ctx context.Context, userID int64) (*HomeUserOnboarding, error)
	UpdateStage(ctx context.Context, userID int64, stage OnboardingStage, status StageStatus, completedAt *time.Time) error

	UpsertPostureAssessment(ctx context.Context, pa *PostureAssessment) error
	GetPostureAssessment(ctx context.Context, userID int64) (*PostureAssessment, error)

	LogSafetyVideoProgress(ctx context.Context, log *SafetyVideoLog) error
	GetSafetyVideoProgress(ctx context.Context, userID int64, videoID string) (*SafetyVideoLog, error)

	// CountByStageStatus powers the admin onboarding funnel.
	CountByStageStatus(ctx context.Context) (map[OnboardingStage]map[StageStatus]int64, error)
	// CountEligibility returns total home users, fully eligible users and
	// users held for medical review.
	CountEligibility(ctx context.Context) (total, eligible, medicalHolds int64, err error)
}

type OnboardingUsecase interface {
	Status(ctx context.Context, userID int64) (*OnboardingStatus, error)
	SubmitParq(ctx context.Context, userID int64, sub *ParqSubmission) (*ParqResult, error)
	// AttachPostureMedia validates and stores one uploaded file, then
	// advances the posture stage (IN_PROGRESS, or COMPLETED once all five
	// slots are filled).
	AttachPostureMedia(ctx context.Context, userID int64, slot PostureMediaSlot, filename string, data []byte, mime string) (*PostureAssessment, error)
	GetPostureAssessment(ctx context.Context, userID int64) (*PostureAssessment, error)
	ReportSafetyVideoProgress(ctx context.Context, userID int64, req *SafetyVideoProgressRequest) (*OnboardingStatus, error)

	// Admin capabilities.
	ClearMedicalReview(ctx context.Context, adminID, userID int64) error
	ResetStage(ctx context.Context, adminID, userID int64, stage OnboardingStage) error
}
