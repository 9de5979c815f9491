package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type onboardingRepo struct {
	db *pgxpool.Pool
}

func NewOnboardingRepository(db *pgxpool.Pool) domain.OnboardingRepository {
	return &onboardingRepo{db: db}
}

const onboardingColumns = `id, user_id, parq_status, parq_completed_at,
	posture_assessment_status, posture_assessment_completed_at,
	safety_video_status, safety_video_completed_at, created_at, updated_at`

func (r *onboardingRepo) GetOrCreate(ctx context.Context, userID int64) (*domain.HomeUserOnboarding, error) {
	// ON CONFLICT DO NOTHING plus re-read keeps first-touch creation
	// race-free without an advisory lock.
	insert := `
		INSERT INTO home_user_onboarding (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, insert, userID); err != nil {
		return nil, apperror.Internal(err)
	}
	return r.Get(ctx, userID)
}

func (r *onboardingRepo) Get(ctx context.Context, userID int64) (*domain.HomeUserOnboarding, error) {
	query := `SELECT ` + onboardingColumns + ` FROM home_user_onboarding WHERE user_id = $1`
	var o domain.HomeUserOnboarding
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&o.ID, &o.UserID, &o.ParqStatus, &o.ParqCompletedAt,
		&o.PostureAssessmentStatus, &o.PostureAssessmentCompletedAt,
		&o.SafetyVideoStatus, &o.SafetyVideoCompletedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, apperror.Internal(err)
	}
	return &o, nil
}

func (r *onboardingRepo) UpdateStage(ctx context.Context, userID int64, stage domain.OnboardingStage, status domain.StageStatus, completedAt *time.Time) error {
	var statusColumn, completedColumn string
	switch stage {
	case domain.StageParq:
		statusColumn, completedColumn = "parq_status", "parq_completed_at"
	case domain.StagePosture:
		statusColumn, completedColumn = "posture_assessment_status", "posture_assessment_completed_at"
	case domain.StageSafetyVideo:
		statusColumn, completedColumn = "safety_video_status", "safety_video_completed_at"
	default:
		return domain.ErrInvalidState
	}

	query := fmt.Sprintf(`
		UPDATE home_user_onboarding
		SET %s = $2, %s = $3, updated_at = NOW()
		WHERE user_id = $1
	`, statusColumn, completedColumn)

	tag, err := r.db.Exec(ctx, query, userID, status, completedAt)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *onboardingRepo) UpsertPostureAssessment(ctx context.Context, pa *domain.PostureAssessment) error {
	query := `
		INSERT INTO posture_assessments (user_id, front_view_image_url, side_view_image_url,
		                                 anterior_squat_video_url, posterior_squat_video_url,
		                                 side_squat_video_url, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET front_view_image_url = COALESCE(EXCLUDED.front_view_image_url, posture_assessments.front_view_image_url),
		    side_view_image_url = COALESCE(EXCLUDED.side_view_image_url, posture_assessments.side_view_image_url),
		    anterior_squat_video_url = COALESCE(EXCLUDED.anterior_squat_video_url, posture_assessments.anterior_squat_video_url),
		    posterior_squat_video_url = COALESCE(EXCLUDED.posterior_squat_video_url, posture_assessments.posterior_squat_video_url),
		    side_squat_video_url = COALESCE(EXCLUDED.side_squat_video_url, posture_assessments.side_squat_video_url),
		    notes = COALESCE(EXCLUDED.notes, posture_assessments.notes),
		    updated_at = NOW()
		RETURNING id, front_view_image_url, side_view_image_url, anterior_squat_video_url,
		          posterior_squat_video_url, side_squat_video_url, notes, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		pa.UserID, pa.FrontViewImageURL, pa.SideViewImageURL,
		pa.AnteriorSquatVideoURL, pa.PosteriorSquatVideoURL, pa.SideSquatVideoURL, pa.Notes,
	).Scan(
		&pa.ID, &pa.FrontViewImageURL, &pa.SideViewImageURL, &pa.AnteriorSquatVideoURL,
		&pa.PosteriorSquatVideoURL, &pa.SideSquatVideoURL, &pa.Notes, &pa.CreatedAt, &pa.UpdatedAt,
	)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *onboardingRepo) GetPostureAssessment(ctx context.Context, userID int64) (*domain.PostureAssessment, error) {
	query := `
		SELECT id, user_id, front_view_image_url, side_view_image_url, anterior_squat_video_url,
		       posterior_squat_video_url, side_squat_video_url, notes, created_at, updated_at
		FROM posture_assessments
		WHERE user_id = $1
	`
	var pa domain.PostureAssessment
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&pa.ID, &pa.UserID, &pa.FrontViewImageURL, &pa.SideViewImageURL, &pa.AnteriorSquatVideoURL,
		&pa.PosteriorSquatVideoURL, &pa.SideSquatVideoURL, &pa.Notes, &pa.CreatedAt, &pa.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, apperror.Internal(err)
	}
	return &pa, nil
}

func (r *onboardingRepo) LogSafetyVideoProgress(ctx context.Context, log *domain.SafetyVideoLog) error {
	query := `
		INSERT INTO safety_video_logs (user_id, video_id, watched_duration, total_duration, percentage_watched, is_completed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, watched_at
	`
	err := r.db.QueryRow(ctx, query,
		log.UserID, log.VideoID, log.WatchedDuration, log.TotalDuration,
		log.PercentageWatched, log.IsCompleted,
	).Scan(&log.ID, &log.WatchedAt)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *onboardingRepo) GetSafetyVideoProgress(ctx context.Context, userID int64, videoID string) (*domain.SafetyVideoLog, error) {
	query := `
		SELECT id, user_id, video_id, watched_duration, total_duration, percentage_watched, is_completed, watched_at
		FROM safety_video_logs
		WHERE user_id = $1 AND video_id = $2
		ORDER BY percentage_watched DESC, watched_at DESC
		LIMIT 1
	`
	var log domain.SafetyVideoLog
	err := r.db.QueryRow(ctx, query, userID, videoID).Scan(
		&log.ID, &log.UserID, &log.VideoID, &log.WatchedDuration, &log.TotalDuration,
		&log.PercentageWatched, &log.IsCompleted, &log.WatchedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, apperror.Internal(err)
	}
	return &log, nil
}

func (r *onboardingRepo) CountByStageStatus(ctx context.Context) (map[domain.OnboardingStage]map[domain.StageStatus]int64, error) {
	query := `
		SELECT parq_status, posture_assessment_status, safety_video_status, COUNT(*)
		FROM home_user_onboarding
		GROUP BY parq_status, posture_assessment_status, safety_video_status
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	funnel := map[domain.OnboardingStage]map[domain.StageStatus]int64{
		domain.StageParq:        {},
		domain.StagePosture:     {},
		domain.StageSafetyVideo: {},
	}
	for rows.Next() {
		var parq, posture, video domain.StageStatus
		var count int64
		if err := rows.Scan(&parq, &posture, &video, &count); err != nil {
			return nil, apperror.Internal(err)
		}
		funnel[domain.StageParq][parq] += count
		funnel[domain.StagePosture][posture] += count
		funnel[domain.StageSafetyVideo][video] += count
	}
	return funnel, rows.Err()
}

func (r *onboardingRepo) CountEligibility(ctx context.Context) (total, eligible, medicalHolds int64, err error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE parq_status = 'COMPLETED'
		                          AND posture_assessment_status = 'COMPLETED'
		                          AND safety_video_status = 'COMPLETED'),
		       COUNT(*) FILTER (WHERE parq_status = 'PENDING_MEDICAL_REVIEW')
		FROM home_user_onboarding
	`
	err = r.db.QueryRow(ctx, query).Scan(&total, &eligible, &medicalHolds)
	if err != nil {
		err = apperror.Internal(err)
	}
	return
}
