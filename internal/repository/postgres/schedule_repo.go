package postgres

import (
	"context"
	"errors"
	"time"

	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type scheduleRepo struct {
	db *pgxpool.Pool
}

func NewScheduleRepository(db *pgxpool.Pool) domain.ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) CreateServiceType(ctx context.Context, st *domain.ServiceType) error {
	query := `
		INSERT INTO service_types (name, description, color, duration, credit_cost, active)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING id, active, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		st.Name, st.Description, st.Color, st.Duration, st.CreditCost,
	).Scan(&st.ID, &st.Active, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *scheduleRepo) ListServiceTypes(ctx context.Context, activeOnly bool) ([]domain.ServiceType, error) {
	query := `
		SELECT id, name, description, color, duration, credit_cost, active, created_at, updated_at
		FROM service_types
		WHERE ($1 = false OR active = true)
		ORDER BY name ASC
	`
	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	var types []domain.ServiceType
	for rows.Next() {
		var st domain.ServiceType
		if err := rows.Scan(
			&st.ID, &st.Name, &st.Description, &st.Color, &st.Duration,
			&st.CreditCost, &st.Active, &st.CreatedAt, &st.UpdatedAt,
		); err != nil {
			return nil, apperror.Internal(err)
		}
		types = append(types, st)
	}
	return types, rows.Err()
}

func (r *scheduleRepo) GetServiceType(ctx context.Context, id int64) (*domain.ServiceType, error) {
	query := `
		SELECT id, name, description, color, duration, credit_cost, active, created_at, updated_at
		FROM service_types
		WHERE id = $1
	`
	var st domain.ServiceType
	err := r.db.QueryRow(ctx, query, id).Scan(
		&st.ID, &st.Name, &st.Description, &st.Color, &st.Duration,
		&st.CreditCost, &st.Active, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, apperror.Internal(err)
	}
	return &st, nil
}

func (r *scheduleRepo) UpdateServiceType(ctx context.Context, st *domain.ServiceType) error {
	query := `
		UPDATE service_types
		SET name = $2, description = $3, color = $4, duration = $5, credit_cost = $6, active = $7, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		st.ID, st.Name, st.Description, st.Color, st.Duration, st.CreditCost, st.Active,
	)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *scheduleRepo) CreateClass(ctx context.Context, class *domain.Class) error {
	query := `
		INSERT INTO classes (name, description, service_type_id, instructor_id, start_time, end_time,
		                     duration, capacity, location, credit_cost, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'SCHEDULED')
		RETURNING id, status, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		class.Name, class.Description, class.ServiceTypeID, class.InstructorID,
		class.StartTime, class.EndTime, class.Duration, class.Capacity,
		class.Location, class.CreditCost,
	).Scan(&class.ID, &class.Status, &class.CreatedAt, &class.UpdatedAt)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *scheduleRepo) GetClass(ctx context.Context, id int64) (*domain.Class, error) {
	query := `
		SELECT id, name, description, service_type_id, instructor_id, start_time, end_time,
		       duration, capacity, location, credit_cost, status, created_at, updated_at
		FROM classes
		WHERE id = $1
	`
	var c domain.Class
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Description, &c.ServiceTypeID, &c.InstructorID, &c.StartTime, &c.EndTime,
		&c.Duration, &c.Capacity, &c.Location, &c.CreditCost, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, apperror.Internal(err)
	}
	return &c, nil
}

func (r *scheduleRepo) ListClasses(ctx context.Context, from, to time.Time) ([]domain.Class, error) {
	query := `
		SELECT id, name, description, service_type_id, instructor_id, start_time, end_time,
		       duration, capacity, location, credit_cost, status, created_at, updated_at
		FROM classes
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time ASC
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	var classes []domain.Class
	for rows.Next() {
		var c domain.Class
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Description, &c.ServiceTypeID, &c.InstructorID, &c.StartTime, &c.EndTime,
			&c.Duration, &c.Capacity, &c.Location, &c.CreditCost, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, apperror.Internal(err)
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

func (r *scheduleRepo) UpdateClassStatus(ctx context.Context, id int64, status domain.InstanceStatus) error {
	query := `UPDATE classes SET status = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *scheduleRepo) CreateSession(ctx context.Context, session *domain.PrivateSession) error {
	query := `
		INSERT INTO private_sessions (trainer_id, date, start_time, end_time, duration, location, notes, credit_cost, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'SCHEDULED')
		RETURNING id, status, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		session.TrainerID, session.Date, session.StartTime, session.EndTime,
		session.Duration, session.Location, session.Notes, session.CreditCost,
	).Scan(&session.ID, &session.Status, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *scheduleRepo) GetSession(ctx context.Context, id int64) (*domain.PrivateSession, error) {
	query := `
		SELECT id, client_id, trainer_id, date, start_time, end_time, duration,
		       location, notes, status, credit_cost, created_at, updated_at
		FROM private_sessions
		WHERE id = $1
	`
	var s domain.PrivateSession
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.ClientID, &s.TrainerID, &s.Date, &s.StartTime, &s.EndTime, &s.Duration,
		&s.Location, &s.Notes, &s.Status, &s.CreditCost, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, apperror.Internal(err)
	}
	return &s, nil
}

func (r *scheduleRepo) ListSessionsByTrainer(ctx context.Context, trainerID int64, from, to time.Time) ([]domain.PrivateSession, error) {
	query := `
		SELECT id, client_id, trainer_id, date, start_time, end_time, duration,
		       location, notes, status, credit_cost, created_at, updated_at
		FROM private_sessions
		WHERE trainer_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time ASC
	`
	rows, err := r.db.Query(ctx, query, trainerID, from, to)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	var sessions []domain.PrivateSession
	for rows.Next() {
		var s domain.PrivateSession
		if err := rows.Scan(
			&s.ID, &s.ClientID, &s.TrainerID, &s.Date, &s.StartTime, &s.EndTime, &s.Duration,
			&s.Location, &s.Notes, &s.Status, &s.CreditCost, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, apperror.Internal(err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *scheduleRepo) UpdateSessionStatus(ctx context.Context, id int64, status domain.InstanceStatus) error {
	query := `UPDATE private_sessions SET status = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
