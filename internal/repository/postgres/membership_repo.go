package postgres

import (
	"context"
	"errors"

	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type membershipRepo struct {
	db *pgxpool.Pool
}

func NewMembershipRepository(db *pgxpool.Pool) domain.MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) CreateType(ctx context.Context, mt *domain.MembershipType) error {
	query := `
		INSERT INTO membership_types (name, description, price, duration_days, credit_amount, credit_frequency, features, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true)
		RETURNING id, active, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		mt.Name, mt.Description, mt.Price, mt.DurationDays,
		mt.CreditAmount, mt.CreditFrequency, pq.Array(mt.Features),
	).Scan(&mt.ID, &mt.Active, &mt.CreatedAt, &mt.UpdatedAt)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *membershipRepo) ListTypes(ctx context.Context, activeOnly bool) ([]domain.MembershipType, error) {
	query := `
		SELECT id, name, description, price, duration_days, credit_amount, credit_frequency, features, active, created_at, updated_at
		FROM membership_types
		WHERE ($1 = false OR active = true)
		ORDER BY price ASC
	`
	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	var types []domain.MembershipType
	for rows.Next() {
		var mt domain.MembershipType
		if err := rows.Scan(
			&mt.ID, &mt.Name, &mt.Description, &mt.Price, &mt.DurationDays,
			&mt.CreditAmount, &mt.CreditFrequency, pq.Array(&mt.Features),
			&mt.Active, &mt.CreatedAt, &mt.UpdatedAt,
		); err != nil {
			return nil, apperror.Internal(err)
		}
		types = append(types, mt)
	}
	return types, rows.Err()
}

func (r *membershipRepo) GetType(ctx context.Context, id int64) (*domain.MembershipType, error) {
	query := `
		SELECT id, name, description, price, duration_days, credit_amount, credit_frequency, features, active, created_at, updated_at
		FROM membership_types
		WHERE id = $1
	`
	var mt domain.MembershipType
	err := r.db.QueryRow(ctx, query, id).Scan(
		&mt.ID, &mt.Name, &mt.Description, &mt.Price, &mt.DurationDays,
		&mt.CreditAmount, &mt.CreditFrequency, pq.Array(&mt.Features),
		&mt.Active, &mt.CreatedAt, &mt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, apperror.Internal(err)
	}
	return &mt, nil
}

func (r *membershipRepo) Create(ctx context.Context, m *domain.Membership) error {
	query := `
		INSERT INTO memberships (user_id, membership_type_id, start_date, end_date, status, auto_renew)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		m.UserID, m.MembershipTypeID, m.StartDate, m.EndDate, m.Status, m.AutoRenew,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *membershipRepo) GetByID(ctx context.Context, id int64) (*domain.Membership, error) {
	query := `
		SELECT id, user_id, membership_type_id, start_date, end_date, status, auto_renew, created_at, updated_at
		FROM memberships
		WHERE id = $1
	`
	return r.scanMembership(r.db.QueryRow(ctx, query, id))
}

func (r *membershipRepo) GetActiveByUser(ctx context.Context, userID int64) (*domain.Membership, error) {
	query := `
		SELECT id, user_id, membership_type_id, start_date, end_date, status, auto_renew, created_at, updated_at
		FROM memberships
		WHERE user_id = $1 AND status IN ('ACTIVE', 'PAUSED')
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanMembership(r.db.QueryRow(ctx, query, userID))
}

func (r *membershipRepo) UpdateStatus(ctx context.Context, id int64, status domain.MembershipStatus) error {
	query := `UPDATE memberships SET status = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *membershipRepo) scanMembership(row pgx.Row) (*domain.Membership, error) {
	var m domain.Membership
	err := row.Scan(
		&m.ID, &m.UserID, &m.MembershipTypeID, &m.StartDate, &m.EndDate,
		&m.Status, &m.AutoRenew, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, apperror.Internal(err)
	}
	return &m, nil
}
