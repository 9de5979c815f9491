package postgres

import (
	"context"
	"errors"
	"strconv"

	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type bookingRepo struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) domain.BookingRepository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) CreateClassBooking(ctx context.Context, userID int64, class *domain.Class, creditCost int, staffID *int64) (*domain.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperror.Unavailable("Booking store unavailable", err)
	}
	defer tx.Rollback(ctx)

	// Lock the class row so concurrent bookings re-count capacity serially.
	var capacity int
	var status domain.InstanceStatus
	lock := `SELECT capacity, status FROM classes WHERE id = $1 FOR UPDATE`
	err = tx.QueryRow(ctx, lock, class.ID).Scan(&capacity, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, apperror.Internal(err)
	}
	if status != domain.InstanceScheduled {
		return nil, domain.ErrInvalidState
	}

	active, err := countActiveTx(ctx, tx, domain.BookingClass, class.ID)
	if err != nil {
		return nil, err
	}
	if active >= capacity {
		return nil, domain.ErrClassFull
	}

	if creditCost > 0 {
		ref := domain.RedemptionRef{
			EntityType: string(domain.BookingClass),
			EntityID:   formatID(class.ID),
			Note:       class.Name,
		}
		if err := redeemCreditsTx(ctx, tx, userID, creditCost, ref); err != nil {
			return nil, err
		}
	}

	booking := &domain.Booking{
		UserID:       userID,
		StaffID:      staffID,
		Kind:         domain.BookingClass,
		EntityID:     class.ID,
		Date:         class.StartTime,
		StartTime:    class.StartTime,
		EndTime:      &class.EndTime,
		Status:       domain.StatusBooked,
		CreditAmount: creditCost,
	}
	if err := insertBookingTx(ctx, tx, booking); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.Unavailable("Booking store unavailable", err)
	}
	return booking, nil
}

func (r *bookingRepo) CreateSessionBooking(ctx context.Context, userID int64, session *domain.PrivateSession, creditCost int) (*domain.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperror.Unavailable("Booking store unavailable", err)
	}
	defer tx.Rollback(ctx)

	var clientID *int64
	var status domain.InstanceStatus
	lock := `SELECT client_id, status FROM private_sessions WHERE id = $1 FOR UPDATE`
	err = tx.QueryRow(ctx, lock, session.ID).Scan(&clientID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, apperror.Internal(err)
	}
	if status != domain.InstanceScheduled {
		return nil, domain.ErrInvalidState
	}
	if clientID != nil {
		return nil, domain.ErrSlotTaken
	}

	if creditCost > 0 {
		ref := domain.RedemptionRef{
			EntityType: string(domain.BookingPrivateSession),
			EntityID:   formatID(session.ID),
		}
		if err := redeemCreditsTx(ctx, tx, userID, creditCost, ref); err != nil {
			return nil, err
		}
	}

	booking := &domain.Booking{
		UserID:       userID,
		Kind:         domain.BookingPrivateSession,
		EntityID:     session.ID,
		Date:         session.Date,
		StartTime:    session.StartTime,
		EndTime:      &session.EndTime,
		Status:       domain.StatusBooked,
		CreditAmount: creditCost,
	}
	if err := insertBookingTx(ctx, tx, booking); err != nil {
		return nil, err
	}

	claim := `UPDATE private_sessions SET client_id = $2, updated_at = NOW() WHERE id = $1`
	if _, err := tx.Exec(ctx, claim, session.ID, userID); err != nil {
		return nil, apperror.Internal(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.Unavailable("Booking store unavailable", err)
	}
	return booking, nil
}

func (r *bookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `
		SELECT id, user_id, staff_id, type, entity_id, date, start_time, end_time,
		       status, cancellation_reason, credit_amount, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`
	var b domain.Booking
	err := r.db.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.UserID, &b.StaffID, &b.Kind, &b.EntityID, &b.Date, &b.StartTime, &b.EndTime,
		&b.Status, &b.CancellationReason, &b.CreditAmount, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, apperror.Internal(err)
	}
	return &b, nil
}

func (r *bookingRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	query := `
		SELECT id, user_id, staff_id, type, entity_id, date, start_time, end_time,
		       status, cancellation_reason, credit_amount, created_at, updated_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY start_time DESC
	`
	return r.queryBookings(ctx, query, userID)
}

func (r *bookingRepo) ListByEntity(ctx context.Context, kind domain.BookingKind, entityID int64) ([]domain.Booking, error) {
	query := `
		SELECT id, user_id, staff_id, type, entity_id, date, start_time, end_time,
		       status, cancellation_reason, credit_amount, created_at, updated_at
		FROM bookings
		WHERE type = $1 AND entity_id = $2
		ORDER BY created_at ASC
	`
	return r.queryBookings(ctx, query, kind, entityID)
}

func (r *bookingRepo) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, reason *string) error {
	query := `
		UPDATE bookings
		SET status = $2, cancellation_reason = $3, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, status, reason)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *bookingRepo) CancelWithRefund(ctx context.Context, booking *domain.Booking, reason *string, refundAmount int, ref domain.RedemptionRef) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperror.Unavailable("Booking store unavailable", err)
	}
	defer tx.Rollback(ctx)

	// Only a BOOKED row cancels; the status filter makes a concurrent
	// double-cancel a no-op instead of a double refund.
	query := `
		UPDATE bookings
		SET status = $2, cancellation_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'BOOKED'
	`
	tag, err := tx.Exec(ctx, query, booking.ID, domain.StatusCancelled, reason)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}

	// Cancelling a private session frees its slot for the next client.
	if booking.Kind == domain.BookingPrivateSession {
		release := `UPDATE private_sessions SET client_id = NULL, updated_at = NOW() WHERE id = $1 AND client_id = $2`
		if _, err := tx.Exec(ctx, release, booking.EntityID, booking.UserID); err != nil {
			return apperror.Internal(err)
		}
	}

	if refundAmount > 0 {
		if err := refundCreditsTx(ctx, tx, booking.UserID, refundAmount, ref); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.Unavailable("Booking store unavailable", err)
	}
	return nil
}

func (r *bookingRepo) CountActive(ctx context.Context, kind domain.BookingKind, entityID int64) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM bookings
		WHERE type = $1 AND entity_id = $2 AND status IN ('BOOKED', 'ATTENDED')
	`
	if err := r.db.QueryRow(ctx, query, kind, entityID).Scan(&count); err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

func (r *bookingRepo) queryBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.StaffID, &b.Kind, &b.EntityID, &b.Date, &b.StartTime, &b.EndTime,
			&b.Status, &b.CancellationReason, &b.CreditAmount, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, apperror.Internal(err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func countActiveTx(ctx context.Context, tx pgx.Tx, kind domain.BookingKind, entityID int64) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM bookings
		WHERE type = $1 AND entity_id = $2 AND status IN ('BOOKED', 'ATTENDED')
	`
	if err := tx.QueryRow(ctx, query, kind, entityID).Scan(&count); err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

// insertBookingTx relies on the partial unique index over
// (type, entity_id, user_id) WHERE status IN ('BOOKED','ATTENDED') as the
// final double-booking guard under concurrency.
func insertBookingTx(ctx context.Context, tx pgx.Tx, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (user_id, staff_id, type, entity_id, date, start_time, end_time, status, credit_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := tx.QueryRow(ctx, query,
		b.UserID, b.StaffID, b.Kind, b.EntityID, b.Date, b.StartTime, b.EndTime, b.Status, b.CreditAmount,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrAlreadyBooked
		}
		return apperror.Internal(err)
	}
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
