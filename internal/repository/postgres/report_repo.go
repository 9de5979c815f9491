package postgres

import (
	"context"
	"time"

	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"

	"github.com/jackc/pgx/v5/pgxpool"
)

type reportRepo struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) domain.ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) BookingCounts(ctx context.Context, from, to time.Time) (total, cancelled, attended, noShow, activeUsers, creditsRedeemed int64, err error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'CANCELLED'),
		       COUNT(*) FILTER (WHERE status = 'ATTENDED'),
		       COUNT(*) FILTER (WHERE status = 'NO_SHOW'),
		       COUNT(DISTINCT user_id),
		       COALESCE(SUM(credit_amount) FILTER (WHERE status IN ('BOOKED', 'ATTENDED')), 0)
		FROM bookings
		WHERE created_at >= $1 AND created_at < $2
	`
	err = r.db.QueryRow(ctx, query, from, to).Scan(
		&total, &cancelled, &attended, &noShow, &activeUsers, &creditsRedeemed,
	)
	if err != nil {
		err = apperror.Internal(err)
	}
	return
}

func (r *reportRepo) DailyRedeemedCredits(ctx context.Context, from, to time.Time) (map[time.Time]int64, error) {
	query := `
		SELECT DATE_TRUNC('day', created_at) AS day, COALESCE(SUM(amount), 0)
		FROM credit_logs
		WHERE operation = 'REDEEM' AND created_at >= $1 AND created_at < $2
		GROUP BY day
		ORDER BY day ASC
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	daily := make(map[time.Time]int64)
	for rows.Next() {
		var day time.Time
		var credits int64
		if err := rows.Scan(&day, &credits); err != nil {
			return nil, apperror.Internal(err)
		}
		daily[day.UTC()] = credits
	}
	return daily, rows.Err()
}

func (r *reportRepo) ClassUtilization(ctx context.Context, from, to time.Time) ([]domain.ClassUtilization, error) {
	query := `
		SELECT c.id, c.name, c.start_time, c.capacity,
		       COUNT(b.id) FILTER (WHERE b.status IN ('BOOKED', 'ATTENDED'))
		FROM classes c
		LEFT JOIN bookings b ON b.type = 'CLASS' AND b.entity_id = c.id
		WHERE c.start_time >= $1 AND c.start_time < $2 AND c.status <> 'CANCELLED'
		GROUP BY c.id, c.name, c.start_time, c.capacity
		ORDER BY c.start_time ASC
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	var utilization []domain.ClassUtilization
	for rows.Next() {
		var u domain.ClassUtilization
		if err := rows.Scan(&u.ClassID, &u.Name, &u.StartTime, &u.Capacity, &u.Booked); err != nil {
			return nil, apperror.Internal(err)
		}
		if u.Capacity > 0 {
			u.Utilization = float64(u.Booked) / float64(u.Capacity) * 100
		}
		utilization = append(utilization, u)
	}
	return utilization, rows.Err()
}

func (r *reportRepo) ExportBookings(ctx context.Context, from, to time.Time) ([]domain.RawBookingRow, error) {
	query := `
		SELECT b.id, u.email, b.type, b.entity_id,
		       COALESCE(c.name, 'Private Session'), b.status, b.credit_amount, b.start_time, b.created_at
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		LEFT JOIN classes c ON b.type = 'CLASS' AND b.entity_id = c.id
		WHERE b.created_at >= $1 AND b.created_at < $2
		ORDER BY b.created_at ASC
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	var export []domain.RawBookingRow
	for rows.Next() {
		var row domain.RawBookingRow
		if err := rows.Scan(
			&row.BookingID, &row.UserEmail, &row.Kind, &row.EntityID,
			&row.EntityName, &row.Status, &row.CreditAmount, &row.StartTime, &row.CreatedAt,
		); err != nil {
			return nil, apperror.Internal(err)
		}
		export = append(export, row)
	}
	return export, rows.Err()
}
