package postgres

import (
	"context"
	"errors"

	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"
	"go-studio-backend/pkg/audit"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

type creditRepo struct {
	db *pgxpool.Pool
}

func NewCreditRepository(db *pgxpool.Pool) domain.CreditRepository {
	return &creditRepo{db: db}
}

func (r *creditRepo) Grant(ctx context.Context, entry *domain.CreditEntry, ref domain.RedemptionRef) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperror.Unavailable("Credit store unavailable", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO credits (user_id, amount, remaining_amount, expiry_date, source, source_id, status)
		VALUES ($1, $2, $2, $3, $4, $5, 'ACTIVE')
		RETURNING id, remaining_amount, status, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		entry.UserID, entry.Amount, entry.ExpiryDate, entry.Source, entry.SourceID,
	).Scan(&entry.ID, &entry.RemainingAmount, &entry.Status, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return apperror.Internal(err)
	}

	log := &domain.CreditLog{
		CreditID:      &entry.ID,
		UserID:        entry.UserID,
		Amount:        entry.Amount,
		Operation:     domain.OpGrant,
		TransactionID: uuid.NewString(),
	}
	applyRef(log, ref)
	if err := appendCreditLogTx(ctx, tx, log); err != nil {
		return apperror.Internal(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.Unavailable("Credit store unavailable", err)
	}
	return nil
}

func (r *creditRepo) Redeem(ctx context.Context, userID int64, amount int, ref domain.RedemptionRef) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperror.Unavailable("Credit store unavailable", err)
	}
	defer tx.Rollback(ctx)

	if err := redeemCreditsTx(ctx, tx, userID, amount, ref); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.Unavailable("Credit store unavailable", err)
	}
	return nil
}

func (r *creditRepo) Refund(ctx context.Context, userID int64, amount int, ref domain.RedemptionRef) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperror.Unavailable("Credit store unavailable", err)
	}
	defer tx.Rollback(ctx)

	if err := refundCreditsTx(ctx, tx, userID, amount, ref); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.Unavailable("Credit store unavailable", err)
	}
	return nil
}

func (r *creditRepo) Balance(ctx context.Context, userID int64) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, apperror.Unavailable("Credit store unavailable", err)
	}
	defer tx.Rollback(ctx)

	if err := expireDueCreditsTx(ctx, tx, userID); err != nil {
		return 0, err
	}

	var balance int
	query := `
		SELECT COALESCE(SUM(remaining_amount), 0)
		FROM credits
		WHERE user_id = $1 AND status = 'ACTIVE'
		  AND (expiry_date IS NULL OR expiry_date >= NOW())
	`
	if err := tx.QueryRow(ctx, query, userID).Scan(&balance); err != nil {
		return 0, apperror.Internal(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, apperror.Unavailable("Credit store unavailable", err)
	}
	return balance, nil
}

func (r *creditRepo) ListEntries(ctx context.Context, userID int64) ([]domain.CreditEntry, error) {
	query := `
		SELECT id, user_id, amount, remaining_amount, expiry_date, source, source_id, status, created_at, updated_at
		FROM credits
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	var entries []domain.CreditEntry
	for rows.Next() {
		var e domain.CreditEntry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Amount, &e.RemainingAmount, &e.ExpiryDate,
			&e.Source, &e.SourceID, &e.Status, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, apperror.Internal(err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *creditRepo) ListLogs(ctx context.Context, userID int64, limit int) ([]domain.CreditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
		SELECT id, credit_id, user_id, amount, operation, related_entity_type, related_entity_id,
		       transaction_id, note, created_at
		FROM credit_logs
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	var logs []domain.CreditLog
	for rows.Next() {
		var l domain.CreditLog
		if err := rows.Scan(
			&l.ID, &l.CreditID, &l.UserID, &l.Amount, &l.Operation,
			&l.RelatedEntityType, &l.RelatedEntityID, &l.TransactionID, &l.Note, &l.CreatedAt,
		); err != nil {
			return nil, apperror.Internal(err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// --- transaction helpers shared with the booking repository ---

// redeemCreditsTx consumes amount from the user's active unexpired entries,
// oldest expiry first (NULL expiry last). Must run inside a transaction; on
// domain.ErrInsufficientCredit the caller rolls back and nothing persists.
func redeemCreditsTx(ctx context.Context, tx pgx.Tx, userID int64, amount int, ref domain.RedemptionRef) error {
	if amount <= 0 {
		return nil
	}

	if err := expireDueCreditsTx(ctx, tx, userID); err != nil {
		return err
	}

	query := `
		SELECT id, remaining_amount
		FROM credits
		WHERE user_id = $1 AND status = 'ACTIVE'
		  AND (expiry_date IS NULL OR expiry_date >= NOW())
		ORDER BY expiry_date ASC NULLS LAST, id ASC
		FOR UPDATE
	`
	rows, err := tx.Query(ctx, query, userID)
	if err != nil {
		return apperror.Internal(err)
	}

	type lockedEntry struct {
		id        int64
		remaining int
	}
	var entries []lockedEntry
	var available int
	for rows.Next() {
		var e lockedEntry
		if err := rows.Scan(&e.id, &e.remaining); err != nil {
			rows.Close()
			return apperror.Internal(err)
		}
		entries = append(entries, e)
		available += e.remaining
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return apperror.Internal(err)
	}

	if available < amount {
		return domain.ErrInsufficientCredit
	}

	remaining := amount
	for _, e := range entries {
		if remaining == 0 {
			break
		}
		take := e.remaining
		if take > remaining {
			take = remaining
		}
		newRemaining := e.remaining - take

		status := domain.CreditActive
		if newRemaining == 0 {
			status = domain.CreditUsed
		}
		update := `UPDATE credits SET remaining_amount = $2, status = $3, updated_at = NOW() WHERE id = $1`
		if _, err := tx.Exec(ctx, update, e.id, newRemaining, status); err != nil {
			return apperror.Internal(err)
		}
		remaining -= take
	}

	log := &domain.CreditLog{
		UserID:        userID,
		Amount:        amount,
		Operation:     domain.OpRedeem,
		TransactionID: uuid.NewString(),
	}
	applyRef(log, ref)
	if err := appendCreditLogTx(ctx, tx, log); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// refundCreditsTx restores amount into the most recently consumed entries,
// never pushing an entry above its original grant. Overflow lands in a fresh
// REFUND-sourced entry with no expiry.
func refundCreditsTx(ctx context.Context, tx pgx.Tx, userID int64, amount int, ref domain.RedemptionRef) error {
	if amount <= 0 {
		return nil
	}

	query := `
		SELECT id, amount, remaining_amount, status
		FROM credits
		WHERE user_id = $1
		  AND remaining_amount < amount
		  AND status IN ('ACTIVE', 'USED')
		  AND (expiry_date IS NULL OR expiry_date >= NOW())
		ORDER BY updated_at DESC, id DESC
		FOR UPDATE
	`
	rows, err := tx.Query(ctx, query, userID)
	if err != nil {
		return apperror.Internal(err)
	}

	type consumedEntry struct {
		id        int64
		amount    int
		remaining int
	}
	var entries []consumedEntry
	for rows.Next() {
		var e consumedEntry
		var status string
		if err := rows.Scan(&e.id, &e.amount, &e.remaining, &status); err != nil {
			rows.Close()
			return apperror.Internal(err)
		}
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return apperror.Internal(err)
	}

	remaining := amount
	for _, e := range entries {
		if remaining == 0 {
			break
		}
		restore := e.amount - e.remaining
		if restore > remaining {
			restore = remaining
		}
		update := `UPDATE credits SET remaining_amount = remaining_amount + $2, status = 'ACTIVE', updated_at = NOW() WHERE id = $1`
		if _, err := tx.Exec(ctx, update, e.id, restore); err != nil {
			return apperror.Internal(err)
		}
		remaining -= restore
	}

	if remaining > 0 {
		insert := `
			INSERT INTO credits (user_id, amount, remaining_amount, source, status)
			VALUES ($1, $2, $2, 'REFUND', 'ACTIVE')
		`
		if _, err := tx.Exec(ctx, insert, userID, remaining); err != nil {
			return apperror.Internal(err)
		}
	}

	log := &domain.CreditLog{
		UserID:        userID,
		Amount:        amount,
		Operation:     domain.OpRefund,
		TransactionID: uuid.NewString(),
	}
	applyRef(log, ref)
	if err := appendCreditLogTx(ctx, tx, log); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// expireDueCreditsTx marks overdue entries EXPIRED and appends one EXPIRE
// log per entry. Safe to call repeatedly; already-expired entries are
// untouched.
func expireDueCreditsTx(ctx context.Context, tx pgx.Tx, userID int64) error {
	query := `
		UPDATE credits
		SET status = 'EXPIRED', updated_at = NOW()
		WHERE user_id = $1 AND status = 'ACTIVE'
		  AND expiry_date IS NOT NULL AND expiry_date < NOW()
		RETURNING id, remaining_amount
	`
	rows, err := tx.Query(ctx, query, userID)
	if err != nil {
		return apperror.Internal(err)
	}

	type expiredEntry struct {
		id        int64
		remaining int
	}
	var expired []expiredEntry
	for rows.Next() {
		var e expiredEntry
		if err := rows.Scan(&e.id, &e.remaining); err != nil {
			rows.Close()
			return apperror.Internal(err)
		}
		expired = append(expired, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return apperror.Internal(err)
	}

	for _, e := range expired {
		creditID := e.id
		log := &domain.CreditLog{
			CreditID:      &creditID,
			UserID:        userID,
			Amount:        e.remaining,
			Operation:     domain.OpExpire,
			TransactionID: uuid.NewString(),
		}
		if err := appendCreditLogTx(ctx, tx, log); err != nil {
			return apperror.Internal(err)
		}
	}
	return nil
}

// appendCreditLogTx inserts a hash-chained audit row. The previous row's
// hash is read inside the same transaction so concurrent writers serialize
// on the chain tail.
func appendCreditLogTx(ctx context.Context, tx pgx.Tx, log *domain.CreditLog) error {
	previousHash := audit.GenesisHash
	tail := `SELECT row_hash FROM credit_logs ORDER BY id DESC LIMIT 1 FOR UPDATE`
	err := tx.QueryRow(ctx, tail).Scan(&previousHash)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	log.PreviousHash = previousHash

	insert := `
		INSERT INTO credit_logs (credit_id, user_id, amount, operation, related_entity_type,
		                         related_entity_id, transaction_id, note, previous_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, insert,
		log.CreditID, log.UserID, log.Amount, log.Operation,
		log.RelatedEntityType, log.RelatedEntityID, log.TransactionID, log.Note, log.PreviousHash,
	).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return err
	}

	reference := ""
	if log.RelatedEntityType != nil && log.RelatedEntityID != nil {
		reference = *log.RelatedEntityType + ":" + *log.RelatedEntityID
	}
	log.RowHash = audit.ComputeLogHash(
		log.ID, string(log.Operation), log.CreatedAt, log.UserID, log.Amount,
		log.TransactionID, reference, log.PreviousHash,
	)

	_, err = tx.Exec(ctx, `UPDATE credit_logs SET row_hash = $2 WHERE id = $1`, log.ID, log.RowHash)
	return err
}

func applyRef(log *domain.CreditLog, ref domain.RedemptionRef) {
	if ref.EntityType != "" {
		entityType := ref.EntityType
		log.RelatedEntityType = &entityType
	}
	if ref.EntityID != "" {
		entityID := ref.EntityID
		log.RelatedEntityID = &entityID
	}
	if ref.Note != "" {
		note := ref.Note
		log.Note = &note
	}
}

// --- credit packages ---

type creditPackageRepo struct {
	db *pgxpool.Pool
}

func NewCreditPackageRepository(db *pgxpool.Pool) domain.CreditPackageRepository {
	return &creditPackageRepo{db: db}
}

func (r *creditPackageRepo) List(ctx context.Context, activeOnly bool) ([]domain.CreditPackage, error) {
	query := `
		SELECT id, name, description, credits, price, validity_days, is_best_value, is_active, created_at, updated_at
		FROM credit_packages
		WHERE ($1 = false OR is_active = true)
		ORDER BY credits ASC
	`
	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	var packages []domain.CreditPackage
	for rows.Next() {
		var p domain.CreditPackage
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Credits, &p.Price,
			&p.ValidityDays, &p.IsBestValue, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, apperror.Internal(err)
		}
		packages = append(packages, p)
	}
	return packages, rows.Err()
}

func (r *creditPackageRepo) GetByID(ctx context.Context, id int64) (*domain.CreditPackage, error) {
	query := `
		SELECT id, name, description, credits, price, validity_days, is_best_value, is_active, created_at, updated_at
		FROM credit_packages
		WHERE id = $1
	`
	var p domain.CreditPackage
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Credits, &p.Price,
		&p.ValidityDays, &p.IsBestValue, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, apperror.Internal(err)
	}
	return &p, nil
}
