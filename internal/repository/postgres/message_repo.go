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

type messageRepo struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) domain.MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, msg *domain.ClientMessage) error {
	query := `
		INSERT INTO client_messages (recipient_id, sender_id, sender_name, sender_role, subject,
		                             content, message_type, priority, read_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false)
		RETURNING id, read_status, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		msg.RecipientID, msg.SenderID, msg.SenderName, msg.SenderRole,
		msg.Subject, msg.Content, msg.MessageType, msg.Priority,
	).Scan(&msg.ID, &msg.ReadStatus, &msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *messageRepo) GetByID(ctx context.Context, id int64) (*domain.ClientMessage, error) {
	query := `
		SELECT id, recipient_id, sender_id, sender_name, sender_role, subject, content,
		       message_type, priority, read_status, read_at, created_at, updated_at
		FROM client_messages
		WHERE id = $1
	`
	var m domain.ClientMessage
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.RecipientID, &m.SenderID, &m.SenderName, &m.SenderRole, &m.Subject, &m.Content,
		&m.MessageType, &m.Priority, &m.ReadStatus, &m.ReadAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, apperror.Internal(err)
	}
	return &m, nil
}

func (r *messageRepo) ListByRecipient(ctx context.Context, recipientID int64, unreadOnly bool) ([]domain.ClientMessage, error) {
	query := `
		SELECT id, recipient_id, sender_id, sender_name, sender_role, subject, content,
		       message_type, priority, read_status, read_at, created_at, updated_at
		FROM client_messages
		WHERE recipient_id = $1 AND ($2 = false OR read_status = false)
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, recipientID, unreadOnly)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	var messages []domain.ClientMessage
	for rows.Next() {
		var m domain.ClientMessage
		if err := rows.Scan(
			&m.ID, &m.RecipientID, &m.SenderID, &m.SenderName, &m.SenderRole, &m.Subject, &m.Content,
			&m.MessageType, &m.Priority, &m.ReadStatus, &m.ReadAt, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, apperror.Internal(err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *messageRepo) MarkRead(ctx context.Context, id int64, readAt time.Time) error {
	query := `
		UPDATE client_messages
		SET read_status = true, read_at = $2, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, readAt)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *messageRepo) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM client_messages WHERE recipient_id = $1 AND read_status = false`
	if err := r.db.QueryRow(ctx, query, recipientID).Scan(&count); err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}
