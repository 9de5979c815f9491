package domain

import (
	"context"
	"time"
)

type MessagePriority string

const (
	PriorityNormal MessagePriority = "normal"
	PriorityHigh   MessagePriority = "high"
	PriorityUrgent MessagePriority = "urgent"
)

// ClientMessage is a staff-to-client (or client-to-staff) message.
type ClientMessage struct {
	ID          int64           `json:"id"`
	RecipientID int64           `json:"recipient_id"`
	SenderID    int64           `json:"sender_id"`
	SenderName  string          `json:"sender_name"`
	SenderRole  Role            `json:"sender_role"`
	Subject     string          `json:"subject"`
	Content     string          `json:"content"`
	MessageType string          `json:"message_type"`
	Priority    MessagePriority `json:"priority"`
	ReadStatus  bool            `json:"read_status"`
	ReadAt      *time.Time      `json:"read_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type SendMessageRequest struct {
	RecipientID int64            `json:"recipient_id" validate:"required"`
	Subject     string           `json:"subject" validate:"required,max=255,no_emoji"`
	Content     string           `json:"content" validate:"required,max=10000"`
	MessageType *string          `json:"message_type,omitempty" validate:"omitempty,max=50"`
	Priority    *MessagePriority `json:"priority,omitempty" validate:"omitempty,oneof=normal high urgent"`
}

type MessageRepository interface {
	Create(ctx context.Context, msg *ClientMessage) error
	GetByID(ctx context.Context, id int64) (*ClientMessage, error)
	ListByRecipient(ctx context.Context, recipientID int64, unreadOnly bool) ([]ClientMessage, error)
	MarkRead(ctx context.Context, id int64, readAt time.Time) error
	CountUnread(ctx context.Context, recipientID int64) (int64, error)
}

type MessageUsecase interface {
	Send(ctx context.Context, senderID int64, req *SendMessageRequest) (*ClientMessage, error)
	Inbox(ctx context.Context, userID int64, unreadOnly bool) ([]ClientMessage, error)
	MarkRead(ctx context.Context, userID, messageID int64) error
	UnreadCount(ctx context.Context, userID int64) (int64, error)
}
