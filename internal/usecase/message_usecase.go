package usecase

import (
	"context"
	"errors"
	"time"

	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"
)

type messageUsecase struct {
	messageRepo domain.MessageRepository
	userRepo    domain.UserRepository
}

func NewMessageUsecase(messageRepo domain.MessageRepository, userRepo domain.UserRepository) domain.MessageUsecase {
	return &messageUsecase{
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

func (u *messageUsecase) Send(ctx context.Context, senderID int64, req *domain.SendMessageRequest) (*domain.ClientMessage, error) {
	if !isStaff(ctx) {
		return nil, apperror.Forbidden("Staff role required")
	}

	sender, err := u.userRepo.GetByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Sender not found")
		}
		return nil, err
	}
	if _, err := u.userRepo.GetByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Recipient not found")
		}
		return nil, err
	}

	msg := &domain.ClientMessage{
		RecipientID: req.RecipientID,
		SenderID:    senderID,
		SenderName:  displayName(sender),
		SenderRole:  sender.Role,
		Subject:     req.Subject,
		Content:     req.Content,
		MessageType: "general",
		Priority:    domain.PriorityNormal,
	}
	if req.MessageType != nil {
		msg.MessageType = *req.MessageType
	}
	if req.Priority != nil {
		msg.Priority = *req.Priority
	}

	if err := u.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (u *messageUsecase) Inbox(ctx context.Context, userID int64, unreadOnly bool) ([]domain.ClientMessage, error) {
	return u.messageRepo.ListByRecipient(ctx, userID, unreadOnly)
}

func (u *messageUsecase) MarkRead(ctx context.Context, userID, messageID int64) error {
	msg, err := u.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Message not found")
		}
		return err
	}
	if msg.RecipientID != userID {
		return apperror.Forbidden("Cannot mark another user's message as read")
	}
	if msg.ReadStatus {
		return nil
	}
	return u.messageRepo.MarkRead(ctx, messageID, time.Now())
}

func (u *messageUsecase) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return u.messageRepo.CountUnread(ctx, userID)
}

// displayName falls back to the email address when no name is on file.
func displayName(user *domain.User) string {
	var name string
	if user.FirstName != nil {
		name = *user.FirstName
	}
	if user.LastName != nil {
		if name != "" {
			name += " "
		}
		name += *user.LastName
	}
	if name == "" {
		return user.Email
	}
	return name
}
