package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/repository"
)

// MessageService internal mailbox between platform users.
type MessageService struct {
	messages *repository.MessageRepository
	users    *repository.UserRepository
}

func NewMessageService(messages *repository.MessageRepository, users *repository.UserRepository) *MessageService {
	return &MessageService{messages: messages, users: users}
}

// SendInput new message payload.
type SendInput struct {
	RecipientID uint   `json:"recipient_id" binding:"required"`
	Subject     string `json:"subject" binding:"required"`
	Body        string `json:"body" binding:"required"`
	RFQID       *uint  `json:"rfq_id"`
}

func (s *MessageService) Send(ctx context.Context, actor Actor, in SendInput) (*entity.Message, error) {
	if in.RecipientID == actor.ID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrValidation)
	}
	if _, err := s.users.FindByID(ctx, in.RecipientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: recipient does not exist", ErrValidation)
		}
		return nil, err
	}

	msg := &entity.Message{
		SenderID:    actor.ID,
		RecipientID: in.RecipientID,
		Subject:     in.Subject,
		Body:        in.Body,
		RFQID:       in.RFQID,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ReplyInput reply payload, threaded under the parent.
type ReplyInput struct {
	Body string `json:"body" binding:"required"`
}

func (s *MessageService) Reply(ctx context.Context, actor Actor, parentID uint, in ReplyInput) (*entity.Message, error) {
	parent, err := s.messages.FindByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.SenderID != actor.ID && parent.RecipientID != actor.ID {
		return nil, fmt.Errorf("%w: not part of this conversation", ErrForbidden)
	}

	recipient := parent.SenderID
	if recipient == actor.ID {
		recipient = parent.RecipientID
	}
	subject := parent.Subject
	if len(subject) < 4 || subject[:4] != "Re: " {
		subject = "Re: " + subject
	}

	msg := &entity.Message{
		SenderID:    actor.ID,
		RecipientID: recipient,
		Subject:     subject,
		Body:        in.Body,
		ParentID:    &parent.ID,
		RFQID:       parent.RFQID,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessageService) Received(ctx context.Context, actor Actor) ([]entity.Message, error) {
	return s.messages.FindReceived(ctx, actor.ID)
}

func (s *MessageService) Sent(ctx context.Context, actor Actor) ([]entity.Message, error) {
	return s.messages.FindSent(ctx, actor.ID)
}

func (s *MessageService) MarkRead(ctx context.Context, actor Actor, id uint) error {
	return s.messages.MarkRead(ctx, id, actor.ID)
}

func (s *MessageService) Conversation(ctx context.Context, actor Actor, otherID uint) ([]entity.Message, error) {
	return s.messages.FindConversation(ctx, actor.ID, otherID)
}

// systemSend records a workflow-generated message, best effort.
func (s *MessageService) systemSend(ctx context.Context, senderID, recipientID uint, subject, body string, rfqID *uint) {
	if senderID == recipientID {
		return
	}
	msg := &entity.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Subject:     subject,
		Body:        body,
		RFQID:       rfqID,
	}
	_ = s.messages.Create(ctx, msg)
}
