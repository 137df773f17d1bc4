package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
)

// MessageRepository internal mailbox storage
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) FindByID(ctx context.Context, id uint) (*entity.Message, error) {
	var m entity.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Recipient").
		First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepository) FindReceived(ctx context.Context, userID uint) ([]entity.Message, error) {
	var items []entity.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("recipient_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *MessageRepository) FindSent(ctx context.Context, userID uint) ([]entity.Message, error) {
	var items []entity.Message
	err := r.db.WithContext(ctx).
		Preload("Recipient").
		Where("sender_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// FindConversation returns both directions between two users, oldest first.
func (r *MessageRepository) FindConversation(ctx context.Context, a, b uint) ([]entity.Message, error) {
	var items []entity.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Recipient").
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", a, b, b, a).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *MessageRepository) Create(ctx context.Context, m *entity.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MessageRepository) MarkRead(ctx context.Context, id, recipientID uint) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
