package repository

import (
	"context"

	"talenta/internal/models"
	"talenta/internal/observability"

	"gorm.io/gorm"
)

// MessageRepository defines the interface for direct message operations
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	// ListForUser returns every message sent or received by userID, newest first.
	ListForUser(ctx context.Context, userID uint) ([]models.Message, error)
	// History returns the messages exchanged by a and b, oldest first.
	History(ctx context.Context, a, b uint) ([]models.Message, error)
	// MarkReadFrom flags unread messages from sender to receiver as read.
	MarkReadFrom(ctx context.Context, senderID, receiverID uint) (int64, error)
	CountUnread(ctx context.Context, receiverID uint) (int64, error)
}

// messageRepository implements MessageRepository
type messageRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db, log: observability.NewRepoLogger("messages")}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return logInternal(ctx, r.log, "create", err)
	}
	return nil
}

func (r *messageRepository) ListForUser(ctx context.Context, userID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

func (r *messageRepository) History(ctx context.Context, a, b uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at ASC").
		Order("id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

func (r *messageRepository) MarkReadFrom(ctx context.Context, senderID, receiverID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read = ?", senderID, receiverID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *messageRepository) CountUnread(ctx context.Context, receiverID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND read = ?", receiverID, false).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
