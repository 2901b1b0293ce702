package repository

import (
	"context"

	"talenta/internal/models"
	"talenta/internal/observability"

	"gorm.io/gorm"
)

// NotificationListLimit caps the notification inbox.
const NotificationListLimit = 50

// NotificationRepository defines persistence for notifications. Every
// statement is scoped to the recipient.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID uint, limit int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id, userID uint) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}

type notificationRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db, log: observability.NewRepoLogger("notifications")}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return logInternal(ctx, r.log, "create", err)
	}
	return nil
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID uint, limit int) ([]*models.Notification, error) {
	if limit <= 0 || limit > NotificationListLimit {
		limit = NotificationListLimit
	}
	var list []*models.Notification
	err := r.db.WithContext(ctx).
		Preload("RelatedUser", summaryPreload).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, logInternal(ctx, r.log, "list", err)
	}
	return list, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// MarkRead flags one notification as read and returns the updated row.
// A notification owned by someone else is reported as missing.
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uint) (*models.Notification, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Notification", id)
	}

	var n models.Notification
	if err := db.Preload("RelatedUser", summaryPreload).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&n).Error; err != nil {
		return nil, translateError(err, "Notification", id)
	}
	return &n, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
