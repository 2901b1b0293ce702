package service

import (
	"context"
	"log/slog"

	"talenta/internal/middleware"
	"talenta/internal/models"
	"talenta/internal/notifications"
	"talenta/internal/repository"
)

// NotificationService writes, reads and acknowledges notifications and keeps
// connected clients in sync through the publisher.
type NotificationService struct {
	repo      repository.NotificationRepository
	messages  repository.MessageRepository
	profiles  repository.ProfileRepository
	publisher EventPublisher
}

func NewNotificationService(
	repo repository.NotificationRepository,
	messages repository.MessageRepository,
	profiles repository.ProfileRepository,
	publisher EventPublisher,
) *NotificationService {
	return &NotificationService{
		repo:      repo,
		messages:  messages,
		profiles:  profiles,
		publisher: publisherOrNoop(publisher),
	}
}

// Notify stores n and publishes it to the recipient with its related user attached.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	if n.RelatedUserID != nil && n.RelatedUser == nil && s.profiles != nil {
		summaries, err := s.profiles.GetSummaries(ctx, []uint{*n.RelatedUserID})
		if err == nil {
			n.RelatedUser = summaries[*n.RelatedUserID]
		}
	}
	publish(ctx, s.publisher, n.UserID, notifications.EventNotificationCreated, n)
	return nil
}

// notifyQuietly is Notify for side effects of another write: failures are logged.
func (s *NotificationService) notifyQuietly(ctx context.Context, n *models.Notification) {
	if s == nil {
		return
	}
	if err := s.Notify(ctx, n); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to create notification",
			slog.String("type", n.Type),
			slog.Uint64("recipient", uint64(n.UserID)),
			slog.String("error", err.Error()))
	}
}

func (s *NotificationService) List(ctx context.Context, userID uint) ([]*models.Notification, error) {
	return s.repo.ListForUser(ctx, userID, repository.NotificationListLimit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead flags one of the recipient's notifications as read. Another user's
// id is indistinguishable from a missing one.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) (*models.Notification, error) {
	n, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.publisher, userID, notifications.EventNotificationUpdated, n)
	return n, nil
}

// MarkAllRead returns how many notifications changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	publish(ctx, s.publisher, userID, notifications.EventNotificationsReadAll, notifications.ReadAllPayload{Count: count})
	return count, nil
}

// Badges returns the unread counters shown in navigation.
func (s *NotificationService) Badges(ctx context.Context, userID uint) (*models.BadgeCounts, error) {
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	messages, err := s.messages.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.BadgeCounts{Notifications: unread, Messages: messages}, nil
}
