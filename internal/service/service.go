// Package service holds the business rules that sit between HTTP handlers and
// the repositories.
package service

import (
	"context"
	"log/slog"

	"talenta/internal/middleware"
)

// EventPublisher pushes realtime events to a user's channel.
// *notifications.Notifier satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, userID uint, eventType string, payload interface{}) error
}

type noopPublisher struct{}

func (noopPublisher) PublishEvent(context.Context, uint, string, interface{}) error { return nil }

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

// publish sends an event and only logs failures; realtime delivery never
// fails the write that caused it.
func publish(ctx context.Context, p EventPublisher, userID uint, eventType string, payload interface{}) {
	if err := p.PublishEvent(ctx, userID, eventType, payload); err != nil {
		middleware.Logger.WarnContext(ctx, "realtime publish failed",
			slog.String("event", eventType),
			slog.Uint64("recipient", uint64(userID)),
			slog.String("error", err.Error()))
	}
}

func uintPtr(v uint) *uint { return &v }

func logCacheError(ctx context.Context, op string, err error) {
	middleware.Logger.WarnContext(ctx, "cache operation failed",
		slog.String("operation", op), slog.String("error", err.Error()))
}
