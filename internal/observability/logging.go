// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
)

// RepoLogger logs repository failures with the table they touched.
type RepoLogger struct {
	table string
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(table string) *RepoLogger {
	return &RepoLogger{table: table}
}

// LogError logs a failed repository operation.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string, attrs ...any) {
	base := []any{
		slog.String("table", l.table),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	}
	slog.Default().ErrorContext(ctx, "repository error", append(base, attrs...)...)
}

// LogWrite logs a mutation at debug level.
func (l *RepoLogger) LogWrite(ctx context.Context, operation string, attrs ...any) {
	base := []any{
		slog.String("table", l.table),
		slog.String("operation", operation),
	}
	slog.Default().DebugContext(ctx, "repository write", append(base, attrs...)...)
}

// WSLogger provides structured logging for websocket hubs.
type WSLogger struct {
	hub string
}

// NewWSLogger creates a new WSLogger for the given hub.
func NewWSLogger(hub string) *WSLogger {
	return &WSLogger{hub: hub}
}

func (l *WSLogger) LogConnect(ctx context.Context, userID uint) {
	slog.Default().InfoContext(ctx, "websocket connected",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
	)
}

func (l *WSLogger) LogDisconnect(ctx context.Context, userID uint, reason string) {
	slog.Default().InfoContext(ctx, "websocket disconnected",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("reason", reason),
	)
}

func (l *WSLogger) LogError(ctx context.Context, userID uint, err error, event string) {
	slog.Default().ErrorContext(ctx, "websocket error",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("event", event),
		slog.String("error", err.Error()),
	)
}

// LogLifecycle logs hub start and stop events.
func (l *WSLogger) LogLifecycle(ctx context.Context, event string, attrs ...any) {
	base := []any{slog.String("hub", l.hub), slog.String("event", event)}
	slog.Default().InfoContext(ctx, "websocket lifecycle", append(base, attrs...)...)
}
