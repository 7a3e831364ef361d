package http

import (
	"context"
	"log/slog"

	"github.com/example/roombooking/internal/logging"
)

type contextKey string

const adminContextKey contextKey = "admin"

// ContextWithAdmin returns a derived context carrying the authenticated
// administrator's username.
func ContextWithAdmin(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, adminContextKey, username)
}

// AdminFromContext extracts the authenticated administrator from context.
func AdminFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(adminContextKey).(string)
	return username, ok
}

// ContextWithLogger attaches a request scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request scoped logger, or nil.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
