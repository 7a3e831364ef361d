package http

import (
	"context"
	"log/slog"
)

// defaultLogger guards handler constructors against a nil logger argument.
func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// handlerLogger resolves the request scoped logger, falling back to the
// handler's own, and tags it with the handler and operation names.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := LoggerFromContext(ctx)
	if logger == nil {
		logger = defaultLogger(fallback)
	}

	tagged := logger.With("handler", handlerName)
	if operation != "" {
		tagged = tagged.With("operation", operation)
	}
	if len(attrs) > 0 {
		tagged = tagged.With(attrs...)
	}
	return tagged
}
