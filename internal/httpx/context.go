package httpx

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

type contextKey string

const (
	requestIDKey contextKey = "requestID"
	loggerKey    contextKey = "logger"
)

// RequestIDFrom retrieves the request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithRequestID returns a new context carrying the request ID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// LoggerFrom returns the request-scoped logger, or a no-op logger.
func LoggerFrom(r *http.Request) *zap.Logger {
	if v, ok := r.Context().Value(loggerKey).(*zap.Logger); ok {
		return v
	}
	return zap.NewNop()
}

// ContextWithLogger returns a new context carrying log.
func ContextWithLogger(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}
