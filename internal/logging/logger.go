// Package logging provides structured logging configuration using log/slog.
//
// Log entries written through [FromContext] carry the chi request ID of the
// HTTP request that triggered them and, during a schedule refresh, the fetch
// ID, so a manual refresh can be followed from the request line down to each
// source attempt.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const ctxKeyFetchID contextKey = "fetch_id"

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// New builds a logger writing to w. Tests use it with a buffer.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ContextWithFetchID tags ctx with the ID of the refresh it belongs to.
func ContextWithFetchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyFetchID, id)
}

// FetchIDFromContext returns the fetch ID set by ContextWithFetchID, or "".
func FetchIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyFetchID).(string); ok {
		return v
	}
	return ""
}

// FromContext returns the default logger enriched with the request and
// fetch IDs found in ctx.
//
// Usage:
//
//	logger := logging.FromContext(r.Context())
//	logger.Info("refresh requested", "area", area)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if fetchID := FetchIDFromContext(ctx); fetchID != "" {
		logger = logger.With("fetch_id", fetchID)
	}

	return logger
}

// WithFields returns a context logger with additional structured fields.
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
