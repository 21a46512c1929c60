// Package observability carries per-operation logging context through context.Context.
package observability

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogContext holds structured logging context information for one core operation.
type LogContext struct {
	RunID     string
	Operation string
	Slug      string
	Path      string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithOperation starts a new operation scope with a fresh run id.
func WithOperation(ctx context.Context, operation string) context.Context {
	lc := extractLogContext(ctx)
	lc.Operation = operation
	lc.RunID = uuid.NewString()
	return context.WithValue(ctx, logContextKey, lc)
}

// WithSlug records the document slug being processed.
func WithSlug(ctx context.Context, slug string) context.Context {
	lc := extractLogContext(ctx)
	lc.Slug = slug
	return context.WithValue(ctx, logContextKey, lc)
}

// WithPath records the document path being processed.
func WithPath(ctx context.Context, path string) context.Context {
	lc := extractLogContext(ctx)
	lc.Path = path
	return context.WithValue(ctx, logContextKey, lc)
}

func extractLogContext(ctx context.Context) LogContext {
	if ctx == nil {
		return LogContext{}
	}
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func getLogAttrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := make([]slog.Attr, 0, 4)

	if lc.RunID != "" {
		attrs = append(attrs, slog.String("run.id", lc.RunID))
	}
	if lc.Operation != "" {
		attrs = append(attrs, slog.String("operation", lc.Operation))
	}
	if lc.Slug != "" {
		attrs = append(attrs, slog.String("slug", lc.Slug))
	}
	if lc.Path != "" {
		attrs = append(attrs, slog.String("path", lc.Path))
	}
	return attrs
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelInfo, msg, attrs)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelWarn, msg, attrs)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelError, msg, attrs)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelDebug, msg, attrs)
}

func logAttrs(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	all := append(getLogAttrs(ctx), attrs...)
	slog.LogAttrs(ctx, level, msg, all...)
}

// GetContext returns the structured log context from the provided context.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}
