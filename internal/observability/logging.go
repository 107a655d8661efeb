// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// CorrelationID is the context key carrying the per-request correlation id.
const CorrelationID LogContextKey = "correlation_id"

// GenerateCorrelationID creates a new unique correlation ID.
func GenerateCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID returns a new context with the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationID, id)
}

// ExtractCorrelationID retrieves the correlation ID from the context.
func ExtractCorrelationID(ctx context.Context) string {
	if id := ctx.Value(CorrelationID); id != nil {
		return id.(string)
	}
	return ""
}

// OpLogger provides structured logging for engine operations.
type OpLogger struct {
	component string
	logger    *Logger
}

// NewOpLogger creates a new OpLogger for the given component.
func NewOpLogger(component string) *OpLogger {
	return &OpLogger{
		component: component,
		logger:    GlobalLogger,
	}
}

// LogSuccess logs a completed operation.
func (l *OpLogger) LogSuccess(ctx context.Context, operation string, fields map[string]interface{}) {
	attrs := []any{
		slog.String("component", l.component),
		slog.String("operation", operation),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.InfoContext(ctx, "operation completed", attrs...)
}

// LogRejected logs an operation rejected by a precondition.
func (l *OpLogger) LogRejected(ctx context.Context, operation, code string, fields map[string]interface{}) {
	attrs := []any{
		slog.String("component", l.component),
		slog.String("operation", operation),
		slog.String("code", code),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.WarnContext(ctx, "operation rejected", attrs...)
}

// LogError logs an operation that failed for a non-domain reason.
func (l *OpLogger) LogError(ctx context.Context, operation string, err error, fields map[string]interface{}) {
	attrs := []any{
		slog.String("component", l.component),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.ErrorContext(ctx, "operation failed", attrs...)
}
