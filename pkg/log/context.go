package log

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

type contextKey struct{}

// NewContext returns a copy of ctx carrying logger, which [WithContext]
// returns in preference to the default logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// WithContext returns the logger carried by ctx, or the default logger.
// When ctx has an active span, the logger is tagged with its short trace
// and span IDs so that update and MCP records can be joined with traces.
func WithContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(contextKey{}).(*slog.Logger)
	if !ok {
		logger = slog.Default()
	}

	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}

	return logger.With(
		slog.String("trace_id", sc.TraceID().String()[:8]),
		slog.String("span_id", sc.SpanID().String()),
	)
}
