package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	runIDKey     contextKey = "run_id"
	adapterKey   contextKey = "adapter"
)

// WithContext attaches a logger to ctx
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the attached logger or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the HTTP request ID in ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithRunID stores the collection run ID so every log line written while the
// run is in flight can be correlated with the persisted run record.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithAdapter stores the name of the source adapter currently fetching
func WithAdapter(ctx context.Context, adapter string) context.Context {
	return context.WithValue(ctx, adapterKey, adapter)
}

// GetRequestID returns the request ID, if any
func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(requestIDKey).(string)
	return s
}

// GetRunID returns the collection run ID, if any
func GetRunID(ctx context.Context) string {
	s, _ := ctx.Value(runIDKey).(string)
	return s
}

// GetAdapter returns the adapter name, if any
func GetAdapter(ctx context.Context) string {
	s, _ := ctx.Value(adapterKey).(string)
	return s
}

// L returns the context logger enriched with trace, request, run and adapter
// identifiers found in ctx.
//
//	logger.L(ctx).Info("candidate merged", zap.String("business_id", id))
func L(ctx context.Context) *zap.Logger {
	return Enrich(ctx, FromContext(ctx))
}

// Enrich adds the correlation fields found in ctx to l
func Enrich(ctx context.Context, l *zap.Logger) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	fields := make([]zap.Field, 0, 5)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if v := GetRequestID(ctx); v != "" {
		fields = append(fields, zap.String("request_id", v))
	}
	if v := GetRunID(ctx); v != "" {
		fields = append(fields, zap.String("run_id", v))
	}
	if v := GetAdapter(ctx); v != "" {
		fields = append(fields, zap.String("adapter", v))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
