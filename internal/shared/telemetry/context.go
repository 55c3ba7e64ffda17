package telemetry

import "context"

type contextKey string

const requestIDContextKey contextKey = "requestId"

// WithRequestID returns a context carrying the request id so it can travel
// past the HTTP layer into services and enqueued jobs.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext returns the request id stored by WithRequestID, or
// empty when none is set.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDContextKey).(string); ok {
		return id
	}
	return ""
}
