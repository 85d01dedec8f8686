// Package trace provides per-request correlation IDs and their context plumbing.
package trace

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is the type for context keys to avoid collisions
type contextKey string

const (
	// correlationIDKey is the context key for correlation ID values
	correlationIDKey contextKey = "correlation_id"
	// HeaderXRequestID is the header used to propagate the correlation ID
	HeaderXRequestID = "X-Request-ID"
)

// NewCorrelationID generates a fresh correlation ID. UUIDv4 collision odds
// within a session are negligible, which is all the tracing surface needs.
func NewCorrelationID() string {
	return uuid.New().String()
}

// WithCorrelationID adds a correlation ID to the context
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// IDFromContext returns a correlation ID from context if present
func IDFromContext(ctx context.Context) (string, bool) {
	if id, ok := ctx.Value(correlationIDKey).(string); ok && id != "" {
		return id, true
	}
	return "", false
}

// EnsureCorrelationID returns an existing correlation ID from context or generates a new one
func EnsureCorrelationID(ctx context.Context) string {
	if id, ok := IDFromContext(ctx); ok {
		return id
	}
	return NewCorrelationID()
}
