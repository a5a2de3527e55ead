// Package reqcontext carries a correlation ID through request contexts.
// The transport copies it into an HTTP header so that every request issued
// for one paged query can be traced together on the service side.
package reqcontext

import (
	"context"
	"net/http"
)

// CorrelationIDHeader is the HTTP header carrying the correlation ID.
const CorrelationIDHeader = "X-Correlation-Id"

// correlationKey is the unexported context key for the correlation ID.
type correlationKey struct{}

// WithCorrelationID returns a new context with the correlation ID stored.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationIDFromContext retrieves the correlation ID if present.
// Returns ("", false) if no correlation ID is set.
func CorrelationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(correlationKey{}).(string)
	return id, ok && id != ""
}

// SetHeader copies the correlation ID of ctx into h.
// h is left unchanged when ctx carries no ID.
func SetHeader(ctx context.Context, h http.Header) {
	if id, ok := CorrelationIDFromContext(ctx); ok {
		h.Set(CorrelationIDHeader, id)
	}
}
