package requestid

import (
	"context"

	"github.com/google/uuid"
)

// HeaderKey carries the correlation ID on outgoing requests.
const HeaderKey = "X-Request-ID"

type ctxKey struct{}

// New returns a fresh request ID.
func New() string {
	return uuid.NewString()
}

// WithValue stores a caller-chosen request ID on the context.
func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request ID stored on ctx, generating one when absent.
func FromContext(ctx context.Context) string {
	if ctx != nil {
		if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
			return id
		}
	}
	return New()
}
