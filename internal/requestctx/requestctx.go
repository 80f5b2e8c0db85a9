// Package requestctx carries the per-request correlation ID so log
// lines and error envelopes deep in the stack can echo it back.
package requestctx

import "context"

type idKey struct{}

// WithRequestID returns a child context carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// GetRequestID returns the attached request ID, or "" when the request
// never passed through the ID middleware.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(idKey{}).(string)
	return id
}
