// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// BatchKey is the context key marking an in-flight lifecycle batch.
// Exported so it can be used consistently across packages.
type BatchKey struct{}

// WithBatch returns a context carrying the id of the active unit of work.
func WithBatch(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, BatchKey{}, batchID)
}

// BatchFromContext returns the active batch id, or empty string if none.
func BatchFromContext(ctx context.Context) string {
	if v := ctx.Value(BatchKey{}); v != nil {
		return v.(string)
	}
	return ""
}

// InBatch reports whether the context already belongs to a unit of work.
func InBatch(ctx context.Context) bool {
	return BatchFromContext(ctx) != ""
}
