package scope

import (
	"context"
)

type accessKey struct{}

// WithAccess injects the resolved tenant scope into the context. Set once by
// the tenant scoping middleware.
func WithAccess(ctx context.Context, a Access) context.Context {
	return context.WithValue(ctx, accessKey{}, a)
}

// FromContext retrieves the resolved tenant scope, if any.
func FromContext(ctx context.Context) (Access, bool) {
	a, ok := ctx.Value(accessKey{}).(Access)
	return a, ok
}
