package identity

import (
	"context"
)

type subjectKey struct{}

// WithSubject injects the resolved subject into the context. Set by the auth
// middleware after token validation and membership loading.
func WithSubject(ctx context.Context, s *Subject) context.Context {
	if s == nil {
		return ctx
	}
	return context.WithValue(ctx, subjectKey{}, s)
}

// FromContext retrieves the resolved subject, if any. Absence means the
// request is unauthenticated (or a system-triggered action).
func FromContext(ctx context.Context) (*Subject, bool) {
	s, ok := ctx.Value(subjectKey{}).(*Subject)
	return s, ok
}
