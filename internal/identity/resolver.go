package identity

import (
	"context"

	id "newsdesk/pkg/domain"
)

// Resolver loads a Subject with its memberships eagerly attached. Implemented
// by the user store; the auth middleware calls it once per request.
type Resolver interface {
	ResolveSubject(ctx context.Context, userID id.UserID) (*Subject, error)
}
