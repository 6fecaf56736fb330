package testutil

import (
	"context"
	"net/http"

	"newsdesk/internal/identity"
	"newsdesk/internal/scope"
	id "newsdesk/pkg/domain"
	"newsdesk/pkg/requestcontext"
)

// WithSubject attaches a resolved subject to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithSubject(req *http.Request, subject *identity.Subject) *http.Request {
	ctx := identity.WithSubject(req.Context(), subject)
	ctx = requestcontext.WithUserID(ctx, subject.UserID)
	return req.WithContext(ctx)
}

// WithMember attaches a subject holding a single tenant membership.
func WithMember(req *http.Request, userID id.UserID, tenantID id.TenantID, role id.Role) *http.Request {
	return WithSubject(req, &identity.Subject{
		UserID:      userID,
		Memberships: []identity.Membership{{TenantID: tenantID, Role: role}},
	})
}

// WithSuperAdmin attaches a super admin subject with no tenant memberships.
func WithSuperAdmin(req *http.Request, userID id.UserID) *http.Request {
	return WithSubject(req, &identity.Subject{UserID: userID, IsSuperAdmin: true})
}

// WithAccess attaches a resolved tenant scope to the request context.
// This simulates what the scope middleware would do after auth.
func WithAccess(req *http.Request, access scope.Access) *http.Request {
	return req.WithContext(scope.WithAccess(req.Context(), access))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), key, value))
}
