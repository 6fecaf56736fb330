// Package scope resolves the effective tenant for a request. Resolution
// happens once, in middleware, and the result is threaded through context so
// no service re-derives it mid-request.
package scope

import (
	"newsdesk/internal/identity"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
)

// Access is the effective tenant scope of a request.
type Access struct {
	// TenantID is the active tenant. Zero only when Global is true.
	TenantID id.TenantID
	// Global marks a super-admin request with no explicit tenant reference:
	// no tenant scoping applies, listings span all tenants.
	Global bool
}

// Resolve computes the active tenant from the subject and an optional
// explicit tenant reference (header or query parameter, raw string).
//
// Super-admins: an explicit reference is used verbatim with no membership
// check; an absent reference yields the global view. Everyone else: an
// explicit reference must match one of the subject's memberships, otherwise
// the request is rejected; with no reference the first membership (attach
// order) is the default, and zero memberships reject the request.
func Resolve(subject *identity.Subject, explicitRef string) (Access, error) {
	if subject.IsSuperAdmin {
		if explicitRef == "" {
			return Access{Global: true}, nil
		}
		tenantID, err := id.ParseTenantID(explicitRef)
		if err != nil {
			return Access{}, err
		}
		return Access{TenantID: tenantID}, nil
	}

	if len(subject.Memberships) == 0 {
		return Access{}, dErrors.New(dErrors.CodeForbidden, "No tenant associated with this user")
	}

	if explicitRef != "" {
		tenantID, err := id.ParseTenantID(explicitRef)
		if err != nil {
			return Access{}, err
		}
		if _, ok := subject.RoleIn(tenantID); !ok {
			return Access{}, dErrors.New(dErrors.CodeForbidden, "User does not belong to this tenant")
		}
		return Access{TenantID: tenantID}, nil
	}

	first, _ := subject.FirstMembership()
	return Access{TenantID: first.TenantID}, nil
}

// ResolveCreateTarget picks the tenant a news article is created in.
// Super-admins must name a tenant explicitly; members may name one of their
// own tenants or fall back to their first membership.
//
// The returned tenant id is not guaranteed to exist; the caller looks it up
// and converts a miss into NotFound.
func ResolveCreateTarget(subject *identity.Subject, explicitRef string) (id.TenantID, error) {
	if subject.IsSuperAdmin {
		if explicitRef == "" {
			return id.TenantID{}, dErrors.New(dErrors.CodeBadRequest, "Super Admin must specify tenant_uuid when creating news.")
		}
		return id.ParseTenantID(explicitRef)
	}

	if explicitRef != "" {
		tenantID, err := id.ParseTenantID(explicitRef)
		if err != nil {
			return id.TenantID{}, err
		}
		if !subject.BelongsTo(tenantID) {
			return id.TenantID{}, dErrors.New(dErrors.CodeForbidden, "You do not have permission to create news in this tenant.")
		}
		return tenantID, nil
	}

	first, ok := subject.FirstMembership()
	if !ok {
		return id.TenantID{}, dErrors.New(dErrors.CodeBadRequest, "User must be associated with at least one tenant.")
	}
	return first.TenantID, nil
}
