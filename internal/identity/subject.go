// Package identity models the authenticated subject: who is acting, whether
// they hold global authority, and which tenants they belong to with what
// role. Membership data is loaded once per request; policy and scoping
// decisions are pure lookups over it.
package identity

import (
	id "newsdesk/pkg/domain"
)

// Membership is one (tenant, role) association of a subject.
type Membership struct {
	TenantID id.TenantID
	Role     id.Role
}

// Subject is the acting principal for a request. Memberships preserve attach
// order; the first entry is the subject's default tenant.
type Subject struct {
	UserID       id.UserID
	IsSuperAdmin bool
	Memberships  []Membership
}

// BelongsTo reports whether the subject has a membership in the tenant.
// Always false for an empty membership set; super-admin status is deliberately
// not consulted here.
func (s *Subject) BelongsTo(tenantID id.TenantID) bool {
	_, ok := s.RoleIn(tenantID)
	return ok
}

// RoleIn returns the subject's role in the tenant, if any.
func (s *Subject) RoleIn(tenantID id.TenantID) (id.Role, bool) {
	for _, m := range s.Memberships {
		if m.TenantID == tenantID {
			return m.Role, true
		}
	}
	return "", false
}

// FirstMembership returns the subject's default membership (attach order).
func (s *Subject) FirstMembership() (Membership, bool) {
	if len(s.Memberships) == 0 {
		return Membership{}, false
	}
	return s.Memberships[0], true
}

// TenantIDs returns the subject's tenant ids in attach order.
func (s *Subject) TenantIDs() []id.TenantID {
	out := make([]id.TenantID, len(s.Memberships))
	for i, m := range s.Memberships {
		out[i] = m.TenantID
	}
	return out
}

// SharesTenantWith reports whether the subject has at least one tenant in
// common with the other subject's memberships.
func (s *Subject) SharesTenantWith(other *Subject) bool {
	for _, m := range other.Memberships {
		if s.BelongsTo(m.TenantID) {
			return true
		}
	}
	return false
}
