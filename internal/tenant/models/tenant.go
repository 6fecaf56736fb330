package models

import (
	"strings"
	"time"

	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
)

// Tenant is the aggregate root for an organization.
//
// Invariants:
//   - Name is non-empty and at most 255 characters
//   - Domain is optional; when present it is lowercase and globally unique
//     (uniqueness enforced by the store)
//   - CreatedAt is immutable after construction
//
// A tenant with any membership or news article cannot be deleted; the
// service checks that gate before calling the store.
type Tenant struct {
	ID        id.TenantID `json:"uuid"`
	Name      string      `json:"name"`
	Domain    string      `json:"domain,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	DeletedAt *time.Time  `json:"-"`
}

func NewTenant(tenantID id.TenantID, name, domain string, now time.Time) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant name cannot be empty")
	}
	if len(name) > 255 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant name must be 255 characters or less")
	}
	return &Tenant{
		ID:        tenantID,
		Name:      name,
		Domain:    strings.ToLower(strings.TrimSpace(domain)),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DisplayName is what the activity log description refers to the tenant by.
func (t *Tenant) DisplayName() string { return t.Name }

// Snapshot returns the audit-relevant attribute set. Internal keys are
// stripped again by the recorder; keep only caller-visible fields here.
func (t *Tenant) Snapshot() map[string]any {
	return map[string]any{
		"uuid":   t.ID.String(),
		"name":   t.Name,
		"domain": t.Domain,
	}
}

// TenantDetails is a tenant with its member list eagerly attached, as
// returned by read and write operations.
type TenantDetails struct {
	*Tenant
	Users []TenantMember `json:"users"`
}

// TenantMember is one user of a tenant with their membership role.
type TenantMember struct {
	UserID id.UserID `json:"uuid"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   id.Role   `json:"role"`
}
