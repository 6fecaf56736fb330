package domain

import dErrors "newsdesk/pkg/domain-errors"

// Role is the per-tenant role a user holds through a membership.
// Invariant: the value must be one of the supported roles. Super-admin is a
// global user flag, never a membership role.
//
// Usage: construct via ParseRole at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type Role string

// Supported membership roles.
const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

// validRoles is the single source of truth for valid membership roles.
var validRoles = map[Role]bool{
	RoleAdmin:  true,
	RoleEditor: true,
}

// ParseRole constructs a Role from external input.
func ParseRole(raw string) (Role, error) {
	r := Role(raw)
	if !validRoles[r] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid role: %q", raw)
	}
	return r, nil
}

func (r Role) String() string { return string(r) }
