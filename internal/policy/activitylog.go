package policy

import (
	"newsdesk/internal/identity"
)

// CanViewActivityLogs restricts the audit trail read side to super-admins.
func CanViewActivityLogs(subject *identity.Subject) Decision {
	return superAdminOnly(subject, "Only Super Admin can view logs.")
}
