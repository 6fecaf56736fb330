package policy

import (
	"newsdesk/internal/identity"
)

// CanListUsers gates the system-wide user listing. Non-super-admins are
// allowed through but the service restricts the result to users sharing a
// tenant with the subject, so there is nothing to deny here beyond
// authentication itself.
func CanListUsers(subject *identity.Subject) Decision {
	_ = subject
	return Allow()
}

// CanViewUser allows viewing yourself, super-admins, and subjects sharing at
// least one tenant membership with the target.
func CanViewUser(subject *identity.Subject, target *identity.Subject) Decision {
	if subject.IsSuperAdmin {
		return Allow()
	}
	if subject.UserID == target.UserID {
		return Allow()
	}
	if subject.SharesTenantWith(target) {
		return Allow()
	}
	return Deny("You do not have permission to view this user.")
}

// CanCreateUser restricts user creation to super-admins.
func CanCreateUser(subject *identity.Subject) Decision {
	return superAdminOnly(subject, "Only Super Admin can create users.")
}

// CanUpdateUser restricts user updates to super-admins.
func CanUpdateUser(subject *identity.Subject) Decision {
	return superAdminOnly(subject, "Only Super Admin can update users.")
}

// CanDeleteUser restricts user deletion to super-admins. The authored-news
// guard is a business rule checked by the service.
func CanDeleteUser(subject *identity.Subject) Decision {
	return superAdminOnly(subject, "Only Super Admin can delete users.")
}
