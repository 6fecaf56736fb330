package policy

import (
	"newsdesk/internal/identity"
	id "newsdesk/pkg/domain"
)

// CanListTenants restricts the system-wide tenant listing to super-admins.
func CanListTenants(subject *identity.Subject) Decision {
	return superAdminOnly(subject, "Only Super Admin can list tenants.")
}

// CanViewTenant allows super-admins and members of the tenant.
func CanViewTenant(subject *identity.Subject, tenantID id.TenantID) Decision {
	if subject.IsSuperAdmin {
		return Allow()
	}
	if subject.BelongsTo(tenantID) {
		return Allow()
	}
	return Deny("You do not have permission to view this tenant.")
}

// CanCreateTenant restricts tenant creation to super-admins.
func CanCreateTenant(subject *identity.Subject) Decision {
	return superAdminOnly(subject, "Only Super Admin can create tenants.")
}

// CanUpdateTenant restricts tenant updates to super-admins.
func CanUpdateTenant(subject *identity.Subject) Decision {
	return superAdminOnly(subject, "Only Super Admin can update tenants.")
}

// CanDeleteTenant restricts tenant deletion to super-admins. The cascade
// guard (no users, no news) is a business rule checked by the service.
func CanDeleteTenant(subject *identity.Subject) Decision {
	return superAdminOnly(subject, "Only Super Admin can delete tenants.")
}

// CanAttachUser restricts attaching users to tenants to super-admins.
func CanAttachUser(subject *identity.Subject) Decision {
	return superAdminOnly(subject, "Only Super Admin can add users to tenants.")
}

// CanDetachUser restricts removing users from tenants to super-admins.
func CanDetachUser(subject *identity.Subject) Decision {
	return superAdminOnly(subject, "Only Super Admin can remove users from tenants.")
}

func superAdminOnly(subject *identity.Subject, reason string) Decision {
	if subject.IsSuperAdmin {
		return Allow()
	}
	return Deny(reason)
}
