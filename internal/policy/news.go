package policy

import (
	"newsdesk/internal/identity"
	id "newsdesk/pkg/domain"
)

// CanViewNews allows super-admins and members of the article's tenant.
func CanViewNews(subject *identity.Subject, newsTenant id.TenantID) Decision {
	if subject.IsSuperAdmin {
		return Allow()
	}
	if subject.BelongsTo(newsTenant) {
		return Allow()
	}
	return Deny("You do not have permission to view this news.")
}

// CanCreateNews allows super-admins in any tenant and members in a tenant
// they belong to. The target tenant must already be resolved; requiring an
// explicit tenant for super-admins is a business rule checked by the service.
func CanCreateNews(subject *identity.Subject, targetTenant id.TenantID) Decision {
	if subject.IsSuperAdmin {
		return Allow()
	}
	if subject.BelongsTo(targetTenant) {
		return Allow()
	}
	return Deny("You do not have permission to create news in this tenant.")
}

// CanUpdateNews mirrors view access: any member of the article's tenant may
// update it, role irrelevant.
func CanUpdateNews(subject *identity.Subject, newsTenant id.TenantID) Decision {
	if subject.IsSuperAdmin {
		return Allow()
	}
	if subject.BelongsTo(newsTenant) {
		return Allow()
	}
	return Deny("You do not have permission to update this news.")
}

// CanDeleteNews allows super-admins, the article's author, and tenant admins.
// Editors who did not author the article are always denied.
func CanDeleteNews(subject *identity.Subject, newsTenant id.TenantID, author id.UserID) Decision {
	if subject.IsSuperAdmin {
		return Allow()
	}
	role, member := subject.RoleIn(newsTenant)
	if !member {
		return Deny("You do not have permission to delete this news.")
	}
	if subject.UserID == author || role == id.RoleAdmin {
		return Allow()
	}
	return Deny("Only the author or tenant admin can delete this news.")
}
