package handler

import (
	"strings"

	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
)

// CreateTenantRequest is the body for POST /tenants.
type CreateTenantRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

func (r *CreateTenantRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.WithFields("The given data was invalid.", map[string]string{
			"name": "The name field is required.",
		})
	}
	return nil
}

// UpdateTenantRequest is the body for PUT /tenants/{uuid}. Missing fields
// are left untouched.
type UpdateTenantRequest struct {
	Name   *string `json:"name"`
	Domain *string `json:"domain"`
}

// AttachUserRequest is the body for POST /tenants/{uuid}/users.
type AttachUserRequest struct {
	UserUUID string `json:"user_uuid"`
	Role     string `json:"role"`

	parsedUserID id.UserID
	parsedRole   id.Role
}

func (r *AttachUserRequest) Validate() error {
	userID, err := id.ParseUserID(r.UserUUID)
	if err != nil {
		return dErrors.WithFields("The given data was invalid.", map[string]string{
			"user_uuid": "The user uuid field must be a valid UUID.",
		})
	}
	r.parsedUserID = userID

	r.parsedRole = id.RoleEditor
	if r.Role != "" {
		role, err := id.ParseRole(r.Role)
		if err != nil {
			return dErrors.WithFields("The given data was invalid.", map[string]string{
				"role": "The selected role is invalid.",
			})
		}
		r.parsedRole = role
	}
	return nil
}

func (r *AttachUserRequest) ParsedUserID() id.UserID { return r.parsedUserID }
func (r *AttachUserRequest) ParsedRole() id.Role     { return r.parsedRole }
