package handler

import (
	"strings"

	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
)

// CreateUserRequest is the body for POST /users.
type CreateUserRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	TenantUUID   string `json:"tenant_uuid"`
	Role         string `json:"role"`

	parsedTenantID *id.TenantID
	parsedRole     id.Role
}

func (r *CreateUserRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	fields := map[string]string{}
	if r.Name == "" {
		fields["name"] = "The name field is required."
	}
	if strings.TrimSpace(r.Email) == "" {
		fields["email"] = "The email field is required."
	}
	if r.Password == "" {
		fields["password"] = "The password field is required."
	}
	if len(fields) > 0 {
		return dErrors.WithFields("The given data was invalid.", fields)
	}

	tenantID, role, err := parseTenantAndRole(r.TenantUUID, r.Role)
	if err != nil {
		return err
	}
	r.parsedTenantID = tenantID
	r.parsedRole = role
	return nil
}

func (r *CreateUserRequest) ParsedTenantID() *id.TenantID { return r.parsedTenantID }
func (r *CreateUserRequest) ParsedRole() id.Role          { return r.parsedRole }

// UpdateUserRequest is the body for PUT /users/{uuid}. Missing fields are
// left untouched.
type UpdateUserRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Password     *string `json:"password"`
	IsSuperAdmin *bool   `json:"is_super_admin"`
	TenantUUID   string  `json:"tenant_uuid"`
	Role         string  `json:"role"`

	parsedTenantID *id.TenantID
	parsedRole     id.Role
}

func (r *UpdateUserRequest) Validate() error {
	tenantID, role, err := parseTenantAndRole(r.TenantUUID, r.Role)
	if err != nil {
		return err
	}
	r.parsedTenantID = tenantID
	r.parsedRole = role
	return nil
}

func (r *UpdateUserRequest) ParsedTenantID() *id.TenantID { return r.parsedTenantID }
func (r *UpdateUserRequest) ParsedRole() id.Role          { return r.parsedRole }

func parseTenantAndRole(tenantUUID, rawRole string) (*id.TenantID, id.Role, error) {
	var tenantID *id.TenantID
	if tenantUUID != "" {
		parsed, err := id.ParseTenantID(tenantUUID)
		if err != nil {
			return nil, "", dErrors.WithFields("The given data was invalid.", map[string]string{
				"tenant_uuid": "The tenant uuid field must be a valid UUID.",
			})
		}
		tenantID = &parsed
	}

	var role id.Role
	if rawRole != "" {
		parsed, err := id.ParseRole(rawRole)
		if err != nil {
			return nil, "", dErrors.WithFields("The given data was invalid.", map[string]string{
				"role": "The selected role is invalid.",
			})
		}
		role = parsed
	}
	return tenantID, role, nil
}
