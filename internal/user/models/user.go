// Package models defines the user entity and its listing filter.
package models

import (
	"strings"
	"time"

	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
	"newsdesk/pkg/email"
)

// User is an account that authenticates against the API. Super-admin is a
// global flag on the account; tenant roles live on memberships.
//
// The password hash and soft-delete marker never serialize.
type User struct {
	ID           id.UserID  `json:"uuid"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	IsSuperAdmin bool       `json:"is_super_admin"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

// NewUser validates and constructs a user. The email is normalized to
// lowercase; the caller supplies an already-hashed password.
func NewUser(userID id.UserID, name, emailAddr, passwordHash string, isSuperAdmin bool, now time.Time) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user name must not be empty")
	}
	if len(name) > 255 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user name must not exceed 255 characters")
	}
	normalized := email.Normalize(emailAddr)
	if !email.Valid(normalized) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user email is not a valid address")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user password hash must not be empty")
	}

	return &User{
		ID:           userID,
		Name:         name,
		Email:        normalized,
		PasswordHash: passwordHash,
		IsSuperAdmin: isSuperAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Snapshot returns the attributes recorded in the activity log. Credentials
// stay out of it.
func (u *User) Snapshot() map[string]any {
	return map[string]any{
		"uuid":           u.ID.String(),
		"name":           u.Name,
		"email":          u.Email,
		"is_super_admin": u.IsSuperAdmin,
	}
}

// DisplayName identifies the user in audit descriptions.
func (u *User) DisplayName() string { return u.Name }
