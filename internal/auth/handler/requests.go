package handler

import (
	"strings"

	dErrors "newsdesk/pkg/domain-errors"
)

// LoginRequest is the body for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(r.Email) == "" {
		fields["email"] = "The email field is required."
	}
	if r.Password == "" {
		fields["password"] = "The password field is required."
	}
	if len(fields) > 0 {
		return dErrors.WithFields("The given data was invalid.", fields)
	}
	return nil
}
