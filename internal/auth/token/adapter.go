package token

import (
	"newsdesk/internal/platform/middleware"
)

// MiddlewareAdapter exposes the token service through the shape the auth
// middleware consumes.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{
		UserID: claims.Subject,
		JTI:    claims.ID,
	}, nil
}
