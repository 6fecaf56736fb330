// Package service implements login, logout and token refresh.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mssola/useragent"
	"golang.org/x/crypto/bcrypt"

	"newsdesk/internal/auth/token"
	"newsdesk/internal/platform/metrics"
	tenantmodels "newsdesk/internal/tenant/models"
	usermodels "newsdesk/internal/user/models"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
	"newsdesk/pkg/email"
	"newsdesk/pkg/platform/sentinel"
	"newsdesk/pkg/requestcontext"
)

type UserStore interface {
	FindByEmail(ctx context.Context, emailAddr string) (*usermodels.User, error)
}

type MembershipStore interface {
	ListByUser(ctx context.Context, userID id.UserID) ([]*tenantmodels.Membership, error)
}

// TokenIssuer mints and re-validates bearer tokens.
type TokenIssuer interface {
	Issue(userID id.UserID) (string, error)
	Validate(tokenString string) (*token.Claims, error)
	ValidateForRefresh(tokenString string) (*token.Claims, error)
	AccessTTL() time.Duration
}

// RevocationList invalidates token ids on logout and refresh.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Service implements the authentication operations.
type Service struct {
	users       UserStore
	memberships MembershipStore
	tokens      TokenIssuer
	revocations RevocationList
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(users UserStore, memberships MembershipStore, tokens TokenIssuer, revocations RevocationList, opts ...Option) *Service {
	s := &Service{
		users:       users,
		memberships: memberships,
		tokens:      tokens,
		revocations: revocations,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult is the login response payload. TenantID and Role describe the
// user's default tenant, if any.
type LoginResult struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresIn   int64            `json:"expires_in"`
	User        *usermodels.User `json:"user"`
	TenantID    *id.TenantID     `json:"tenant_id"`
	Role        id.Role          `json:"role,omitempty"`
}

// Login verifies credentials and mints a token. Wrong email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email.Normalize(emailAddr))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.failLogin(ctx, "unknown_email")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, s.failLogin(ctx, "wrong_password")
	}

	accessToken, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.AccessTTL().Seconds()),
		User:        user,
	}
	memberships, err := s.memberships.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list user tenants")
	}
	if len(memberships) > 0 {
		result.TenantID = &memberships[0].TenantID
		result.Role = memberships[0].Role
	}

	if s.metrics != nil {
		s.metrics.IncrementLoginAttempt("success")
	}
	s.logger.InfoContext(ctx, "login",
		"user_uuid", user.ID.String(),
		"client", clientSummary(requestcontext.UserAgent(ctx)),
		"ip", requestcontext.ClientIP(ctx),
		"request_id", requestcontext.RequestID(ctx))
	return result, nil
}

// Logout revokes the presented token until it would have expired.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	s.logger.InfoContext(ctx, "logout",
		"user_uuid", claims.Subject,
		"request_id", requestcontext.RequestID(ctx))
	return nil
}

// Refresh trades a token for a fresh one. The old token may already be
// expired, as long as it was issued within the refresh window; it is revoked
// either way so it cannot be replayed.
func (s *Service) Refresh(ctx context.Context, tokenString string) (*LoginResult, error) {
	claims, err := s.tokens.ValidateForRefresh(tokenString)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check token revocation")
	}
	if revoked {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Token has been revoked")
	}

	userID, err := id.ParseUserID(claims.Subject)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	accessToken, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, err
	}

	if claims.ExpiresAt != nil {
		if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
			if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
			}
		}
	}

	return &LoginResult{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func (s *Service) failLogin(ctx context.Context, reason string) error {
	if s.metrics != nil {
		s.metrics.IncrementLoginAttempt("failure")
	}
	s.logger.WarnContext(ctx, "login failed",
		"reason", reason,
		"client", clientSummary(requestcontext.UserAgent(ctx)),
		"ip", requestcontext.ClientIP(ctx),
		"request_id", requestcontext.RequestID(ctx))
	return dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials")
}

// clientSummary condenses a raw User-Agent header into "browser/version on
// os" for the login audit trail.
func clientSummary(rawUA string) string {
	if rawUA == "" {
		return "unknown"
	}
	ua := useragent.New(rawUA)
	name, version := ua.Browser()
	if name == "" {
		return rawUA
	}
	summary := name
	if version != "" {
		summary += "/" + version
	}
	if os := ua.OS(); os != "" {
		summary += " on " + os
	}
	return summary
}
