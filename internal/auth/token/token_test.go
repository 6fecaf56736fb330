package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"newsdesk/internal/platform/config"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
)

type TokenSuite struct {
	suite.Suite
	cfg config.AuthConfig
}

func (s *TokenSuite) SetupTest() {
	s.cfg = config.AuthConfig{
		JWTSigningKey: "unit-test-signing-key",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    2 * time.Hour,
	}
}

func TestTokenSuite(t *testing.T) {
	suite.Run(t, new(TokenSuite))
}

func (s *TokenSuite) TestIssueAndValidate() {
	svc := NewService(s.cfg)
	userID := id.UserID(uuid.New())

	signed, err := svc.Issue(userID)
	s.Require().NoError(err)

	claims, err := svc.Validate(signed)
	s.Require().NoError(err)
	s.Equal(userID.String(), claims.Subject)
	s.NotEmpty(claims.ID, "every token needs a jti")
}

func (s *TokenSuite) TestJTIsAreUnique() {
	svc := NewService(s.cfg)
	userID := id.UserID(uuid.New())

	first, err := svc.Issue(userID)
	s.Require().NoError(err)
	second, err := svc.Issue(userID)
	s.Require().NoError(err)

	firstClaims, err := svc.Validate(first)
	s.Require().NoError(err)
	secondClaims, err := svc.Validate(second)
	s.Require().NoError(err)
	s.NotEqual(firstClaims.ID, secondClaims.ID)
}

func (s *TokenSuite) TestRejectsWrongKey() {
	svc := NewService(s.cfg)
	signed, err := svc.Issue(id.UserID(uuid.New()))
	s.Require().NoError(err)

	other := NewService(config.AuthConfig{JWTSigningKey: "a-different-key", AccessTTL: s.cfg.AccessTTL, RefreshTTL: s.cfg.RefreshTTL})
	_, err = other.Validate(signed)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *TokenSuite) TestRejectsGarbage() {
	svc := NewService(s.cfg)
	_, err := svc.Validate("not-a-token")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *TokenSuite) TestExpiry() {
	issuedAt := time.Now()
	clock := issuedAt
	svc := NewService(s.cfg, WithClock(func() time.Time { return clock }))

	signed, err := svc.Issue(id.UserID(uuid.New()))
	s.Require().NoError(err)

	clock = issuedAt.Add(16 * time.Minute)
	_, err = svc.Validate(signed)
	s.Require().Error(err)
	s.Equal("token has expired", dErrors.MessageOf(err))
}

func (s *TokenSuite) TestRefreshWindow() {
	issuedAt := time.Now()
	clock := issuedAt
	svc := NewService(s.cfg, WithClock(func() time.Time { return clock }))

	signed, err := svc.Issue(id.UserID(uuid.New()))
	s.Require().NoError(err)

	s.Run("an expired token is still refreshable inside the window", func() {
		clock = issuedAt.Add(time.Hour)
		_, err := svc.Validate(signed)
		s.Require().Error(err)

		claims, err := svc.ValidateForRefresh(signed)
		s.Require().NoError(err)
		s.NotEmpty(claims.ID)
	})

	s.Run("past the window the token is dead", func() {
		clock = issuedAt.Add(3 * time.Hour)
		_, err := svc.ValidateForRefresh(signed)
		s.Require().Error(err)
		s.Equal("token can no longer be refreshed", dErrors.MessageOf(err))
	})
}
