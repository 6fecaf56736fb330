package activitylog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"newsdesk/internal/activitylog/models"
	"newsdesk/internal/activitylog/store/entry"
	"newsdesk/internal/identity"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
)

type LogServiceSuite struct {
	suite.Suite
	store   *entry.InMemory
	service *Service
}

func (s *LogServiceSuite) SetupTest() {
	s.store = entry.NewInMemory()
	s.service = NewService(s.store)
}

func TestLogServiceSuite(t *testing.T) {
	suite.Run(t, new(LogServiceSuite))
}

func (s *LogServiceSuite) superCtx() context.Context {
	return identity.WithSubject(context.Background(), &identity.Subject{
		UserID:       id.UserID(uuid.New()),
		IsSuperAdmin: true,
	})
}

func (s *LogServiceSuite) memberCtx() context.Context {
	return identity.WithSubject(context.Background(), &identity.Subject{
		UserID: id.UserID(uuid.New()),
		Memberships: []identity.Membership{
			{TenantID: id.TenantID(uuid.New()), Role: id.RoleAdmin},
		},
	})
}

func (s *LogServiceSuite) seedEntry() *models.Entry {
	e := &models.Entry{
		ID:          id.LogID(uuid.New()),
		LogType:     models.LogCreated,
		EntityKind:  models.KindNews,
		EntityID:    uuid.NewString(),
		Description: "News 'Seeded' foi criado",
		CreatedAt:   time.Now(),
	}
	s.Require().NoError(s.store.Append(context.Background(), e))
	return e
}

// TestSuperAdminOnly verifies the log read side rejects everyone else.
func (s *LogServiceSuite) TestSuperAdminOnly() {
	s.seedEntry()

	s.Run("tenant admin cannot list logs", func() {
		_, _, err := s.service.List(s.memberCtx(), models.EntryFilter{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Equal("Only Super Admin can view logs.", dErrors.MessageOf(err))
	})

	s.Run("unauthenticated context cannot list logs", func() {
		_, _, err := s.service.List(context.Background(), models.EntryFilter{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("super admin lists logs", func() {
		entries, total, err := s.service.List(s.superCtx(), models.EntryFilter{})
		s.Require().NoError(err)
		s.Equal(1, total)
		s.Len(entries, 1)
	})
}

// TestGetByID verifies single-entry retrieval.
func (s *LogServiceSuite) TestGetByID() {
	seeded := s.seedEntry()

	s.Run("super admin reads an entry", func() {
		e, err := s.service.GetByID(s.superCtx(), seeded.ID)
		s.Require().NoError(err)
		s.Equal(seeded.EntityID, e.EntityID)
	})

	s.Run("unknown entry returns not found", func() {
		_, err := s.service.GetByID(s.superCtx(), id.LogID(uuid.New()))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("Log not found", dErrors.MessageOf(err))
	})

	s.Run("tenant admin cannot read entries", func() {
		_, err := s.service.GetByID(s.memberCtx(), seeded.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}
