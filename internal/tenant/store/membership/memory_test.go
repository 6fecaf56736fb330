package membership

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"newsdesk/internal/tenant/models"
	id "newsdesk/pkg/domain"
	"newsdesk/pkg/platform/sentinel"
)

type MembershipStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *MembershipStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestMembershipStoreSuite(t *testing.T) {
	suite.Run(t, new(MembershipStoreSuite))
}

func (s *MembershipStoreSuite) newMembership(tenantID id.TenantID, userID id.UserID, role id.Role) *models.Membership {
	now := time.Now()
	return &models.Membership{
		TenantID:  tenantID,
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TestAttachAndFind verifies attach persists the pair and its role.
func (s *MembershipStoreSuite) TestAttachAndFind() {
	tenantID := id.TenantID(uuid.New())
	userID := id.UserID(uuid.New())

	s.Run("attaches and finds a membership", func() {
		s.Require().NoError(s.store.Attach(s.ctx, s.newMembership(tenantID, userID, id.RoleEditor)))

		found, err := s.store.Find(s.ctx, tenantID, userID)
		s.Require().NoError(err)
		s.Equal(id.RoleEditor, found.Role)
	})

	s.Run("returns ErrNotFound for unknown pair", func() {
		_, err := s.store.Find(s.ctx, id.TenantID(uuid.New()), userID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestAttachUpsertsRole verifies re-attaching updates the role in place.
func (s *MembershipStoreSuite) TestAttachUpsertsRole() {
	tenantID := id.TenantID(uuid.New())
	userID := id.UserID(uuid.New())

	s.Require().NoError(s.store.Attach(s.ctx, s.newMembership(tenantID, userID, id.RoleEditor)))
	s.Require().NoError(s.store.Attach(s.ctx, s.newMembership(tenantID, userID, id.RoleAdmin)))

	found, err := s.store.Find(s.ctx, tenantID, userID)
	s.Require().NoError(err)
	s.Equal(id.RoleAdmin, found.Role)

	memberships, err := s.store.ListByTenant(s.ctx, tenantID)
	s.Require().NoError(err)
	s.Len(memberships, 1, "upsert must not create a second row")
}

// TestDetach verifies removal semantics.
func (s *MembershipStoreSuite) TestDetach() {
	tenantID := id.TenantID(uuid.New())
	userID := id.UserID(uuid.New())

	s.Run("detaches an existing membership", func() {
		s.Require().NoError(s.store.Attach(s.ctx, s.newMembership(tenantID, userID, id.RoleEditor)))
		s.Require().NoError(s.store.Detach(s.ctx, tenantID, userID))

		_, err := s.store.Find(s.ctx, tenantID, userID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound when the pair is not attached", func() {
		err := s.store.Detach(s.ctx, tenantID, id.UserID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestListOrdering verifies listings preserve attach order.
func (s *MembershipStoreSuite) TestListOrdering() {
	userID := id.UserID(uuid.New())
	base := time.Now()

	var tenantIDs []id.TenantID
	for i := 0; i < 3; i++ {
		tenantID := id.TenantID(uuid.New())
		tenantIDs = append(tenantIDs, tenantID)
		m := s.newMembership(tenantID, userID, id.RoleEditor)
		m.CreatedAt = base.Add(time.Duration(i) * time.Second)
		s.Require().NoError(s.store.Attach(s.ctx, m))
	}

	memberships, err := s.store.ListByUser(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(memberships, 3)
	for i, m := range memberships {
		s.Equal(tenantIDs[i], m.TenantID, "membership %d out of attach order", i)
	}
}

// TestCountByTenant verifies the member count used by delete gating.
func (s *MembershipStoreSuite) TestCountByTenant() {
	tenantID := id.TenantID(uuid.New())

	count, err := s.store.CountByTenant(s.ctx, tenantID)
	s.Require().NoError(err)
	s.Equal(0, count)

	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.Attach(s.ctx, s.newMembership(tenantID, id.UserID(uuid.New()), id.RoleEditor)))
	}
	s.Require().NoError(s.store.Attach(s.ctx, s.newMembership(id.TenantID(uuid.New()), id.UserID(uuid.New()), id.RoleAdmin)))

	count, err = s.store.CountByTenant(s.ctx, tenantID)
	s.Require().NoError(err)
	s.Equal(3, count)
}
