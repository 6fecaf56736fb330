package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"newsdesk/internal/user/models"
	id "newsdesk/pkg/domain"
	"newsdesk/pkg/platform/sentinel"
)

type UserStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *UserStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

// SetupSubTest gives every s.Run block a fresh store; the subtests build
// their own fixtures and assert absolute counts.
func (s *UserStoreSuite) SetupSubTest() {
	s.SetupTest()
}

func TestUserStoreSuite(t *testing.T) {
	suite.Run(t, new(UserStoreSuite))
}

func (s *UserStoreSuite) newUser(name, emailAddr string) *models.User {
	now := time.Now()
	return &models.User{
		ID:           id.UserID(uuid.New()),
		Name:         name,
		Email:        emailAddr,
		PasswordHash: "$2a$10$fakehashfortesting",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// TestLookupBehavior tests user retrieval by ID and email.
func (s *UserStoreSuite) TestLookupBehavior() {
	s.Run("returns user by ID when exists", func() {
		user := s.newUser("Jane Doe", "jane.doe@example.com")
		s.Require().NoError(s.store.Create(s.ctx, user))

		found, err := s.store.FindByID(s.ctx, user.ID)
		s.Require().NoError(err)
		s.Equal(user.Email, found.Email)
	})

	s.Run("returns user by email case-insensitively", func() {
		user := s.newUser("Email Lookup", "email.lookup@example.com")
		s.Require().NoError(s.store.Create(s.ctx, user))

		found, err := s.store.FindByEmail(s.ctx, "Email.Lookup@Example.COM")
		s.Require().NoError(err)
		s.Equal(user.ID, found.ID)
	})

	s.Run("returns ErrNotFound when user ID does not exist", func() {
		_, err := s.store.FindByID(s.ctx, id.UserID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound when email does not exist", func() {
		_, err := s.store.FindByEmail(s.ctx, "missing@example.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestEmailUniqueness verifies case-insensitive email uniqueness enforcement.
func (s *UserStoreSuite) TestEmailUniqueness() {
	s.Run("rejects duplicate email on create", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newUser("First", "taken@example.com")))

		err := s.store.Create(s.ctx, s.newUser("Second", "TAKEN@example.com"))
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("rejects update that collides with another user's email", func() {
		holder := s.newUser("Holder", "held@example.com")
		mover := s.newUser("Mover", "moving@example.com")
		s.Require().NoError(s.store.Create(s.ctx, holder))
		s.Require().NoError(s.store.Create(s.ctx, mover))

		mover.Email = "held@example.com"
		err := s.store.Update(s.ctx, mover)
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("allows keeping own email on update", func() {
		user := s.newUser("Keeper", "keeper@example.com")
		s.Require().NoError(s.store.Create(s.ctx, user))

		user.Name = "Renamed Keeper"
		s.Require().NoError(s.store.Update(s.ctx, user))

		found, err := s.store.FindByID(s.ctx, user.ID)
		s.Require().NoError(err)
		s.Equal("Renamed Keeper", found.Name)
	})
}

// TestSoftDelete verifies deleted users disappear from reads.
func (s *UserStoreSuite) TestSoftDelete() {
	s.Run("deleted user is not findable by ID or email", func() {
		user := s.newUser("Delete Me", "delete.me@example.com")
		s.Require().NoError(s.store.Create(s.ctx, user))

		s.Require().NoError(s.store.Delete(s.ctx, user.ID, time.Now()))

		_, err := s.store.FindByID(s.ctx, user.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindByEmail(s.ctx, user.Email)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("deleted user frees the email for reuse", func() {
		user := s.newUser("Original", "reusable@example.com")
		s.Require().NoError(s.store.Create(s.ctx, user))
		s.Require().NoError(s.store.Delete(s.ctx, user.ID, time.Now()))

		s.Require().NoError(s.store.Create(s.ctx, s.newUser("Successor", "reusable@example.com")))
	})

	s.Run("returns ErrNotFound when deleting non-existent user", func() {
		err := s.store.Delete(s.ctx, id.UserID(uuid.New()), time.Now())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestListing verifies allowlist scoping, search and pagination.
func (s *UserStoreSuite) TestListing() {
	s.Run("restricts results to the allowlist", func() {
		visible := s.newUser("Visible", "visible@example.com")
		hidden := s.newUser("Hidden", "hidden@example.com")
		s.Require().NoError(s.store.Create(s.ctx, visible))
		s.Require().NoError(s.store.Create(s.ctx, hidden))

		filter := models.UserFilter{UserIDs: []id.UserID{visible.ID}}
		filter.Normalize()
		users, total, err := s.store.List(s.ctx, filter)
		s.Require().NoError(err)
		s.Equal(1, total)
		s.Require().Len(users, 1)
		s.Equal(visible.ID, users[0].ID)
	})

	s.Run("empty allowlist yields no results", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newUser("Someone", "someone@example.com")))

		filter := models.UserFilter{UserIDs: []id.UserID{}}
		filter.Normalize()
		users, total, err := s.store.List(s.ctx, filter)
		s.Require().NoError(err)
		s.Equal(0, total)
		s.Empty(users)
	})

	s.Run("searches across name and email", func() {
		a := s.newUser("Alice Writer", "alice@example.com")
		b := s.newUser("Bob Editor", "bob@example.com")
		s.Require().NoError(s.store.Create(s.ctx, a))
		s.Require().NoError(s.store.Create(s.ctx, b))

		filter := models.UserFilter{Search: "bob@"}
		filter.Normalize()
		users, total, err := s.store.List(s.ctx, filter)
		s.Require().NoError(err)
		s.Equal(1, total)
		s.Require().Len(users, 1)
		s.Equal(b.ID, users[0].ID)
	})

	s.Run("paginates in creation order", func() {
		base := time.Now()
		for i := 0; i < 5; i++ {
			u := s.newUser("User", uuid.NewString()+"@example.com")
			u.CreatedAt = base.Add(time.Duration(i) * time.Second)
			s.Require().NoError(s.store.Create(s.ctx, u))
		}

		filter := models.UserFilter{Page: 2, PerPage: 2}
		filter.Normalize()
		users, total, err := s.store.List(s.ctx, filter)
		s.Require().NoError(err)
		s.Equal(5, total)
		s.Require().Len(users, 2)
		s.True(users[0].CreatedAt.Before(users[1].CreatedAt))
	})
}
