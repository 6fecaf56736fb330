package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"newsdesk/internal/activitylog"
	logmodels "newsdesk/internal/activitylog/models"
	logstore "newsdesk/internal/activitylog/store/entry"
	"newsdesk/internal/identity"
	newsmodels "newsdesk/internal/news/models"
	newsstore "newsdesk/internal/news/store/news"
	tenantmodels "newsdesk/internal/tenant/models"
	membershipstore "newsdesk/internal/tenant/store/membership"
	tenantstore "newsdesk/internal/tenant/store/tenant"
	"newsdesk/internal/user/models"
	userstore "newsdesk/internal/user/store/user"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
	"newsdesk/pkg/platform/tx"
)

type UserServiceSuite struct {
	suite.Suite
	users       *userstore.InMemory
	memberships *membershipstore.InMemory
	tenants     *tenantstore.InMemory
	news        *newsstore.InMemory
	logs        *logstore.InMemory
	service     *Service
}

func (s *UserServiceSuite) SetupTest() {
	s.users = userstore.NewInMemory()
	s.memberships = membershipstore.NewInMemory()
	s.tenants = tenantstore.NewInMemory()
	s.news = newsstore.NewInMemory()
	s.logs = logstore.NewInMemory()
	s.service = New(
		s.users, s.memberships, s.tenants, s.news, tx.NewPassthrough(),
		WithRecorder(activitylog.NewRecorder(s.logs)),
	)
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) superCtx() context.Context {
	return identity.WithSubject(context.Background(), &identity.Subject{
		UserID:       id.UserID(uuid.New()),
		IsSuperAdmin: true,
	})
}

func (s *UserServiceSuite) subjectCtx(userID id.UserID, memberships ...identity.Membership) context.Context {
	return identity.WithSubject(context.Background(), &identity.Subject{
		UserID:      userID,
		Memberships: memberships,
	})
}

func (s *UserServiceSuite) seedTenant(name string) *tenantmodels.Tenant {
	now := time.Now()
	tenant, err := tenantmodels.NewTenant(id.TenantID(uuid.New()), name, "", now)
	s.Require().NoError(err)
	s.Require().NoError(s.tenants.Create(context.Background(), tenant))
	return tenant
}

func (s *UserServiceSuite) seedUser(name string) *models.User {
	now := time.Now()
	user := &models.User{
		ID:           id.UserID(uuid.New()),
		Name:         name,
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.Require().NoError(s.users.Create(context.Background(), user))
	return user
}

func (s *UserServiceSuite) attach(tenantID id.TenantID, userID id.UserID, role id.Role) {
	now := time.Now()
	s.Require().NoError(s.memberships.Attach(context.Background(), &tenantmodels.Membership{
		TenantID:  tenantID,
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func (s *UserServiceSuite) seedNews(tenantID id.TenantID, authorID id.UserID, title string) {
	now := time.Now()
	article, err := newsmodels.NewNews(id.NewsID(uuid.New()), tenantID, authorID, title, "body", newsmodels.StatusDraft, now)
	s.Require().NoError(err)
	s.Require().NoError(s.news.Create(context.Background(), article))
}

func (s *UserServiceSuite) logEntries() []*logmodels.Entry {
	filter := logmodels.EntryFilter{}
	filter.Normalize()
	entries, _, err := s.logs.List(context.Background(), filter)
	s.Require().NoError(err)
	return entries
}

// TestCreate verifies creation, the password rule and email uniqueness.
func (s *UserServiceSuite) TestCreate() {
	s.Run("creates a user and records the activity", func() {
		details, err := s.service.Create(s.superCtx(), CreateUserInput{
			Name:     "Alice",
			Email:    "Alice@Example.com",
			Password: "correct horse",
		})
		s.Require().NoError(err)
		s.Equal("alice@example.com", details.Email, "email should be normalized")
		s.NoError(bcrypt.CompareHashAndPassword([]byte(details.PasswordHash), []byte("correct horse")))

		entries := s.logEntries()
		s.Require().Len(entries, 1)
		s.Equal(logmodels.LogCreated, entries[0].LogType)
		s.Equal("User 'Alice' foi criado", entries[0].Description)
		s.NotContains(entries[0].NewValues, "password")
	})

	s.Run("attaches to the requested tenant", func() {
		tenant := s.seedTenant("Newsroom")
		details, err := s.service.Create(s.superCtx(), CreateUserInput{
			Name:     "Bob",
			Email:    "bob@example.com",
			Password: "long enough",
			TenantID: &tenant.ID,
			Role:     id.RoleAdmin,
		})
		s.Require().NoError(err)
		s.Require().Len(details.Tenants, 1)
		s.Equal(tenant.ID, details.Tenants[0].TenantID)
		s.Equal(id.RoleAdmin, details.Tenants[0].Role)

		var entry *logmodels.Entry
		for _, e := range s.logEntries() {
			if e.Description == "User 'Bob' foi criado" {
				entry = e
			}
		}
		s.Require().NotNil(entry, "the creation should be recorded")
		s.Require().NotNil(entry.TenantID, "the entry should carry the attach tenant")
		s.Equal(tenant.ID, *entry.TenantID)
	})

	s.Run("defaults the role to editor", func() {
		tenant := s.seedTenant("Editorial")
		details, err := s.service.Create(s.superCtx(), CreateUserInput{
			Name:     "Carol",
			Email:    "carol@example.com",
			Password: "long enough",
			TenantID: &tenant.ID,
		})
		s.Require().NoError(err)
		s.Require().Len(details.Tenants, 1)
		s.Equal(id.RoleEditor, details.Tenants[0].Role)
	})

	s.Run("rejects an unknown tenant", func() {
		unknown := id.TenantID(uuid.New())
		_, err := s.service.Create(s.superCtx(), CreateUserInput{
			Name:     "Dave",
			Email:    "dave@example.com",
			Password: "long enough",
			TenantID: &unknown,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("Tenant not found", dErrors.MessageOf(err))
	})

	s.Run("rejects non-super callers", func() {
		ctx := s.subjectCtx(id.UserID(uuid.New()), identity.Membership{TenantID: id.TenantID(uuid.New()), Role: id.RoleAdmin})
		_, err := s.service.Create(ctx, CreateUserInput{Name: "Eve", Email: "eve@example.com", Password: "long enough"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Equal("Only Super Admin can create users.", dErrors.MessageOf(err))
	})

	s.Run("rejects a short password", func() {
		_, err := s.service.Create(s.superCtx(), CreateUserInput{Name: "Frank", Email: "frank@example.com", Password: "short"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		fields := dErrors.FieldsOf(err)
		s.Equal("The password field must be at least 8 characters.", fields["password"])
	})

	s.Run("rejects a taken email", func() {
		_, err := s.service.Create(s.superCtx(), CreateUserInput{Name: "First", Email: "shared@example.com", Password: "long enough"})
		s.Require().NoError(err)

		_, err = s.service.Create(s.superCtx(), CreateUserInput{Name: "Second", Email: "SHARED@example.com", Password: "long enough"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("The given data was invalid.", dErrors.MessageOf(err))
		s.Equal("The email has already been taken.", dErrors.FieldsOf(err)["email"])
	})
}

// TestGet verifies visibility rules.
func (s *UserServiceSuite) TestGet() {
	s.Run("super admin sees anyone", func() {
		user := s.seedUser("Target")
		details, err := s.service.Get(s.superCtx(), user.ID)
		s.Require().NoError(err)
		s.Equal(user.ID, details.ID)
	})

	s.Run("users see themselves", func() {
		user := s.seedUser("Self")
		_, err := s.service.Get(s.subjectCtx(user.ID), user.ID)
		s.Require().NoError(err)
	})

	s.Run("colleagues from a shared tenant are visible", func() {
		tenant := s.seedTenant("Shared")
		viewer := s.seedUser("Viewer")
		target := s.seedUser("Colleague")
		s.attach(tenant.ID, viewer.ID, id.RoleEditor)
		s.attach(tenant.ID, target.ID, id.RoleEditor)

		ctx := s.subjectCtx(viewer.ID, identity.Membership{TenantID: tenant.ID, Role: id.RoleEditor})
		details, err := s.service.Get(ctx, target.ID)
		s.Require().NoError(err)
		s.Require().Len(details.Tenants, 1)
		s.Equal("Shared", details.Tenants[0].Name)
	})

	s.Run("outsiders are denied", func() {
		tenant := s.seedTenant("Private")
		target := s.seedUser("Hidden")
		s.attach(tenant.ID, target.ID, id.RoleEditor)

		ctx := s.subjectCtx(id.UserID(uuid.New()), identity.Membership{TenantID: id.TenantID(uuid.New()), Role: id.RoleAdmin})
		_, err := s.service.Get(ctx, target.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Equal("You do not have permission to view this user.", dErrors.MessageOf(err))
	})

	s.Run("unknown users are not found", func() {
		_, err := s.service.Get(s.superCtx(), id.UserID(uuid.New()))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("User not found", dErrors.MessageOf(err))
	})
}

// TestList verifies tenant scoping of the listing.
func (s *UserServiceSuite) TestList() {
	s.Run("super admin sees everyone", func() {
		s.seedUser("One")
		s.seedUser("Two")

		details, total, err := s.service.List(s.superCtx(), nil, models.UserFilter{})
		s.Require().NoError(err)
		s.Equal(2, total)
		s.Len(details, 2)
	})

	s.Run("super admin narrows by tenant", func() {
		tenant := s.seedTenant("Narrow")
		inside := s.seedUser("Inside")
		s.seedUser("Outside")
		s.attach(tenant.ID, inside.ID, id.RoleEditor)

		details, total, err := s.service.List(s.superCtx(), &tenant.ID, models.UserFilter{})
		s.Require().NoError(err)
		s.Require().Equal(1, total)
		s.Equal(inside.ID, details[0].ID)
	})

	s.Run("members see colleagues from shared tenants only", func() {
		shared := s.seedTenant("Shared")
		other := s.seedTenant("Other")
		viewer := s.seedUser("Viewer")
		colleague := s.seedUser("Colleague")
		stranger := s.seedUser("Stranger")
		s.attach(shared.ID, viewer.ID, id.RoleEditor)
		s.attach(shared.ID, colleague.ID, id.RoleAdmin)
		s.attach(other.ID, stranger.ID, id.RoleEditor)

		ctx := s.subjectCtx(viewer.ID, identity.Membership{TenantID: shared.ID, Role: id.RoleEditor})
		details, total, err := s.service.List(ctx, nil, models.UserFilter{})
		s.Require().NoError(err)
		s.Equal(2, total)
		ids := make([]id.UserID, 0, len(details))
		for _, d := range details {
			ids = append(ids, d.ID)
		}
		s.ElementsMatch([]id.UserID{viewer.ID, colleague.ID}, ids)
	})

	s.Run("members without tenants see nobody", func() {
		s.seedUser("Invisible")

		ctx := s.subjectCtx(id.UserID(uuid.New()))
		details, total, err := s.service.List(ctx, nil, models.UserFilter{})
		s.Require().NoError(err)
		s.Zero(total)
		s.Empty(details)
	})
}

// TestUpdate verifies field updates and the tenant-change gate.
func (s *UserServiceSuite) TestUpdate() {
	s.Run("updates fields and records old and new values", func() {
		user := s.seedUser("Before")

		name := "After"
		details, err := s.service.Update(s.superCtx(), user.ID, UpdateUserInput{Name: &name})
		s.Require().NoError(err)
		s.Equal("After", details.Name)

		entries := s.logEntries()
		s.Require().Len(entries, 1)
		s.Equal(logmodels.LogUpdated, entries[0].LogType)
		s.Equal("Before", entries[0].OldValues["name"])
		s.Equal("After", entries[0].NewValues["name"])
	})

	s.Run("rehashes a new password", func() {
		user := s.seedUser("Rotating")

		password := "fresh secret"
		details, err := s.service.Update(s.superCtx(), user.ID, UpdateUserInput{Password: &password})
		s.Require().NoError(err)
		s.NoError(bcrypt.CompareHashAndPassword([]byte(details.PasswordHash), []byte("fresh secret")))
	})

	s.Run("moves the user between tenants", func() {
		from := s.seedTenant("From")
		to := s.seedTenant("To")
		user := s.seedUser("Mover")
		s.attach(from.ID, user.ID, id.RoleAdmin)

		details, err := s.service.Update(s.superCtx(), user.ID, UpdateUserInput{TenantID: &to.ID})
		s.Require().NoError(err)
		s.Require().Len(details.Tenants, 1)
		s.Equal(to.ID, details.Tenants[0].TenantID)
	})

	s.Run("refuses a tenant change while articles remain", func() {
		from := s.seedTenant("From")
		to := s.seedTenant("To")
		user := s.seedUser("Author")
		s.attach(from.ID, user.ID, id.RoleEditor)
		s.seedNews(from.ID, user.ID, "Pending piece")

		_, err := s.service.Update(s.superCtx(), user.ID, UpdateUserInput{TenantID: &to.ID})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Equal("Cannot change user tenant. This user has 1 news article(s) associated with the current tenant. Please reassign or delete the news first.", dErrors.MessageOf(err))
	})

	s.Run("keeping the same tenant is not a change", func() {
		tenant := s.seedTenant("Stable")
		user := s.seedUser("Settled")
		s.attach(tenant.ID, user.ID, id.RoleEditor)
		s.seedNews(tenant.ID, user.ID, "Still here")

		_, err := s.service.Update(s.superCtx(), user.ID, UpdateUserInput{TenantID: &tenant.ID})
		s.Require().NoError(err)
	})

	s.Run("rejects non-super callers", func() {
		user := s.seedUser("Target")
		ctx := s.subjectCtx(user.ID)
		name := "Sneaky"
		_, err := s.service.Update(ctx, user.ID, UpdateUserInput{Name: &name})
		s.Require().Error(err)
		s.Equal("Only Super Admin can update users.", dErrors.MessageOf(err))
	})
}

// TestDelete verifies the authored-news gate and membership cleanup.
func (s *UserServiceSuite) TestDelete() {
	s.Run("refuses deletion while articles remain", func() {
		tenant := s.seedTenant("Busy")
		user := s.seedUser("Author")
		s.attach(tenant.ID, user.ID, id.RoleEditor)
		s.seedNews(tenant.ID, user.ID, "Keeps the author alive")

		err := s.service.Delete(s.superCtx(), user.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Equal("Cannot delete user. This user has 1 news article(s) associated. Please reassign or delete the news first.", dErrors.MessageOf(err))
	})

	s.Run("deletes a user and detaches memberships", func() {
		tenant := s.seedTenant("Leaving")
		user := s.seedUser("Departing")
		s.attach(tenant.ID, user.ID, id.RoleEditor)

		s.Require().NoError(s.service.Delete(s.superCtx(), user.ID))

		_, err := s.service.Get(s.superCtx(), user.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		count, err := s.memberships.CountByTenant(context.Background(), tenant.ID)
		s.Require().NoError(err)
		s.Zero(count)

		entries := s.logEntries()
		s.Require().Len(entries, 1)
		s.Equal(logmodels.LogDeleted, entries[0].LogType)
		s.Equal("User 'Departing' foi excluído", entries[0].Description)
	})

	s.Run("rejects non-super callers", func() {
		user := s.seedUser("Protected")
		ctx := s.subjectCtx(user.ID)
		err := s.service.Delete(ctx, user.ID)
		s.Require().Error(err)
		s.Equal("Only Super Admin can delete users.", dErrors.MessageOf(err))
	})
}
