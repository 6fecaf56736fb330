package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"newsdesk/internal/activitylog"
	logmodels "newsdesk/internal/activitylog/models"
	logstore "newsdesk/internal/activitylog/store/entry"
	"newsdesk/internal/identity"
	"newsdesk/internal/news/models"
	newsstore "newsdesk/internal/news/store/news"
	tenantmodels "newsdesk/internal/tenant/models"
	tenantstore "newsdesk/internal/tenant/store/tenant"
	usermodels "newsdesk/internal/user/models"
	userstore "newsdesk/internal/user/store/user"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
	"newsdesk/pkg/platform/tx"
)

type NewsServiceSuite struct {
	suite.Suite
	news    *newsstore.InMemory
	tenants *tenantstore.InMemory
	users   *userstore.InMemory
	logs    *logstore.InMemory
	service *Service
}

func (s *NewsServiceSuite) SetupTest() {
	s.news = newsstore.NewInMemory()
	s.tenants = tenantstore.NewInMemory()
	s.users = userstore.NewInMemory()
	s.logs = logstore.NewInMemory()
	s.service = New(
		s.news, s.tenants, s.users, tx.NewPassthrough(),
		WithRecorder(activitylog.NewRecorder(s.logs)),
	)
}

// SetupSubTest gives every s.Run block fresh stores; the subtests seed
// their own fixtures and assert absolute totals.
func (s *NewsServiceSuite) SetupSubTest() {
	s.SetupTest()
}

func TestNewsServiceSuite(t *testing.T) {
	suite.Run(t, new(NewsServiceSuite))
}

func (s *NewsServiceSuite) superCtx() context.Context {
	return identity.WithSubject(context.Background(), &identity.Subject{
		UserID:       id.UserID(uuid.New()),
		IsSuperAdmin: true,
	})
}

func (s *NewsServiceSuite) memberCtx(userID id.UserID, memberships ...identity.Membership) context.Context {
	return identity.WithSubject(context.Background(), &identity.Subject{
		UserID:      userID,
		Memberships: memberships,
	})
}

func (s *NewsServiceSuite) seedTenant(name string) *tenantmodels.Tenant {
	now := time.Now()
	tenant, err := tenantmodels.NewTenant(id.TenantID(uuid.New()), name, "", now)
	s.Require().NoError(err)
	s.Require().NoError(s.tenants.Create(context.Background(), tenant))
	return tenant
}

func (s *NewsServiceSuite) seedUser(name string) *usermodels.User {
	now := time.Now()
	user := &usermodels.User{
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

func (s *NewsServiceSuite) seedNews(tenantID id.TenantID, authorID id.UserID, title string, status models.Status) *models.News {
	article, err := models.NewNews(id.NewsID(uuid.New()), tenantID, authorID, title, "body", status, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.news.Create(context.Background(), article))
	return article
}

func (s *NewsServiceSuite) logEntries() []*logmodels.Entry {
	filter := logmodels.EntryFilter{}
	filter.Normalize()
	entries, _, err := s.logs.List(context.Background(), filter)
	s.Require().NoError(err)
	return entries
}

// TestCreate covers tenant resolution for members and super-admins.
func (s *NewsServiceSuite) TestCreate() {
	s.Run("members publish into their default tenant", func() {
		tenant := s.seedTenant("Default")
		author := s.seedUser("Author")
		ctx := s.memberCtx(author.ID, identity.Membership{TenantID: tenant.ID, Role: id.RoleEditor})

		details, err := s.service.Create(ctx, CreateNewsInput{Title: "First", Content: "Body"})
		s.Require().NoError(err)
		s.Equal(tenant.ID, details.TenantID)
		s.Equal(author.ID, details.AuthorID)
		s.Equal(models.StatusDraft, details.Status, "status should default to draft")
		s.Equal("Default", details.TenantName)
		s.Equal("Author", details.AuthorName)

		entries := s.logEntries()
		s.Require().Len(entries, 1)
		s.Equal("News 'First' foi criado", entries[0].Description)
		s.Require().NotNil(entries[0].TenantID)
		s.Equal(tenant.ID, *entries[0].TenantID)
	})

	s.Run("members may name one of their own tenants", func() {
		first := s.seedTenant("First")
		second := s.seedTenant("Second")
		author := s.seedUser("Author")
		ctx := s.memberCtx(author.ID,
			identity.Membership{TenantID: first.ID, Role: id.RoleEditor},
			identity.Membership{TenantID: second.ID, Role: id.RoleEditor},
		)

		details, err := s.service.Create(ctx, CreateNewsInput{Title: "Elsewhere", Content: "Body", TenantRef: second.ID.String()})
		s.Require().NoError(err)
		s.Equal(second.ID, details.TenantID)
	})

	s.Run("members cannot publish into foreign tenants", func() {
		mine := s.seedTenant("Mine")
		theirs := s.seedTenant("Theirs")
		author := s.seedUser("Author")
		ctx := s.memberCtx(author.ID, identity.Membership{TenantID: mine.ID, Role: id.RoleAdmin})

		_, err := s.service.Create(ctx, CreateNewsInput{Title: "Trespass", Content: "Body", TenantRef: theirs.ID.String()})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Equal("You do not have permission to create news in this tenant.", dErrors.MessageOf(err))
	})

	s.Run("memberless users cannot publish", func() {
		author := s.seedUser("Floating")
		_, err := s.service.Create(s.memberCtx(author.ID), CreateNewsInput{Title: "Nowhere", Content: "Body"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Equal("User must be associated with at least one tenant.", dErrors.MessageOf(err))
	})

	s.Run("super admins must name the tenant", func() {
		_, err := s.service.Create(s.superCtx(), CreateNewsInput{Title: "Somewhere", Content: "Body"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Equal("Super Admin must specify tenant_uuid when creating news.", dErrors.MessageOf(err))
	})

	s.Run("super admins cannot target an unknown tenant", func() {
		_, err := s.service.Create(s.superCtx(), CreateNewsInput{Title: "Ghost", Content: "Body", TenantRef: uuid.NewString()})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("Tenant not found", dErrors.MessageOf(err))
	})

	s.Run("rejects an unknown status", func() {
		tenant := s.seedTenant("Strict")
		author := s.seedUser("Author")
		ctx := s.memberCtx(author.ID, identity.Membership{TenantID: tenant.ID, Role: id.RoleEditor})

		_, err := s.service.Create(ctx, CreateNewsInput{Title: "Odd", Content: "Body", Status: "live"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// TestList covers tenant scoping and the trash default.
func (s *NewsServiceSuite) TestList() {
	s.Run("super admin sees every tenant", func() {
		a := s.seedTenant("A")
		b := s.seedTenant("B")
		author := s.seedUser("Author")
		s.seedNews(a.ID, author.ID, "In A", models.StatusPublished)
		s.seedNews(b.ID, author.ID, "In B", models.StatusDraft)

		_, total, err := s.service.List(s.superCtx(), "", models.NewsFilter{})
		s.Require().NoError(err)
		s.Equal(2, total)
	})

	s.Run("super admin narrows by tenant reference", func() {
		a := s.seedTenant("A")
		b := s.seedTenant("B")
		author := s.seedUser("Author")
		s.seedNews(a.ID, author.ID, "In A", models.StatusPublished)
		s.seedNews(b.ID, author.ID, "In B", models.StatusDraft)

		details, total, err := s.service.List(s.superCtx(), a.ID.String(), models.NewsFilter{})
		s.Require().NoError(err)
		s.Require().Equal(1, total)
		s.Equal("In A", details[0].Title)
	})

	s.Run("an unresolvable tenant reference falls back to the global view", func() {
		a := s.seedTenant("A")
		author := s.seedUser("Author")
		s.seedNews(a.ID, author.ID, "Visible", models.StatusDraft)

		_, total, err := s.service.List(s.superCtx(), uuid.NewString(), models.NewsFilter{})
		s.Require().NoError(err)
		s.Equal(1, total)
	})

	s.Run("members see the union of their tenants", func() {
		mine := s.seedTenant("Mine")
		also := s.seedTenant("Also")
		other := s.seedTenant("Other")
		author := s.seedUser("Author")
		s.seedNews(mine.ID, author.ID, "One", models.StatusDraft)
		s.seedNews(also.ID, author.ID, "Two", models.StatusDraft)
		s.seedNews(other.ID, author.ID, "Hidden", models.StatusDraft)

		ctx := s.memberCtx(id.UserID(uuid.New()),
			identity.Membership{TenantID: mine.ID, Role: id.RoleEditor},
			identity.Membership{TenantID: also.ID, Role: id.RoleEditor},
		)
		details, total, err := s.service.List(ctx, "", models.NewsFilter{})
		s.Require().NoError(err)
		s.Equal(2, total)
		for _, d := range details {
			s.NotEqual("Hidden", d.Title)
		}
	})

	s.Run("memberless users see nothing", func() {
		tenant := s.seedTenant("Busy")
		author := s.seedUser("Author")
		s.seedNews(tenant.ID, author.ID, "Unseen", models.StatusPublished)

		details, total, err := s.service.List(s.memberCtx(id.UserID(uuid.New())), "", models.NewsFilter{})
		s.Require().NoError(err)
		s.Zero(total)
		s.Empty(details)
	})

	s.Run("trash is hidden unless asked for", func() {
		tenant := s.seedTenant("Tidy")
		author := s.seedUser("Author")
		s.seedNews(tenant.ID, author.ID, "Kept", models.StatusPublished)
		s.seedNews(tenant.ID, author.ID, "Binned", models.StatusTrash)

		details, total, err := s.service.List(s.superCtx(), "", models.NewsFilter{})
		s.Require().NoError(err)
		s.Require().Equal(1, total)
		s.Equal("Kept", details[0].Title)

		details, total, err = s.service.List(s.superCtx(), "", models.NewsFilter{Status: models.StatusTrash})
		s.Require().NoError(err)
		s.Require().Equal(1, total)
		s.Equal("Binned", details[0].Title)
	})
}

// TestGet covers cross-tenant visibility.
func (s *NewsServiceSuite) TestGet() {
	s.Run("tenant members see their articles", func() {
		tenant := s.seedTenant("Home")
		author := s.seedUser("Author")
		article := s.seedNews(tenant.ID, author.ID, "Ours", models.StatusPublished)

		ctx := s.memberCtx(id.UserID(uuid.New()), identity.Membership{TenantID: tenant.ID, Role: id.RoleEditor})
		details, err := s.service.Get(ctx, article.ID)
		s.Require().NoError(err)
		s.Equal("Ours", details.Title)
	})

	s.Run("outsiders are denied", func() {
		tenant := s.seedTenant("Private")
		author := s.seedUser("Author")
		article := s.seedNews(tenant.ID, author.ID, "Theirs", models.StatusPublished)

		ctx := s.memberCtx(id.UserID(uuid.New()), identity.Membership{TenantID: id.TenantID(uuid.New()), Role: id.RoleAdmin})
		_, err := s.service.Get(ctx, article.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Equal("You do not have permission to view this news.", dErrors.MessageOf(err))
	})

	s.Run("unknown articles are not found", func() {
		_, err := s.service.Get(s.superCtx(), id.NewsID(uuid.New()))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("News not found", dErrors.MessageOf(err))
	})
}

// TestUpdate covers field merging and tenant immutability.
func (s *NewsServiceSuite) TestUpdate() {
	s.Run("updates fields and records old and new values", func() {
		tenant := s.seedTenant("Home")
		author := s.seedUser("Author")
		article := s.seedNews(tenant.ID, author.ID, "Draft title", models.StatusDraft)

		title := "Final title"
		status := "published"
		ctx := s.memberCtx(author.ID, identity.Membership{TenantID: tenant.ID, Role: id.RoleEditor})
		details, err := s.service.Update(ctx, article.ID, UpdateNewsInput{Title: &title, Status: &status})
		s.Require().NoError(err)
		s.Equal("Final title", details.Title)
		s.Equal(models.StatusPublished, details.Status)
		s.Equal(tenant.ID, details.TenantID, "tenant must not move")
		s.Equal(author.ID, details.AuthorID, "author must not change")

		entries := s.logEntries()
		s.Require().Len(entries, 1)
		s.Equal(logmodels.LogUpdated, entries[0].LogType)
		s.Equal("Draft title", entries[0].OldValues["title"])
		s.Equal("Final title", entries[0].NewValues["title"])
	})

	s.Run("any member of the tenant may update", func() {
		tenant := s.seedTenant("Shared")
		author := s.seedUser("Author")
		article := s.seedNews(tenant.ID, author.ID, "Team piece", models.StatusDraft)

		content := "Edited by a colleague"
		ctx := s.memberCtx(id.UserID(uuid.New()), identity.Membership{TenantID: tenant.ID, Role: id.RoleEditor})
		details, err := s.service.Update(ctx, article.ID, UpdateNewsInput{Content: &content})
		s.Require().NoError(err)
		s.Equal("Edited by a colleague", details.Content)
	})

	s.Run("outsiders are denied", func() {
		tenant := s.seedTenant("Private")
		author := s.seedUser("Author")
		article := s.seedNews(tenant.ID, author.ID, "Locked", models.StatusDraft)

		title := "Defaced"
		ctx := s.memberCtx(id.UserID(uuid.New()), identity.Membership{TenantID: id.TenantID(uuid.New()), Role: id.RoleAdmin})
		_, err := s.service.Update(ctx, article.ID, UpdateNewsInput{Title: &title})
		s.Require().Error(err)
		s.Equal("You do not have permission to update this news.", dErrors.MessageOf(err))
	})

	s.Run("rejects an empty title", func() {
		tenant := s.seedTenant("Strict")
		author := s.seedUser("Author")
		article := s.seedNews(tenant.ID, author.ID, "Has a title", models.StatusDraft)

		title := "   "
		_, err := s.service.Update(s.superCtx(), article.ID, UpdateNewsInput{Title: &title})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// TestDelete covers the author-or-admin rule.
func (s *NewsServiceSuite) TestDelete() {
	s.Run("the author may delete", func() {
		tenant := s.seedTenant("Home")
		author := s.seedUser("Author")
		article := s.seedNews(tenant.ID, author.ID, "Mine", models.StatusDraft)

		ctx := s.memberCtx(author.ID, identity.Membership{TenantID: tenant.ID, Role: id.RoleEditor})
		s.Require().NoError(s.service.Delete(ctx, article.ID))

		_, err := s.service.Get(s.superCtx(), article.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		entries := s.logEntries()
		s.Require().Len(entries, 1)
		s.Equal("News 'Mine' foi excluído", entries[0].Description)
	})

	s.Run("a tenant admin may delete someone else's article", func() {
		tenant := s.seedTenant("Home")
		author := s.seedUser("Author")
		article := s.seedNews(tenant.ID, author.ID, "Reviewed", models.StatusPublished)

		ctx := s.memberCtx(id.UserID(uuid.New()), identity.Membership{TenantID: tenant.ID, Role: id.RoleAdmin})
		s.Require().NoError(s.service.Delete(ctx, article.ID))
	})

	s.Run("a fellow editor may not", func() {
		tenant := s.seedTenant("Home")
		author := s.seedUser("Author")
		article := s.seedNews(tenant.ID, author.ID, "Protected", models.StatusPublished)

		ctx := s.memberCtx(id.UserID(uuid.New()), identity.Membership{TenantID: tenant.ID, Role: id.RoleEditor})
		err := s.service.Delete(ctx, article.ID)
		s.Require().Error(err)
		s.Equal("Only the author or tenant admin can delete this news.", dErrors.MessageOf(err))
	})

	s.Run("outsiders are denied", func() {
		tenant := s.seedTenant("Private")
		author := s.seedUser("Author")
		article := s.seedNews(tenant.ID, author.ID, "Unreachable", models.StatusPublished)

		ctx := s.memberCtx(id.UserID(uuid.New()), identity.Membership{TenantID: id.TenantID(uuid.New()), Role: id.RoleAdmin})
		err := s.service.Delete(ctx, article.ID)
		s.Require().Error(err)
		s.Equal("You do not have permission to delete this news.", dErrors.MessageOf(err))
	})
}
