// Package service orchestrates news management. Every operation resolves
// the caller's tenant reach first; articles never leak across tenants and
// never change tenant or author after creation.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"newsdesk/internal/activitylog"
	logmodels "newsdesk/internal/activitylog/models"
	"newsdesk/internal/identity"
	"newsdesk/internal/news/models"
	"newsdesk/internal/platform/metrics"
	"newsdesk/internal/platform/telemetry"
	"newsdesk/internal/policy"
	"newsdesk/internal/scope"
	tenantmodels "newsdesk/internal/tenant/models"
	usermodels "newsdesk/internal/user/models"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
	"newsdesk/pkg/platform/sentinel"
	"newsdesk/pkg/platform/tx"
	"newsdesk/pkg/requestcontext"
)

type NewsStore interface {
	Create(ctx context.Context, article *models.News) error
	Update(ctx context.Context, article *models.News) error
	FindByID(ctx context.Context, newsID id.NewsID) (*models.News, error)
	List(ctx context.Context, filter models.NewsFilter) ([]*models.News, int, error)
	Delete(ctx context.Context, newsID id.NewsID, now time.Time) error
}

// TenantDirectory resolves tenant existence and names.
type TenantDirectory interface {
	FindByID(ctx context.Context, tenantID id.TenantID) (*tenantmodels.Tenant, error)
}

// UserDirectory resolves author names for the read model.
type UserDirectory interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
}

// Recorder lands an audit entry for every mutation.
type Recorder interface {
	Record(ctx context.Context, change activitylog.Change) error
}

// Service orchestrates news management.
type Service struct {
	news     NewsStore
	tenants  TenantDirectory
	users    UserDirectory
	runner   tx.Runner
	recorder Recorder
	logger   *slog.Logger
	metrics  *metrics.Metrics
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

func WithRecorder(recorder Recorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

// New constructs a Service.
func New(news NewsStore, tenants TenantDirectory, users UserDirectory, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		news:    news,
		tenants: tenants,
		users:   users,
		runner:  runner,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateNewsInput carries the news create payload. TenantRef is the raw
// tenant uuid from the request; super-admins must supply it, members may
// omit it to publish into their default tenant.
type CreateNewsInput struct {
	Title     string
	Content   string
	Status    string
	TenantRef string
}

// UpdateNewsInput carries the news update payload. Nil fields are left
// untouched. The article's tenant and author are immutable.
type UpdateNewsInput struct {
	Title   *string
	Content *string
	Status  *string
}

// List returns articles visible to the caller: super-admins see every
// tenant, optionally narrowed by tenantRef; everyone else sees the union of
// their tenants. Trash stays hidden unless the filter asks for it.
func (s *Service) List(ctx context.Context, tenantRef string, filter models.NewsFilter) ([]*models.NewsDetails, int, error) {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, 0, err
	}

	if subject.IsSuperAdmin {
		if tenantRef != "" {
			// An unresolvable reference widens back to the global view
			// rather than erroring, matching the listing's lenient filters.
			if tenantID, err := id.ParseTenantID(tenantRef); err == nil {
				if _, err := s.tenants.FindByID(ctx, tenantID); err == nil {
					filter.TenantIDs = []id.TenantID{tenantID}
				}
			}
		}
	} else {
		tenantIDs := subject.TenantIDs()
		if len(tenantIDs) == 0 {
			return []*models.NewsDetails{}, 0, nil
		}
		filter.TenantIDs = tenantIDs
	}

	filter.Normalize()
	articles, total, err := s.news.List(ctx, filter)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list news")
	}

	details := make([]*models.NewsDetails, 0, len(articles))
	for _, article := range articles {
		d, err := s.buildDetails(ctx, article)
		if err != nil {
			return nil, 0, err
		}
		details = append(details, d)
	}
	return details, total, nil
}

// Get returns one article, tenant membership permitting.
func (s *Service) Get(ctx context.Context, newsID id.NewsID) (*models.NewsDetails, error) {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, err
	}

	article, err := s.findNews(ctx, newsID)
	if err != nil {
		return nil, err
	}
	if err := s.check(policy.CanViewNews(subject, article.TenantID)); err != nil {
		return nil, err
	}
	return s.buildDetails(ctx, article)
}

// Create publishes a new article authored by the caller into the resolved
// target tenant.
func (s *Service) Create(ctx context.Context, input CreateNewsInput) (details *models.NewsDetails, err error) {
	ctx, span := telemetry.StartSpan(ctx, "news.Create")
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String(telemetry.AttrUserID, subject.UserID.String()))

	targetTenant, err := scope.ResolveCreateTarget(subject, input.TenantRef)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String(telemetry.AttrTenantID, targetTenant.String()))
	if err := s.check(policy.CanCreateNews(subject, targetTenant)); err != nil {
		return nil, err
	}
	tenant, err := s.tenants.FindByID(ctx, targetTenant)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Tenant not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tenant")
	}

	status := models.StatusDraft
	if input.Status != "" {
		status, err = models.ParseStatus(input.Status)
		if err != nil {
			return nil, err
		}
	}

	now := requestcontext.Now(ctx)
	article, err := models.NewNews(id.NewsID(uuid.New()), tenant.ID, subject.UserID, input.Title, input.Content, status, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	err = s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.news.Create(txCtx, article); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create news")
		}
		return s.record(txCtx, logmodels.LogCreated, article, nil, article.Snapshot())
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementNewsCreated()
		if article.Status == models.StatusPublished {
			s.metrics.IncrementNewsPublished()
		}
	}
	span.SetAttributes(attribute.String(telemetry.AttrNewsID, article.ID.String()))
	s.logger.InfoContext(ctx, "news created",
		"news_uuid", article.ID.String(),
		"tenant_uuid", article.TenantID.String(),
		"status", string(article.Status),
		"request_id", requestcontext.RequestID(ctx))
	return s.buildDetails(ctx, article)
}

// Update changes an article's title, content or status. Tenant and author
// never move.
func (s *Service) Update(ctx context.Context, newsID id.NewsID, input UpdateNewsInput) (*models.NewsDetails, error) {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, err
	}

	article, err := s.findNews(ctx, newsID)
	if err != nil {
		return nil, err
	}
	if err := s.check(policy.CanUpdateNews(subject, article.TenantID)); err != nil {
		return nil, err
	}
	before := article.Snapshot()
	wasPublished := article.Status == models.StatusPublished

	if input.Title != nil {
		article.Title = *input.Title
	}
	if input.Content != nil {
		article.Content = *input.Content
	}
	if input.Status != nil {
		status, err := models.ParseStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		article.Status = status
	}

	now := requestcontext.Now(ctx)
	validated, err := models.NewNews(article.ID, article.TenantID, article.AuthorID, article.Title, article.Content, article.Status, article.CreatedAt)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	validated.UpdatedAt = now

	err = s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.news.Update(txCtx, validated); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "News not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update news")
		}
		return s.record(txCtx, logmodels.LogUpdated, validated, before, validated.Snapshot())
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil && !wasPublished && validated.Status == models.StatusPublished {
		s.metrics.IncrementNewsPublished()
	}
	return s.buildDetails(ctx, validated)
}

// Delete soft-deletes an article. Within a tenant only the author or a
// tenant admin may delete; super-admins may delete anywhere.
func (s *Service) Delete(ctx context.Context, newsID id.NewsID) error {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return err
	}

	article, err := s.findNews(ctx, newsID)
	if err != nil {
		return err
	}
	if err := s.check(policy.CanDeleteNews(subject, article.TenantID, article.AuthorID)); err != nil {
		return err
	}

	return s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.news.Delete(txCtx, article.ID, requestcontext.Now(txCtx)); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "News not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete news")
		}
		return s.record(txCtx, logmodels.LogDeleted, article, article.Snapshot(), nil)
	})
}

func (s *Service) buildDetails(ctx context.Context, article *models.News) (*models.NewsDetails, error) {
	details := &models.NewsDetails{News: article}

	tenant, err := s.tenants.FindByID(ctx, article.TenantID)
	if err == nil {
		details.TenantName = tenant.Name
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tenant")
	}

	author, err := s.users.FindByID(ctx, article.AuthorID)
	if err == nil {
		details.AuthorName = author.Name
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load author")
	}

	return details, nil
}

func (s *Service) findNews(ctx context.Context, newsID id.NewsID) (*models.News, error) {
	article, err := s.news.FindByID(ctx, newsID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "News not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load news")
	}
	return article, nil
}

func (s *Service) record(ctx context.Context, logType logmodels.LogType, article *models.News, oldValues, newValues map[string]any) error {
	if s.recorder == nil {
		return nil
	}
	return s.recorder.Record(ctx, activitylog.Change{
		LogType:    logType,
		EntityKind: logmodels.KindNews,
		EntityID:   article.ID.String(),
		TenantID:   &article.TenantID,
		Display:    article.DisplayName(),
		Old:        oldValues,
		New:        newValues,
	})
}

func (s *Service) check(decision policy.Decision) error {
	if decision.Allowed {
		return nil
	}
	if s.metrics != nil {
		s.metrics.IncrementPolicyDenial("news")
	}
	return decision.Err()
}

func subjectFrom(ctx context.Context) (*identity.Subject, error) {
	subject, ok := identity.FromContext(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Unauthenticated")
	}
	return subject, nil
}
