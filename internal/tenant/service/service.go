// Package service orchestrates tenant management: CRUD, membership
// attach/detach and the delete gates that keep tenants from disappearing
// under their data.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"newsdesk/internal/activitylog"
	logmodels "newsdesk/internal/activitylog/models"
	"newsdesk/internal/identity"
	"newsdesk/internal/platform/metrics"
	"newsdesk/internal/policy"
	"newsdesk/internal/tenant/models"
	usermodels "newsdesk/internal/user/models"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
	"newsdesk/pkg/platform/sentinel"
	"newsdesk/pkg/platform/tx"
	"newsdesk/pkg/requestcontext"
)

type TenantStore interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	Update(ctx context.Context, tenant *models.Tenant) error
	FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error)
	List(ctx context.Context, filter models.TenantFilter) ([]*models.Tenant, int, error)
	Delete(ctx context.Context, tenantID id.TenantID, now time.Time) error
}

type MembershipStore interface {
	Attach(ctx context.Context, m *models.Membership) error
	Detach(ctx context.Context, tenantID id.TenantID, userID id.UserID) error
	ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*models.Membership, error)
	CountByTenant(ctx context.Context, tenantID id.TenantID) (int, error)
}

// UserDirectory resolves the member rows shown in tenant details.
type UserDirectory interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
}

// NewsCounter gates tenant deletion on remaining articles.
type NewsCounter interface {
	CountByTenant(ctx context.Context, tenantID id.TenantID) (int, error)
}

// Recorder lands an audit entry for every mutation.
type Recorder interface {
	Record(ctx context.Context, change activitylog.Change) error
}

// Service orchestrates tenant management.
type Service struct {
	tenants     TenantStore
	memberships MembershipStore
	users       UserDirectory
	newsCounter NewsCounter
	runner      tx.Runner
	recorder    Recorder
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

func WithRecorder(recorder Recorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

// New constructs a Service.
func New(tenants TenantStore, memberships MembershipStore, users UserDirectory, newsCounter NewsCounter, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		tenants:     tenants,
		memberships: memberships,
		users:       users,
		newsCounter: newsCounter,
		runner:      runner,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTenantInput carries the tenant create payload.
type CreateTenantInput struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// UpdateTenantInput carries the tenant update payload. Nil fields are left
// untouched.
type UpdateTenantInput struct {
	Name   *string `json:"name"`
	Domain *string `json:"domain"`
}

// List returns tenants matching the filter. Super admin only.
func (s *Service) List(ctx context.Context, filter models.TenantFilter) ([]*models.Tenant, int, error) {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, 0, err
	}
	if err := s.check(policy.CanListTenants(subject)); err != nil {
		return nil, 0, err
	}

	filter.Normalize()
	tenants, total, err := s.tenants.List(ctx, filter)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tenants")
	}
	return tenants, total, nil
}

// Get returns one tenant with its member roster. Super admins and members.
func (s *Service) Get(ctx context.Context, tenantID id.TenantID) (*models.TenantDetails, error) {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, err
	}

	tenant, err := s.findTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := s.check(policy.CanViewTenant(subject, tenant.ID)); err != nil {
		return nil, err
	}

	members, err := s.loadMembers(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	return &models.TenantDetails{Tenant: tenant, Users: members}, nil
}

// Create registers a new tenant. Super admin only.
func (s *Service) Create(ctx context.Context, input CreateTenantInput) (*models.Tenant, error) {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(policy.CanCreateTenant(subject)); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	tenant, err := models.NewTenant(id.TenantID(uuid.New()), input.Name, input.Domain, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	err = s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tenants.Create(txCtx, tenant); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.WithFields("The given data was invalid.", map[string]string{
					"domain": "The domain has already been taken.",
				})
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create tenant")
		}
		return s.record(txCtx, logmodels.LogCreated, tenant, nil, tenant.Snapshot())
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementTenantsCreated()
	}
	s.logger.InfoContext(ctx, "tenant created",
		"tenant_uuid", tenant.ID.String(),
		"request_id", requestcontext.RequestID(ctx))
	return tenant, nil
}

// Update changes tenant attributes. Super admin only.
func (s *Service) Update(ctx context.Context, tenantID id.TenantID, input UpdateTenantInput) (*models.Tenant, error) {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(policy.CanUpdateTenant(subject)); err != nil {
		return nil, err
	}

	tenant, err := s.findTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	before := tenant.Snapshot()
	name := tenant.Name
	domain := tenant.Domain
	if input.Name != nil {
		name = *input.Name
	}
	if input.Domain != nil {
		domain = *input.Domain
	}

	updated, err := models.NewTenant(tenant.ID, name, domain, tenant.CreatedAt)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	updated.UpdatedAt = requestcontext.Now(ctx)

	err = s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tenants.Update(txCtx, updated); err != nil {
			switch {
			case errors.Is(err, sentinel.ErrNotFound):
				return dErrors.New(dErrors.CodeNotFound, "Tenant not found")
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				return dErrors.WithFields("The given data was invalid.", map[string]string{
					"domain": "The domain has already been taken.",
				})
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update tenant")
		}
		return s.record(txCtx, logmodels.LogUpdated, updated, before, updated.Snapshot())
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete soft-deletes a tenant. Refused while users or news remain attached.
func (s *Service) Delete(ctx context.Context, tenantID id.TenantID) error {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return err
	}
	if err := s.check(policy.CanDeleteTenant(subject)); err != nil {
		return err
	}

	tenant, err := s.findTenant(ctx, tenantID)
	if err != nil {
		return err
	}

	return s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		userCount, err := s.memberships.CountByTenant(txCtx, tenant.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count tenant users")
		}
		if userCount > 0 {
			return dErrors.New(dErrors.CodeBadRequest, "Cannot delete tenant with associated users")
		}

		newsCount, err := s.newsCounter.CountByTenant(txCtx, tenant.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count tenant news")
		}
		if newsCount > 0 {
			return dErrors.New(dErrors.CodeBadRequest, "Cannot delete tenant with associated news")
		}

		if err := s.tenants.Delete(txCtx, tenant.ID, requestcontext.Now(txCtx)); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "Tenant not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete tenant")
		}
		return s.record(txCtx, logmodels.LogDeleted, tenant, tenant.Snapshot(), nil)
	})
}

// AttachUser adds a user to a tenant with a role, or updates the role when
// already attached. Super admin only.
func (s *Service) AttachUser(ctx context.Context, tenantID id.TenantID, userID id.UserID, role id.Role) (*models.TenantDetails, error) {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(policy.CanAttachUser(subject)); err != nil {
		return nil, err
	}

	tenant, err := s.findTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	membership := &models.Membership{
		TenantID:  tenant.ID,
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.memberships.Attach(ctx, membership); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to attach user")
	}

	members, err := s.loadMembers(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	return &models.TenantDetails{Tenant: tenant, Users: members}, nil
}

// DetachUser removes a user from a tenant. Detaching a user who is not
// attached is a no-op, matching upsert-style attach.
func (s *Service) DetachUser(ctx context.Context, tenantID id.TenantID, userID id.UserID) (*models.TenantDetails, error) {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(policy.CanDetachUser(subject)); err != nil {
		return nil, err
	}

	tenant, err := s.findTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.memberships.Detach(ctx, tenant.ID, userID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to detach user")
	}

	members, err := s.loadMembers(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	return &models.TenantDetails{Tenant: tenant, Users: members}, nil
}

func (s *Service) ensureUserExists(ctx context.Context, userID id.UserID) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return nil
}

func (s *Service) findTenant(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Tenant not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tenant")
	}
	return tenant, nil
}

func (s *Service) loadMembers(ctx context.Context, tenantID id.TenantID) ([]models.TenantMember, error) {
	memberships, err := s.memberships.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tenant users")
	}

	members := make([]models.TenantMember, 0, len(memberships))
	for _, m := range memberships {
		user, err := s.users.FindByID(ctx, m.UserID)
		if err != nil {
			// Soft-deleted members drop out of the roster.
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tenant user")
		}
		members = append(members, models.TenantMember{
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
			Role:   m.Role,
		})
	}
	return members, nil
}

func (s *Service) record(ctx context.Context, logType logmodels.LogType, tenant *models.Tenant, oldValues, newValues map[string]any) error {
	if s.recorder == nil {
		return nil
	}
	tenantID := tenant.ID
	return s.recorder.Record(ctx, activitylog.Change{
		LogType:    logType,
		EntityKind: logmodels.KindTenant,
		EntityID:   tenant.ID.String(),
		TenantID:   &tenantID,
		Display:    tenant.DisplayName(),
		Old:        oldValues,
		New:        newValues,
	})
}

func (s *Service) check(decision policy.Decision) error {
	if decision.Allowed {
		return nil
	}
	if s.metrics != nil {
		s.metrics.IncrementPolicyDenial("tenant")
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
