// Package service orchestrates user management: CRUD, tenant assignment and
// the gates that keep authors from vanishing under their articles.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"newsdesk/internal/activitylog"
	logmodels "newsdesk/internal/activitylog/models"
	"newsdesk/internal/identity"
	"newsdesk/internal/platform/metrics"
	"newsdesk/internal/policy"
	tenantmodels "newsdesk/internal/tenant/models"
	"newsdesk/internal/user/models"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
	"newsdesk/pkg/platform/sentinel"
	"newsdesk/pkg/platform/tx"
	"newsdesk/pkg/requestcontext"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error)
	Delete(ctx context.Context, userID id.UserID, now time.Time) error
}

type MembershipStore interface {
	Attach(ctx context.Context, m *tenantmodels.Membership) error
	Detach(ctx context.Context, tenantID id.TenantID, userID id.UserID) error
	ListByUser(ctx context.Context, userID id.UserID) ([]*tenantmodels.Membership, error)
	ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*tenantmodels.Membership, error)
}

// TenantDirectory resolves tenant names for the user read model.
type TenantDirectory interface {
	FindByID(ctx context.Context, tenantID id.TenantID) (*tenantmodels.Tenant, error)
}

// NewsCounter gates user deletion and tenant changes on authored articles.
type NewsCounter interface {
	CountByAuthor(ctx context.Context, authorID id.UserID) (int, error)
}

// Recorder lands an audit entry for every mutation.
type Recorder interface {
	Record(ctx context.Context, change activitylog.Change) error
}

// Service orchestrates user management.
type Service struct {
	users       UserStore
	memberships MembershipStore
	tenants     TenantDirectory
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
func New(users UserStore, memberships MembershipStore, tenants TenantDirectory, newsCounter NewsCounter, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		users:       users,
		memberships: memberships,
		tenants:     tenants,
		newsCounter: newsCounter,
		runner:      runner,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUserInput carries the user create payload. TenantID optionally
// attaches the new user to a tenant; Role defaults to editor.
type CreateUserInput struct {
	Name         string
	Email        string
	Password     string
	IsSuperAdmin bool
	TenantID     *id.TenantID
	Role         id.Role
}

// UpdateUserInput carries the user update payload. Nil fields are left
// untouched. TenantID moves the user to that tenant, replacing existing
// memberships.
type UpdateUserInput struct {
	Name         *string
	Email        *string
	Password     *string
	IsSuperAdmin *bool
	TenantID     *id.TenantID
	Role         id.Role
}

// List returns users visible to the caller. Super admins see everyone,
// optionally narrowed to one tenant; everyone else sees colleagues from
// shared tenants only.
func (s *Service) List(ctx context.Context, tenantID *id.TenantID, filter models.UserFilter) ([]*models.UserDetails, int, error) {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, 0, err
	}
	if err := s.check(policy.CanListUsers(subject)); err != nil {
		return nil, 0, err
	}

	switch {
	case subject.IsSuperAdmin && tenantID != nil:
		allowlist, err := s.tenantMembers(ctx, *tenantID)
		if err != nil {
			return nil, 0, err
		}
		filter.UserIDs = allowlist
	case !subject.IsSuperAdmin:
		allowlist := []id.UserID{}
		seen := map[id.UserID]bool{}
		for _, membershipTenant := range subject.TenantIDs() {
			members, err := s.tenantMembers(ctx, membershipTenant)
			if err != nil {
				return nil, 0, err
			}
			for _, userID := range members {
				if !seen[userID] {
					seen[userID] = true
					allowlist = append(allowlist, userID)
				}
			}
		}
		filter.UserIDs = allowlist
	}

	filter.Normalize()
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}

	details := make([]*models.UserDetails, 0, len(users))
	for _, user := range users {
		d, err := s.buildDetails(ctx, user)
		if err != nil {
			return nil, 0, err
		}
		details = append(details, d)
	}
	return details, total, nil
}

// Get returns one user. Super admins, the user themselves, and colleagues
// from shared tenants.
func (s *Service) Get(ctx context.Context, userID id.UserID) (*models.UserDetails, error) {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	memberships, err := s.memberships.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list user tenants")
	}
	target := &identity.Subject{UserID: user.ID, IsSuperAdmin: user.IsSuperAdmin}
	for _, m := range memberships {
		target.Memberships = append(target.Memberships, identity.Membership{TenantID: m.TenantID, Role: m.Role})
	}
	if err := s.check(policy.CanViewUser(subject, target)); err != nil {
		return nil, err
	}

	return s.buildDetails(ctx, user)
}

// Create registers a new user. Super admin only.
func (s *Service) Create(ctx context.Context, input CreateUserInput) (*models.UserDetails, error) {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(policy.CanCreateUser(subject)); err != nil {
		return nil, err
	}

	if len(input.Password) < 8 {
		return nil, dErrors.WithFields("The given data was invalid.", map[string]string{
			"password": "The password field must be at least 8 characters.",
		})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	user, err := models.NewUser(id.UserID(uuid.New()), input.Name, input.Email, string(hash), input.IsSuperAdmin, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	err = s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, user); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.WithFields("The given data was invalid.", map[string]string{
					"email": "The email has already been taken.",
				})
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
		}

		if input.TenantID != nil {
			if _, err := s.tenants.FindByID(txCtx, *input.TenantID); err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return dErrors.New(dErrors.CodeNotFound, "Tenant not found")
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tenant")
			}
			role := input.Role
			if role == "" {
				role = id.RoleEditor
			}
			membership := &tenantmodels.Membership{
				TenantID:  *input.TenantID,
				UserID:    user.ID,
				Role:      role,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.memberships.Attach(txCtx, membership); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to attach user to tenant")
			}
		}

		return s.record(txCtx, logmodels.LogCreated, user, input.TenantID, nil, user.Snapshot())
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}
	s.logger.InfoContext(ctx, "user created",
		"user_uuid", user.ID.String(),
		"request_id", requestcontext.RequestID(ctx))
	return s.buildDetails(ctx, user)
}

// Update changes user attributes. Super admin only. Moving the user to a
// different tenant is refused while they still have articles.
func (s *Service) Update(ctx context.Context, userID id.UserID, input UpdateUserInput) (*models.UserDetails, error) {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(policy.CanUpdateUser(subject)); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	before := user.Snapshot()

	tenantChange := false
	if input.TenantID != nil {
		if _, err := s.tenants.FindByID(ctx, *input.TenantID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "Tenant not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tenant")
		}
		memberships, err := s.memberships.ListByUser(ctx, user.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list user tenants")
		}
		tenantChange = true
		for _, m := range memberships {
			if m.TenantID == *input.TenantID {
				tenantChange = false
				break
			}
		}
	}
	if tenantChange {
		newsCount, err := s.newsCounter.CountByAuthor(ctx, user.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count user news")
		}
		if newsCount > 0 {
			return nil, dErrors.Newf(dErrors.CodeBadRequest,
				"Cannot change user tenant. This user has %d news article(s) associated with the current tenant. Please reassign or delete the news first.",
				newsCount)
		}
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.IsSuperAdmin != nil {
		user.IsSuperAdmin = *input.IsSuperAdmin
	}
	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < 8 {
			return nil, dErrors.WithFields("The given data was invalid.", map[string]string{
				"password": "The password field must be at least 8 characters.",
			})
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
		}
		user.PasswordHash = string(hash)
	}

	now := requestcontext.Now(ctx)
	validated, err := models.NewUser(user.ID, user.Name, user.Email, user.PasswordHash, user.IsSuperAdmin, user.CreatedAt)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	validated.UpdatedAt = now

	err = s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Update(txCtx, validated); err != nil {
			switch {
			case errors.Is(err, sentinel.ErrNotFound):
				return dErrors.New(dErrors.CodeNotFound, "User not found")
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				return dErrors.WithFields("The given data was invalid.", map[string]string{
					"email": "The email has already been taken.",
				})
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
		}

		if input.TenantID != nil {
			// Moving replaces every existing membership.
			if err := s.syncTenant(txCtx, validated.ID, *input.TenantID, input.Role, now); err != nil {
				return err
			}
		}

		return s.record(txCtx, logmodels.LogUpdated, validated, input.TenantID, before, validated.Snapshot())
	})
	if err != nil {
		return nil, err
	}
	return s.buildDetails(ctx, validated)
}

// Delete soft-deletes a user. Refused while they still have articles.
func (s *Service) Delete(ctx context.Context, userID id.UserID) error {
	subject, err := subjectFrom(ctx)
	if err != nil {
		return err
	}
	if err := s.check(policy.CanDeleteUser(subject)); err != nil {
		return err
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	return s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		newsCount, err := s.newsCounter.CountByAuthor(txCtx, user.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count user news")
		}
		if newsCount > 0 {
			return dErrors.Newf(dErrors.CodeBadRequest,
				"Cannot delete user. This user has %d news article(s) associated. Please reassign or delete the news first.",
				newsCount)
		}

		memberships, err := s.memberships.ListByUser(txCtx, user.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list user tenants")
		}
		for _, m := range memberships {
			if err := s.memberships.Detach(txCtx, m.TenantID, user.ID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to detach user")
			}
		}

		if err := s.users.Delete(txCtx, user.ID, requestcontext.Now(txCtx)); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "User not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
		}
		return s.record(txCtx, logmodels.LogDeleted, user, nil, user.Snapshot(), nil)
	})
}

func (s *Service) syncTenant(ctx context.Context, userID id.UserID, tenantID id.TenantID, role id.Role, now time.Time) error {
	existing, err := s.memberships.ListByUser(ctx, userID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list user tenants")
	}
	for _, m := range existing {
		if m.TenantID == tenantID {
			continue
		}
		if err := s.memberships.Detach(ctx, m.TenantID, userID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to detach user")
		}
	}

	if role == "" {
		role = id.RoleEditor
	}
	membership := &tenantmodels.Membership{
		TenantID:  tenantID,
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.memberships.Attach(ctx, membership); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to attach user to tenant")
	}
	return nil
}

func (s *Service) tenantMembers(ctx context.Context, tenantID id.TenantID) ([]id.UserID, error) {
	memberships, err := s.memberships.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tenant users")
	}
	userIDs := make([]id.UserID, 0, len(memberships))
	for _, m := range memberships {
		userIDs = append(userIDs, m.UserID)
	}
	return userIDs, nil
}

func (s *Service) buildDetails(ctx context.Context, user *models.User) (*models.UserDetails, error) {
	memberships, err := s.memberships.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list user tenants")
	}

	refs := make([]models.TenantRef, 0, len(memberships))
	for _, m := range memberships {
		tenant, err := s.tenants.FindByID(ctx, m.TenantID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tenant")
		}
		refs = append(refs, models.TenantRef{TenantID: tenant.ID, Name: tenant.Name, Role: m.Role})
	}

	newsCount, err := s.newsCounter.CountByAuthor(ctx, user.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count user news")
	}

	return &models.UserDetails{User: user, Tenants: refs, NewsCount: newsCount}, nil
}

func (s *Service) findUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// record logs a user mutation. Users carry no tenant column, so the tenant
// context is the membership the mutation targeted; when nil the recorder
// falls back to the request's resolved scope.
func (s *Service) record(ctx context.Context, logType logmodels.LogType, user *models.User, tenantID *id.TenantID, oldValues, newValues map[string]any) error {
	if s.recorder == nil {
		return nil
	}
	return s.recorder.Record(ctx, activitylog.Change{
		LogType:    logType,
		EntityKind: logmodels.KindUser,
		EntityID:   user.ID.String(),
		TenantID:   tenantID,
		Display:    user.DisplayName(),
		Old:        oldValues,
		New:        newValues,
	})
}

func (s *Service) check(decision policy.Decision) error {
	if decision.Allowed {
		return nil
	}
	if s.metrics != nil {
		s.metrics.IncrementPolicyDenial("user")
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
