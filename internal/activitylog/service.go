package activitylog

import (
	"context"
	"errors"
	"log/slog"

	"newsdesk/internal/activitylog/models"
	"newsdesk/internal/identity"
	"newsdesk/internal/platform/metrics"
	"newsdesk/internal/policy"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
	"newsdesk/pkg/platform/sentinel"
)

// Service serves the audit trail read side. Access is restricted to super
// admins.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
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

// NewService constructs the read-side Service.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns log entries matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter models.EntryFilter) ([]*models.Entry, int, error) {
	subject, err := s.authorize(ctx)
	if err != nil {
		return nil, 0, err
	}

	filter.Normalize()
	entries, total, err := s.store.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "list activity logs",
			"user_uuid", subject.UserID.String(),
			"error", err)
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list logs")
	}
	return entries, total, nil
}

// GetByID returns a single log entry.
func (s *Service) GetByID(ctx context.Context, logID id.LogID) (*models.Entry, error) {
	if _, err := s.authorize(ctx); err != nil {
		return nil, err
	}

	e, err := s.store.FindByID(ctx, logID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Log not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get log")
	}
	return e, nil
}

func (s *Service) authorize(ctx context.Context) (*identity.Subject, error) {
	subject, ok := identity.FromContext(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Unauthenticated")
	}
	if decision := policy.CanViewActivityLogs(subject); !decision.Allowed {
		if s.metrics != nil {
			s.metrics.IncrementPolicyDenial("activity_log")
		}
		return nil, decision.Err()
	}
	return subject, nil
}
