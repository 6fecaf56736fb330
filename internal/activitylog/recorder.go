// Package activitylog records and serves the audit trail. Every create,
// update and delete of a core entity lands here.
package activitylog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"newsdesk/internal/activitylog/models"
	"newsdesk/internal/platform/metrics"
	"newsdesk/internal/scope"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
	"newsdesk/pkg/requestcontext"
)

// Store is the persistence seam for log entries. Entries are append-only.
type Store interface {
	Append(ctx context.Context, e *models.Entry) error
	FindByID(ctx context.Context, logID id.LogID) (*models.Entry, error)
	List(ctx context.Context, filter models.EntryFilter) ([]*models.Entry, int, error)
}

var logVerbs = map[models.LogType]string{
	models.LogCreated: "criado",
	models.LogUpdated: "atualizado",
	models.LogDeleted: "excluído",
}

// Change describes one entity mutation to be recorded. Old is nil for
// creates, New is nil for deletes. Display names the entity in the human
// description; it falls back to the entity uuid.
type Change struct {
	LogType    models.LogType
	EntityKind models.EntityKind
	EntityID   string
	TenantID   *id.TenantID
	Display    string
	Old        map[string]any
	New        map[string]any
}

// Recorder builds and persists log entries. Record runs on the caller's
// context, so inside a transaction the entry commits or rolls back with the
// mutation it describes. An optional outbox receives every recorded entry
// for downstream fan-out.
type Recorder struct {
	store   Store
	outbox  chan<- models.Entry
	now     func() time.Time
	metrics *metrics.Metrics
}

type RecorderOption func(*Recorder)

// WithOutbox attaches the fan-out channel. Sends never block: when the
// channel is full the entry is silently dropped from the stream, never from
// the store.
func WithOutbox(outbox chan<- models.Entry) RecorderOption {
	return func(r *Recorder) { r.outbox = outbox }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// WithRecorderMetrics counts recorded entries.
func WithRecorderMetrics(m *metrics.Metrics) RecorderOption {
	return func(r *Recorder) { r.metrics = m }
}

func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: store}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record persists one entry. Actor and client metadata come from the
// request context. Failure to persist fails the surrounding operation; an
// unauditable mutation must not commit.
func (r *Recorder) Record(ctx context.Context, change Change) error {
	display := change.Display
	if display == "" {
		display = change.EntityID
	}

	createdAt := requestcontext.Now(ctx)
	if r.now != nil {
		createdAt = r.now()
	}

	// Tenant context prefers the entity's own association; entities without
	// one inherit the tenant the request was scoped to.
	tenantID := change.TenantID
	if tenantID == nil {
		if access, ok := scope.FromContext(ctx); ok && !access.Global {
			scoped := access.TenantID
			tenantID = &scoped
		}
	}

	e := &models.Entry{
		ID:          id.LogID(uuid.New()),
		LogType:     change.LogType,
		EntityKind:  change.EntityKind,
		EntityID:    change.EntityID,
		TenantID:    tenantID,
		OldValues:   models.StripSensitive(change.Old),
		NewValues:   models.StripSensitive(change.New),
		Description: fmt.Sprintf("%s '%s' foi %s", change.EntityKind.Label(), display, logVerbs[change.LogType]),
		IPAddress:   requestcontext.ClientIP(ctx),
		UserAgent:   requestcontext.UserAgent(ctx),
		CreatedAt:   createdAt,
	}
	if actorID := requestcontext.UserID(ctx); !actorID.IsNil() {
		actor := actorID
		e.ActorID = &actor
	}

	if err := r.store.Append(ctx, e); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "record activity")
	}
	if r.metrics != nil {
		r.metrics.IncrementActivityLogged()
	}

	if r.outbox != nil {
		select {
		case r.outbox <- *e:
		default:
		}
	}
	return nil
}
