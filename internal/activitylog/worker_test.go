package activitylog

//go:generate mockgen -source=recorder.go -destination=mocks/mocks.go -package=mocks Store,Sink

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"newsdesk/internal/activitylog/mocks"
	"newsdesk/internal/activitylog/models"
	id "newsdesk/pkg/domain"
)

type WorkerSuite struct {
	suite.Suite
	ctrl  *gomock.Controller
	sink  *mocks.MockSink
	inbox chan models.Entry
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sink = mocks.NewMockSink(s.ctrl)
	s.inbox = make(chan models.Entry, 8)
}

func (s *WorkerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *WorkerSuite) newWorker() *Worker {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWorker(s.sink, s.inbox, logger)
}

func makeEntry(description string) models.Entry {
	return models.Entry{
		ID:          id.LogID(uuid.New()),
		LogType:     models.LogCreated,
		EntityKind:  models.KindNews,
		EntityID:    uuid.NewString(),
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}

// TestStreamsEntries verifies the worker publishes each drained entry keyed
// by the entity uuid with the JSON-encoded entry as value.
func (s *WorkerSuite) TestStreamsEntries() {
	e := makeEntry("News 'Launch Day' foi criado")

	published := make(chan struct{})
	s.sink.EXPECT().
		Publish(gomock.Any(), []byte(e.EntityID), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, value []byte) error {
			defer close(published)
			var got models.Entry
			s.Require().NoError(json.Unmarshal(value, &got))
			s.Equal(e.ID, got.ID)
			s.Equal(e.Description, got.Description)
			return nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.newWorker().Run(ctx) }()

	s.inbox <- e

	select {
	case <-published:
	case <-time.After(2 * time.Second):
		s.Fail("entry was not published")
	}

	cancel()
	s.ErrorIs(<-done, context.Canceled)
}

// TestPublishFailureSkipsEntry verifies the stream stays best-effort: a
// broker error drops that entry and the worker keeps draining.
func (s *WorkerSuite) TestPublishFailureSkipsEntry() {
	first := makeEntry("News 'Dropped' foi criado")
	second := makeEntry("News 'Delivered' foi criado")

	delivered := make(chan struct{})
	gomock.InOrder(
		s.sink.EXPECT().
			Publish(gomock.Any(), []byte(first.EntityID), gomock.Any()).
			Return(errors.New("broker unavailable")),
		s.sink.EXPECT().
			Publish(gomock.Any(), []byte(second.EntityID), gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ []byte) error {
				close(delivered)
				return nil
			}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.newWorker().Run(ctx) }()

	s.inbox <- first
	s.inbox <- second

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		s.Fail("second entry was not published")
	}

	cancel()
	s.ErrorIs(<-done, context.Canceled)
}
