package activitylog

import (
	"context"
	"encoding/json"
	"log/slog"

	"newsdesk/internal/activitylog/models"
)

// Sink is where the worker streams recorded entries. The Kafka producer
// satisfies it.
type Sink interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Worker drains the recorder outbox and streams entries to the sink. The
// stream is best-effort: publish failures are logged and skipped, never
// retried, and never block recording.
type Worker struct {
	sink   Sink
	inbox  <-chan models.Entry
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan models.Entry, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-w.inbox:
			value, err := json.Marshal(e)
			if err != nil {
				w.logger.ErrorContext(ctx, "marshal activity entry",
					"log_uuid", e.ID.String(),
					"error", err)
				continue
			}
			if err := w.sink.Publish(ctx, []byte(e.EntityID), value); err != nil {
				w.logger.WarnContext(ctx, "publish activity entry",
					"log_uuid", e.ID.String(),
					"model_type", e.EntityKind.String(),
					"error", err)
			}
		}
	}
}
