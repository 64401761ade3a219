package audit

import (
	"context"
	"log/slog"
	"time"
)

// Publisher hands events to a buffered channel so request handlers never
// block on the audit sink. A full buffer drops the event with a log line;
// audit must never take the request path down.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewPublisher(logger *slog.Logger, buffer int) *Publisher {
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit buffer full, dropping event", "action", event.Action)
	}
}

// Inbox exposes the channel for the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}

// Worker drains the publisher channel into a store until ctx is cancelled.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.Error("failed to persist audit event",
					"action", event.Action,
					"error", err.Error(),
				)
			}
		}
	}
}
