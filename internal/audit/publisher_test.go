package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublisherWorker_DeliverToStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewMemoryStore()
	pub := NewPublisher(logger, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := NewWorker(store, pub.Inbox(), logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()

	pub.Emit(ctx, Event{Action: ActionRegistrationStarted, ContactNumber: "9876543210"})
	pub.Emit(ctx, Event{Action: ActionRegistrationCommitted, ContactNumber: "9876543210"})

	require.Eventually(t, func() bool {
		return len(store.Events()) == 2
	}, time.Second, 10*time.Millisecond)

	events := store.Events()
	require.Equal(t, ActionRegistrationStarted, events[0].Action)
	require.False(t, events[0].Timestamp.IsZero())

	cancel()
	<-done
}

func TestPublisher_DropsWhenFull(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pub := NewPublisher(logger, 1)

	ctx := context.Background()
	pub.Emit(ctx, Event{Action: ActionRegistrationStarted})
	// No worker draining; the second emit must not block.
	pub.Emit(ctx, Event{Action: ActionRegistrationStarted})

	require.Len(t, pub.Inbox(), 1)
}
