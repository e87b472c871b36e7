package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "portflow/pkg/platform/audit"
	auditmemory "portflow/pkg/platform/audit/store/memory"
)

func TestWorker_DrainsInboxIntoSink(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := auditmemory.NewInMemoryStore()
	inbox := make(chan audit.Event, 8)
	w := NewWorker(sink, inbox)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	pub := NewChannelPublisher(inbox)
	require.NoError(t, pub.Emit(ctx, audit.Event{CaseID: "case-1", Action: audit.EventDutyPaid}))
	require.NoError(t, pub.Emit(ctx, audit.Event{CaseID: "case-1", Action: audit.EventDutyAssessed}))

	assert.Eventually(t, func() bool {
		events, err := sink.ListByCase(ctx, "case-1")
		return err == nil && len(events) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWorker_SinkErrorStopsTheLoop(t *testing.T) {
	ctx := context.Background()
	sinkErr := errors.New("sink down")
	inbox := make(chan audit.Event, 1)
	w := NewWorker(failingSink{err: sinkErr}, inbox)

	inbox <- audit.Event{CaseID: "case-1", Action: audit.EventCaseCreated}

	assert.ErrorIs(t, w.Run(ctx), sinkErr)
}

func TestChannelPublisher_FullInboxDropsInsteadOfBlocking(t *testing.T) {
	inbox := make(chan audit.Event, 1)
	pub := NewChannelPublisher(inbox)
	ctx := context.Background()

	require.NoError(t, pub.Emit(ctx, audit.Event{CaseID: "case-1"}))
	assert.ErrorIs(t, pub.Emit(ctx, audit.Event{CaseID: "case-2"}), ErrInboxFull)
}

func TestChannelPublisher_NormalizesEvents(t *testing.T) {
	fixed := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	orig := timeNow
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = orig }()

	inbox := make(chan audit.Event, 1)
	pub := NewChannelPublisher(inbox)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		CaseID: "case-1",
		Action: audit.EventDutyPaid,
	}))

	got := <-inbox
	assert.Equal(t, audit.CategoryCompliance, got.Category)
	assert.Equal(t, fixed, got.Timestamp)
}

type failingSink struct{ err error }

func (f failingSink) Append(context.Context, audit.Event) error { return f.err }
