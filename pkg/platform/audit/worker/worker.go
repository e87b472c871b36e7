package worker

import (
	"context"

	audit "portflow/pkg/platform/audit"
)

// Worker consumes audit events from a channel and hands them to a sink. It
// decouples domain emitters from sink latency; the orchestrator never blocks
// on Kafka or storage.
type Worker struct {
	sink  audit.Store
	inbox <-chan audit.Event
}

func NewWorker(sink audit.Store, inbox <-chan audit.Event) *Worker {
	return &Worker{sink: sink, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}

// ChannelPublisher is the emitting side of the worker's inbox. Emit drops
// events when the inbox is full rather than blocking a transition.
type ChannelPublisher struct {
	inbox chan<- audit.Event
}

func NewChannelPublisher(inbox chan<- audit.Event) *ChannelPublisher {
	return &ChannelPublisher{inbox: inbox}
}

func (p *ChannelPublisher) Emit(ctx context.Context, event audit.Event) error {
	select {
	case p.inbox <- event.Normalize(timeNow()):
		return nil
	default:
		return ErrInboxFull
	}
}
