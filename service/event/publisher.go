package event

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/viant/waypoint/internal/clock"
	"github.com/viant/waypoint/service/messaging"
)

type Publisher[T any] struct {
	queue  messaging.Queue[Event[T]]
	any    *Publisher[any]
	active atomic.Bool
}

// NewPublisher creates an active publisher over queue
func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	ret := &Publisher[T]{queue: queue}
	ret.active.Store(true)
	return ret
}

// Publish enqueues the event and mirrors it to the untyped publisher when
// one is attached. Inactive publishers (no consumer) discard events. A
// failure on one queue does not prevent delivery to the other.
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	event.CreatedAt = clock.Now()
	var mirrorErr error
	if p.any != nil {
		mirrorErr = p.any.Publish(ctx, &Event[any]{
			Context:   event.Context,
			CreatedAt: event.CreatedAt,
			Metadata:  event.Metadata,
			Data:      event.Data,
		})
	}
	if !p.active.Load() {
		return mirrorErr
	}
	return errors.Join(mirrorErr, p.queue.Publish(ctx, event))
}

func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}
