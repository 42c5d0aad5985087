package event

import (
	"context"
	"sync"
)

// Listener drains a publisher queue on its own goroutine
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	once      sync.Once
}

func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Stop cancels consumption, waits for the goroutine to exit and deactivates
// the publisher.
func (l *Listener[T]) Stop() {
	l.once.Do(func() {
		l.publisher.active.Store(false)
		l.cancel()
		<-l.done
	})
}

func (l *Listener[T]) Start() {
	go func() {
		defer close(l.done)
		for {
			event, err := l.publisher.Consume(l.ctx)
			if err != nil {
				if l.ctx.Err() != nil {
					return
				}
				continue
			}
			if event != nil {
				l.handler(event)
			}
		}
	}()
}
