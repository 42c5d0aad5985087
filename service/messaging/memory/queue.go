package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/viant/waypoint/internal/clock"
	"github.com/viant/waypoint/service/messaging"
)

// Config for memory queue implementation
type Config struct {
	MaxRetries  int
	QueueBuffer int
	// DropWhenFull makes Publish fail fast with messaging.ErrQueueFull
	// instead of waiting for buffer space.
	DropWhenFull bool
}

// DefaultConfig returns a standard configuration for memory queue
func DefaultConfig() Config {
	return Config{
		MaxRetries:   3,
		QueueBuffer:  100,
		DropWhenFull: true,
	}
}

// Message implements messaging.Message for the in-memory queue
type Message[T any] struct {
	id         string
	payload    T
	queue      *Queue[T]
	retryCount int
	mu         sync.Mutex
	processed  bool
	createdAt  time.Time
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// ID returns the message identifier
func (m *Message[T]) ID() string {
	return m.id
}

// Ack acknowledges the message as processed successfully
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %s already processed", m.id)
	}
	m.processed = true
	return nil
}

// Nack requeues the message until MaxRetries is exceeded, then drops it
func (m *Message[T]) Nack(_ error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %s already processed", m.id)
	}
	m.processed = true
	if m.retryCount >= m.queue.config.MaxRetries {
		m.queue.dropped.Add(1)
		return nil
	}
	retry := &Message[T]{
		id:         m.id,
		payload:    m.payload,
		queue:      m.queue,
		retryCount: m.retryCount + 1,
		createdAt:  clock.Now(),
	}
	select {
	case m.queue.messages <- retry:
	default:
		m.queue.dropped.Add(1)
	}
	return nil
}

// Queue implements an in-memory messaging.Queue
type Queue[T any] struct {
	messages chan *Message[T]
	config   Config
	dropped  atomic.Int64
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.QueueBuffer),
		config:   config,
	}
}

// Publish adds a new item to the queue
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &Message[T]{
		id:        uuid.New().String(),
		payload:   *t,
		queue:     q,
		createdAt: clock.Now(),
	}
	if q.config.DropWhenFull {
		select {
		case q.messages <- msg:
			return nil
		default:
			q.dropped.Add(1)
			return messaging.ErrQueueFull
		}
	}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume retrieves a single item from the queue
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the current number of messages in the queue
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// Dropped returns the number of messages discarded on overflow or retry exhaustion
func (q *Queue[T]) Dropped() int {
	return int(q.dropped.Load())
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
