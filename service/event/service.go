// Package event publishes session lifecycle events on in-memory queues.
package event

import (
	"reflect"
	"sync"

	"github.com/viant/waypoint/service/messaging"
	"github.com/viant/waypoint/service/messaging/memory"
)

type Option func(s *Service)

// WithNewQueueConfig sets the per queue configuration
func WithNewQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.newQueueConfig = newConfig
	}
}

type Service struct {
	publisher       *Publisher[any]
	listener        *Listener[any]
	typedPublishers map[reflect.Type]any
	typedListener   map[reflect.Type]any
	mux             sync.RWMutex
	newQueueConfig  func(name string) memory.Config
}

// SetListener replaces the handler receiving every event regardless of payload type
func (s *Service) SetListener(handler func(*Event[any])) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.listener != nil {
		s.listener.Stop()
	}
	s.listener = NewListener[any](s.publisher, handler)
	s.publisher.active.Store(true)
	s.listener.Start()
}

// Close stops all listeners
func (s *Service) Close() {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.listener != nil {
		s.listener.Stop()
		s.listener = nil
	}
	for key, listener := range s.typedListener {
		listener.(interface{ Stop() }).Stop()
		delete(s.typedListener, key)
	}
}

func New(opts ...Option) *Service {
	ret := &Service{
		typedPublishers: make(map[reflect.Type]any),
		typedListener:   make(map[reflect.Type]any),
		newQueueConfig:  func(string) memory.Config { return memory.DefaultConfig() },
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.publisher = NewPublisher[any](QueueOf[Event[any]](ret, "any"))
	ret.publisher.active.Store(false)
	return ret
}

func QueueOf[T any](s *Service, name string) messaging.Queue[T] {
	return memory.NewQueue[T](s.newQueueConfig(name))
}

func keyOf[T any]() reflect.Type {
	rType := reflect.TypeOf((*T)(nil)).Elem()
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

// SetListenerOf replaces the handler for events carrying payload T
func SetListenerOf[T any](s *Service, handler func(*Event[T])) {
	key := keyOf[T]()
	publisher := PublisherOf[T](s)
	s.mux.Lock()
	defer s.mux.Unlock()
	if previous, ok := s.typedListener[key]; ok {
		previous.(*Listener[T]).Stop()
	}
	listener := NewListener[T](publisher, handler)
	s.typedListener[key] = listener
	publisher.active.Store(true)
	listener.Start()
}

// PublisherOf returns a publisher for the provided type
func PublisherOf[T any](s *Service) *Publisher[T] {
	key := keyOf[T]()
	s.mux.RLock()
	ret, ok := s.typedPublishers[key]
	s.mux.RUnlock()
	if ok {
		return ret.(*Publisher[T])
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok = s.typedPublishers[key]; ok {
		return ret.(*Publisher[T])
	}
	publisher := NewPublisher[T](QueueOf[Event[T]](s, key.String()))
	publisher.active.Store(false)
	publisher.any = s.publisher
	s.typedPublishers[key] = publisher
	return publisher
}
