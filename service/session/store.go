package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/viant/waypoint/service/metrics"
	"go.uber.org/zap"
)

// Instance is the minimal contract of a stored session
type Instance interface {
	ID() string
}

// Factory instantiates a session; an empty sessionID asks for a generated one
type Factory[T Instance] func(ctx context.Context, tenantID, sessionID string) (T, error)

type entry[T Instance] struct {
	key      Key
	instance T
	lock     sync.RWMutex
	pins     int
}

// Store is a bounded LRU of session instances
type Store[T Instance] struct {
	mux      sync.Mutex
	capacity int
	index    *simplelru.LRU[Key, *entry[T]]
	pinned   int
	factory  Factory[T]
	policy   Policy
	logger   *zap.Logger
	metrics  *metrics.Metrics
	onEvict  []func(Key, T)
}

// Acquire returns a handle to the session under key, pinned and locked
// according to mode. The caller must Release the handle.
func (s *Store[T]) Acquire(ctx context.Context, key Key, mode Mode) (*Handle[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := key.validate(); err != nil {
		return nil, err
	}
	s.mux.Lock()
	e, created, err := s.lookup(ctx, key, mode.Lookup)
	if err != nil {
		s.mux.Unlock()
		return nil, err
	}
	e.pins++
	if e.pins == 1 {
		s.pinned++
	}
	s.metrics.SetSize(s.index.Len(), s.pinned)
	s.mux.Unlock()

	if mode.Access == Shared {
		e.lock.RLock()
	} else {
		e.lock.Lock()
	}
	return &Handle[T]{store: s, entry: e, access: mode.Access, created: created}, nil
}

// lookup runs under the store mutex; Get marks the entry most recently used
func (s *Store[T]) lookup(ctx context.Context, key Key, lookup Lookup) (*entry[T], bool, error) {
	if !key.IsNew() {
		if e, ok := s.index.Get(key); ok {
			s.metrics.RecordHit()
			return e, false, nil
		}
		s.metrics.RecordMiss()
	}
	if lookup == ExistingOnly {
		return nil, false, fmt.Errorf("%w: %v", ErrNotFound, key)
	}
	sessionID := key.SessionID
	if key.IsNew() {
		sessionID = ""
	}
	instance, err := s.factory(ctx, key.TenantID, sessionID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create session %v: %w", key, err)
	}
	actual := Key{TenantID: key.TenantID, SessionID: instance.ID()}
	if actual.SessionID == "" || actual.IsNew() {
		return nil, false, fmt.Errorf("%w: factory returned id %q", ErrInvalidKey, actual.SessionID)
	}
	if s.index.Contains(actual) {
		return nil, false, fmt.Errorf("session %v already exists", actual)
	}
	s.makeRoom()
	e := &entry[T]{key: actual, instance: instance}
	s.index.Add(actual, e)
	s.metrics.RecordCreated()
	s.logger.Debug("session created", zap.String("tenant", actual.TenantID), zap.String("session", actual.SessionID))
	return e, true, nil
}

// makeRoom evicts unpinned entries until one more fits; when every entry is
// pinned the index grows past capacity and release trims it back.
func (s *Store[T]) makeRoom() {
	for s.index.Len() >= s.capacity {
		if !s.evictOne() {
			break
		}
	}
	if s.index.Len() >= s.capacity {
		s.index.Resize(s.index.Len() + 1)
	}
}

func (s *Store[T]) trim() {
	for s.index.Len() > s.capacity {
		if !s.evictOne() {
			break
		}
	}
	size := s.capacity
	if s.index.Len() > size {
		size = s.index.Len()
	}
	s.index.Resize(size)
}

func (s *Store[T]) evictOne() bool {
	victim, ok := s.policy.Victim(s.index.Keys(), s.isPinned)
	if !ok || s.isPinned(victim) {
		return false
	}
	return s.index.Remove(victim)
}

func (s *Store[T]) isPinned(key Key) bool {
	e, ok := s.index.Peek(key)
	return ok && e.pins > 0
}

// evicted is the index eviction callback
func (s *Store[T]) evicted(key Key, e *entry[T]) {
	s.metrics.RecordEviction()
	s.logger.Debug("session evicted", zap.String("tenant", key.TenantID), zap.String("session", key.SessionID))
	for _, fn := range s.onEvict {
		fn(key, e.instance)
	}
}

func (s *Store[T]) release(h *Handle[T]) {
	if h.access == Shared {
		h.entry.lock.RUnlock()
	} else {
		h.entry.lock.Unlock()
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	h.entry.pins--
	if h.entry.pins == 0 {
		s.pinned--
	}
	s.trim()
	s.metrics.SetSize(s.index.Len(), s.pinned)
}

// Contains reports whether key is held, without touching recency
func (s *Store[T]) Contains(key Key) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.index.Contains(key)
}

// Keys returns held keys from least to most recently used
func (s *Store[T]) Keys() []Key {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.index.Keys()
}

// Len returns the number of held sessions
func (s *Store[T]) Len() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.index.Len()
}

// Capacity returns the configured capacity
func (s *Store[T]) Capacity() int {
	return s.capacity
}

// New creates a store holding at most capacity unpinned sessions
func New[T Instance](capacity int, factory Factory[T], options ...Option[T]) (*Store[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("invalid session store capacity: %d", capacity)
	}
	if factory == nil {
		return nil, fmt.Errorf("session factory was nil")
	}
	ret := &Store[T]{
		capacity: capacity,
		factory:  factory,
		policy:   LRU,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		opt(ret)
	}
	index, err := simplelru.NewLRU[Key, *entry[T]](capacity, ret.evicted)
	if err != nil {
		return nil, err
	}
	ret.index = index
	return ret, nil
}
