package session

import (
	"github.com/viant/waypoint/service/metrics"
	"go.uber.org/zap"
)

type Option[T Instance] func(s *Store[T])

// WithPolicy overrides the eviction policy
func WithPolicy[T Instance](policy Policy) Option[T] {
	return func(s *Store[T]) {
		if policy != nil {
			s.policy = policy
		}
	}
}

// WithLogger sets the logger
func WithLogger[T Instance](logger *zap.Logger) Option[T] {
	return func(s *Store[T]) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics[T Instance](m *metrics.Metrics) Option[T] {
	return func(s *Store[T]) {
		s.metrics = m
	}
}

// WithEvictionListener registers a callback invoked after an entry is
// evicted. It runs under the store mutex and must not call back into the store.
func WithEvictionListener[T Instance](fn func(key Key, instance T)) Option[T] {
	return func(s *Store[T]) {
		s.onEvict = append(s.onEvict, fn)
	}
}
