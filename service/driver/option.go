package driver

import (
	"github.com/viant/waypoint/service/metrics"
	"go.uber.org/zap"
)

type Option func(s *Service)

// WithMaxSteps limits the number of actions executed by one advance
func WithMaxSteps(maxSteps int) Option {
	return func(s *Service) {
		if maxSteps > 0 {
			s.maxSteps = maxSteps
		}
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
