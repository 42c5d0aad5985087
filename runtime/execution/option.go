package execution

import (
	"github.com/viant/waypoint/service/dao"
	"go.uber.org/zap"
)

type Option func(f *Factory)

// WithState sets the initial state of every created instance
func WithState(state map[string]interface{}) Option {
	return func(f *Factory) {
		for k, v := range state {
			f.state[k] = v
		}
	}
}

// WithStepDAO sets a shared step history store
func WithStepDAO(steps dao.Service[string, Step]) Option {
	return func(f *Factory) {
		f.steps = steps
	}
}

// WithLogger sets the logger used for step history failures
func WithLogger(logger *zap.Logger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}
