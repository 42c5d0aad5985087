package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/waypoint/internal/clock"
	"github.com/viant/waypoint/runtime/execution"
	"github.com/viant/waypoint/service/metrics"
	"github.com/viant/waypoint/tracing"
	"go.uber.org/zap"
)

// DefaultMaxSteps bounds a single advance
const DefaultMaxSteps = 1000

// ErrStepLimit is reported when an advance executes more than the allowed number of actions
var ErrStepLimit = errors.New("step limit exceeded")

// Instance is the engine view the driver needs
type Instance interface {
	ID() string
	TenantID() string
	// PendingAction returns the next action to execute or "" once terminated
	PendingAction() string
	// Step executes the pending action and returns its name
	Step(ctx context.Context, inputs map[string]interface{}) (string, error)
	State() map[string]interface{}
	// Err returns the last non-recoverable failure
	Err() error
}

var _ Instance = (*execution.Instance)(nil)

// Service drives instances to checkpoints
type Service struct {
	maxSteps int
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// Advance supplies inputs to the instance and executes pending actions until
// a checkpoint, termination or failure. Invalid inputs are returned as an
// error without changing the instance; other action failures are reported as
// a failed result.
func (s *Service) Advance(ctx context.Context, instance Instance, checkpoints *Checkpoints, inputs map[string]interface{}) (result *Result, err error) {
	started := clock.Now()
	ctx, span := tracing.StartSpan(ctx, "session.advance", "INTERNAL")
	span.WithAttributes(map[string]string{
		"session.id": instance.ID(),
		"tenant.id":  instance.TenantID(),
	})
	defer func() {
		kind := "error"
		if result != nil {
			kind = result.Kind.String()
			span.WithAttribute("advance.kind", kind).WithAttribute("advance.action", result.Action)
		}
		s.metrics.RecordAdvance(kind, clock.Since(started))
		tracing.EndSpan(span, err)
	}()

	pending := instance.PendingAction()
	if pending == "" {
		return Terminal(), nil
	}
	if checkpoints.IsBefore(pending) && len(inputs) == 0 {
		return Before(pending), nil
	}
	for steps := 0; ; steps++ {
		if steps >= s.maxSteps {
			return Failed(pending, fmt.Errorf("%w: %d", ErrStepLimit, s.maxSteps)), nil
		}
		executed, stepErr := instance.Step(ctx, inputs)
		inputs = nil
		if stepErr != nil {
			if execution.IsInvalidInput(stepErr) {
				return nil, stepErr
			}
			s.logger.Warn("action failed",
				zap.String("session", instance.ID()),
				zap.String("action", executed),
				zap.Error(stepErr))
			return Failed(executed, stepErr), nil
		}
		s.metrics.RecordStep(executed)
		s.logger.Debug("action executed", zap.String("session", instance.ID()), zap.String("action", executed))
		if checkpoints.IsAfter(executed) {
			return After(executed), nil
		}
		if pending = instance.PendingAction(); pending == "" {
			return Terminal(), nil
		}
		if checkpoints.IsBefore(pending) {
			return Before(pending), nil
		}
	}
}

// Current derives the result from the instance's last known position
func (s *Service) Current(instance Instance) *Result {
	pending := instance.PendingAction()
	if err := instance.Err(); err != nil {
		return Failed(pending, err)
	}
	if pending == "" {
		return Terminal()
	}
	return Before(pending)
}

// New creates a driver
func New(opts ...Option) *Service {
	s := &Service{maxSteps: DefaultMaxSteps, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
