package execution

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/viant/waypoint/internal/clock"
	"github.com/viant/waypoint/model"
	"github.com/viant/waypoint/model/graph"
	"github.com/viant/waypoint/service/dao"
	"go.uber.org/zap"
)

// Executor runs a single action against the session state and caller inputs
// and returns the values to merge into the state.
type Executor interface {
	Execute(ctx context.Context, action *graph.Action, state, inputs map[string]interface{}) (map[string]interface{}, error)
}

// Instance is a running workflow bound to one session identity
type Instance struct {
	id        string
	tenantID  string
	workflow  *model.Workflow
	executor  Executor
	session   *Session
	steps     dao.Service[string, Step]
	logger    *zap.Logger
	pending   string
	last      string
	sequence  int
	err       error
	createdAt time.Time
	updatedAt time.Time
	mu        sync.RWMutex
}

func (i *Instance) ID() string { return i.id }

func (i *Instance) TenantID() string { return i.tenantID }

// Workflow returns the workflow definition
func (i *Instance) Workflow() *model.Workflow { return i.workflow }

// PendingAction returns the action the next step executes, "" when the
// instance has completed.
func (i *Instance) PendingAction() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.pending
}

// LastAction returns the most recently completed action
func (i *Instance) LastAction() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.last
}

// Sequence returns the number of completed steps
func (i *Instance) Sequence() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.sequence
}

// Err returns the failure of the last step, nil after a successful step
func (i *Instance) Err() error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.err
}

// State returns a copy of the instance state
func (i *Instance) State() map[string]interface{} {
	return i.session.GetAll()
}

func (i *Instance) UpdatedAt() time.Time {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.updatedAt
}

func (i *Instance) CreatedAt() time.Time { return i.createdAt }

// Step executes the pending action with inputs and moves to the next action.
// It returns the name of the executed action. Input validation failures
// wrap ErrInvalidInput and leave the instance untouched; any other failure
// is recorded as the instance error and the position is kept.
func (i *Instance) Step(ctx context.Context, inputs map[string]interface{}) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.pending == "" {
		return "", ErrCompleted
	}
	name := i.pending
	action := i.workflow.Action(name)
	if action == nil {
		i.err = fmt.Errorf("%w: %s", ErrUnknownAction, name)
		return name, i.err
	}

	step := NewStep(i.id, i.sequence+1, name, inputs)
	output, err := i.executor.Execute(ctx, action, i.session.GetAll(), inputs)
	if err != nil {
		if IsInvalidInput(err) {
			return name, err
		}
		step.Fail(err)
		i.err = fmt.Errorf("action %s failed: %w", name, err)
		i.updatedAt = clock.Now()
		i.saveStep(ctx, step)
		return name, i.err
	}

	i.session.Merge(output)
	next := i.workflow.Next(name, i.session.GetAll())
	step.Complete(output, next)
	i.sequence++
	i.last = name
	i.pending = next
	i.err = nil
	i.updatedAt = clock.Now()
	i.saveStep(ctx, step)
	return name, nil
}

// saveStep records step history; the outcome of the step does not depend on it
func (i *Instance) saveStep(ctx context.Context, step *Step) {
	if err := i.steps.Save(ctx, step); err != nil {
		i.logger.Warn("failed to save step",
			zap.String("session", i.id),
			zap.String("step", step.ID),
			zap.Error(err))
	}
}

// Steps returns the recorded step history ordered by start time
func (i *Instance) Steps(ctx context.Context) ([]*Step, error) {
	steps, err := i.steps.List(ctx, dao.NewParameter("InstanceID", i.id))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(steps, func(a, b int) bool {
		if steps[a].Sequence == steps[b].Sequence {
			return steps[a].StartedAt.Before(steps[b].StartedAt)
		}
		return steps[a].Sequence < steps[b].Sequence
	})
	return steps, nil
}
