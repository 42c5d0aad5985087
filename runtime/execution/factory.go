package execution

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/waypoint/internal/clock"
	"github.com/viant/waypoint/internal/idgen"
	"github.com/viant/waypoint/model"
	"github.com/viant/waypoint/service/dao"
	"github.com/viant/waypoint/service/dao/store"
	"go.uber.org/zap"
)

// Factory instantiates workflow instances
type Factory struct {
	workflow *model.Workflow
	executor Executor
	state    map[string]interface{}
	steps    dao.Service[string, Step]
	logger   *zap.Logger
}

// New creates an instance positioned at the workflow entrypoint. An empty
// sessionID allocates a fresh identity.
func (f *Factory) New(_ context.Context, tenantID, sessionID string) (*Instance, error) {
	if sessionID == "" {
		sessionID = idgen.New()
	}
	now := clock.Now()
	return &Instance{
		id:        sessionID,
		tenantID:  tenantID,
		workflow:  f.workflow,
		executor:  f.executor,
		session:   NewSession(sessionID, f.state),
		steps:     f.stepStore(),
		logger:    f.logger,
		pending:   f.workflow.Entrypoint,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func (f *Factory) stepStore() dao.Service[string, Step] {
	if f.steps != nil {
		return f.steps
	}
	return store.NewMemoryStore[string, Step](func(s *Step) string { return s.ID })
}

// IsInvalidInput reports whether err is an input validation failure
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// NewFactory validates the workflow and returns an instance factory
func NewFactory(workflow *model.Workflow, executor Executor, options ...Option) (*Factory, error) {
	if workflow == nil {
		return nil, fmt.Errorf("workflow was nil")
	}
	if executor == nil {
		return nil, fmt.Errorf("executor was nil")
	}
	if issues := workflow.Validate(); len(issues) > 0 {
		return nil, fmt.Errorf("invalid workflow %s: %w", workflow.Name, errors.Join(issues...))
	}
	ret := &Factory{workflow: workflow, executor: executor, state: map[string]interface{}{}, logger: zap.NewNop()}
	for _, opt := range options {
		opt(ret)
	}
	return ret, nil
}
