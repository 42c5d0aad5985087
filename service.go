package waypoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/waypoint/extension"
	"github.com/viant/waypoint/internal/clock"
	"github.com/viant/waypoint/internal/logging"
	"github.com/viant/waypoint/model"
	"github.com/viant/waypoint/model/types"
	"github.com/viant/waypoint/runtime/execution"
	"github.com/viant/waypoint/service/action/nop"
	"github.com/viant/waypoint/service/action/state"
	"github.com/viant/waypoint/service/dao"
	stepfs "github.com/viant/waypoint/service/dao/step/fs"
	"github.com/viant/waypoint/service/dao/workflow"
	"github.com/viant/waypoint/service/driver"
	"github.com/viant/waypoint/service/event"
	"github.com/viant/waypoint/service/executor"
	"github.com/viant/waypoint/service/meta"
	"github.com/viant/waypoint/service/metrics"
	"github.com/viant/waypoint/service/projector"
	"github.com/viant/waypoint/service/session"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for sessions that do not exist or were evicted
var ErrSessionNotFound = session.ErrNotFound

// ErrInvalidInput is returned when inputs do not match the paused action
var ErrInvalidInput = execution.ErrInvalidInput

// Service is the session façade
type Service struct {
	config            *Config
	workflow          *model.Workflow
	workflowURL       string
	metaService       *meta.Service
	extensionServices []types.Service
	initialState      map[string]interface{}
	stepDAO           dao.Service[string, execution.Step]
	policy            session.Policy
	logger            *zap.Logger
	registry          *prometheus.Registry
	events            *event.Service

	actions     *extension.Actions
	executor    *executor.Service
	metrics     *metrics.Metrics
	sessions    *session.Store[*execution.Instance]
	driver      *driver.Service
	projector   *projector.Service
	checkpoints *driver.Checkpoints
	publisher   *event.Publisher[*projector.View]
}

// Create allocates a new session and returns its identity without advancing it
func (s *Service) Create(ctx context.Context, tenantID string) (string, error) {
	handle, err := s.sessions.Acquire(ctx, session.Key{TenantID: tenantID, SessionID: session.NewSessionID}, session.ModeStart)
	if err != nil {
		return "", err
	}
	defer handle.Release()
	s.publish(ctx, handle.Key(), event.TypeCreated, nil, 0, nil)
	return handle.Key().SessionID, nil
}

// Start advances the session with initial inputs, creating it when missing.
// sessionID may be session.NewSessionID to allocate a new identity.
func (s *Service) Start(ctx context.Context, tenantID, sessionID string, inputs map[string]interface{}) (*projector.View, error) {
	return s.advance(ctx, session.Key{TenantID: tenantID, SessionID: sessionID}, session.ModeStart, inputs)
}

// Submit advances an existing session with inputs
func (s *Service) Submit(ctx context.Context, tenantID, sessionID string, inputs map[string]interface{}) (*projector.View, error) {
	return s.advance(ctx, session.Key{TenantID: tenantID, SessionID: sessionID}, session.ModeAdvance, inputs)
}

// Inspect returns the view of an existing session without advancing it
func (s *Service) Inspect(ctx context.Context, tenantID, sessionID string) (*projector.View, error) {
	handle, err := s.sessions.Acquire(ctx, session.Key{TenantID: tenantID, SessionID: sessionID}, session.ModeInspect)
	if err != nil {
		return nil, err
	}
	defer handle.Release()
	instance := handle.Instance()
	return s.projector.Project(instance, s.driver.Current(instance)), nil
}

// Steps returns the executed step history of an existing session
func (s *Service) Steps(ctx context.Context, tenantID, sessionID string) ([]*execution.Step, error) {
	handle, err := s.sessions.Acquire(ctx, session.Key{TenantID: tenantID, SessionID: sessionID}, session.ModeInspect)
	if err != nil {
		return nil, err
	}
	defer handle.Release()
	return handle.Instance().Steps(ctx)
}

func (s *Service) advance(ctx context.Context, key session.Key, mode session.Mode, inputs map[string]interface{}) (*projector.View, error) {
	handle, err := s.sessions.Acquire(ctx, key, mode)
	if err != nil {
		return nil, err
	}
	defer handle.Release()
	if handle.Created() {
		s.publish(ctx, handle.Key(), event.TypeCreated, nil, 0, nil)
	}
	instance := handle.Instance()
	started := clock.Now()
	result, err := s.driver.Advance(ctx, instance, s.checkpoints, inputs)
	if err != nil {
		return nil, err
	}
	view := s.projector.Project(instance, result)
	s.publish(ctx, handle.Key(), event.TypeAdvanced, result, clock.Since(started), view)
	return view, nil
}

func (s *Service) publish(ctx context.Context, key session.Key, eventType event.Type, result *driver.Result, elapsed time.Duration, view *projector.View) {
	eventContext := &event.Context{
		TenantID:    key.TenantID,
		SessionID:   key.SessionID,
		EventType:   eventType,
		TimeTakenMs: int(elapsed.Milliseconds()),
	}
	if result != nil {
		eventContext.Action = result.Action
		eventContext.Outcome = result.Kind.String()
	}
	if err := s.publisher.Publish(ctx, event.NewEvent(eventContext, view)); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", string(eventType)), zap.Error(err))
	}
}

func (s *Service) evicted(key session.Key, _ *execution.Instance) {
	s.publish(context.Background(), key, event.TypeEvicted, nil, 0, nil)
}

// Config returns the effective configuration
func (s *Service) Config() *Config { return s.config }

// Workflow returns the driven workflow
func (s *Service) Workflow() *model.Workflow { return s.workflow }

// Checkpoints returns the effective checkpoints
func (s *Service) Checkpoints() *driver.Checkpoints { return s.checkpoints }

// Registry returns the Prometheus registry holding service metrics
func (s *Service) Registry() *prometheus.Registry { return s.registry }

// Events returns the lifecycle event service
func (s *Service) Events() *event.Service { return s.events }

// Logger returns the service logger
func (s *Service) Logger() *zap.Logger { return s.logger }

// Metrics returns the service metrics
func (s *Service) Metrics() *metrics.Metrics { return s.metrics }

// Close stops event listeners and flushes the logger
func (s *Service) Close() error {
	s.events.Close()
	_ = s.logger.Sync()
	return nil
}

func (s *Service) init(ctx context.Context) error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	s.config.Checkpoints.Init()
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if s.logger == nil {
		logger, err := logging.New(&s.config.Logging)
		if err != nil {
			return err
		}
		s.logger = logger
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = metrics.New(s.registry)
	if s.events == nil {
		s.events = event.New()
	}
	s.publisher = event.PublisherOf[*projector.View](s.events)

	if s.workflow == nil {
		if err := s.loadWorkflow(ctx); err != nil {
			return err
		}
	}

	s.actions = extension.NewActions(nop.New(), state.New())
	for _, service := range s.extensionServices {
		s.actions.Register(service)
	}
	s.executor = executor.New(s.actions, executor.WithLogger(s.logger), executor.WithPolicy(&s.config.Policy))

	if s.stepDAO == nil && s.config.Workflow.StepsURL != "" {
		steps, err := stepfs.New(s.config.Workflow.StepsURL, s.logger)
		if err != nil {
			return err
		}
		s.stepDAO = steps
	}
	factoryOptions := []execution.Option{execution.WithLogger(s.logger)}
	if s.initialState != nil {
		factoryOptions = append(factoryOptions, execution.WithState(s.initialState))
	}
	if s.stepDAO != nil {
		factoryOptions = append(factoryOptions, execution.WithStepDAO(s.stepDAO))
	}
	factory, err := execution.NewFactory(s.workflow, s.executor, factoryOptions...)
	if err != nil {
		return err
	}

	storeOptions := []session.Option[*execution.Instance]{
		session.WithLogger[*execution.Instance](s.logger),
		session.WithMetrics[*execution.Instance](s.metrics),
		session.WithEvictionListener[*execution.Instance](s.evicted),
	}
	if s.policy != nil {
		storeOptions = append(storeOptions, session.WithPolicy[*execution.Instance](s.policy))
	}
	if s.sessions, err = session.New[*execution.Instance](s.config.Session.Capacity, factory.New, storeOptions...); err != nil {
		return err
	}

	s.driver = driver.New(
		driver.WithMaxSteps(s.config.Driver.MaxSteps),
		driver.WithMetrics(s.metrics),
		driver.WithLogger(s.logger),
	)
	s.checkpoints = &s.config.Checkpoints
	s.projector = projector.New(s.checkpoints, s.config.Projection.Fields...)
	s.warnUnknownCheckpoints()
	return nil
}

func (s *Service) loadWorkflow(ctx context.Context) error {
	URL := s.workflowURL
	if URL == "" {
		URL = s.config.Workflow.URL
	}
	if URL == "" {
		return errors.New("workflow was not specified")
	}
	if s.metaService == nil {
		s.metaService = meta.New(nil, "")
	}
	workflowService := workflow.New(workflow.WithMetaService(s.metaService))
	var err error
	s.workflow, err = workflowService.Load(ctx, URL)
	return err
}

func (s *Service) warnUnknownCheckpoints() {
	for _, name := range s.checkpoints.Names() {
		if s.workflow.Action(name) == nil {
			s.logger.Warn("checkpoint does not match any workflow action", zap.String("checkpoint", name), zap.String("workflow", s.workflow.Name))
		}
	}
}

// New creates a session façade
func New(ctx context.Context, options ...Option) (*Service, error) {
	ret := &Service{}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(ctx); err != nil {
		return nil, err
	}
	return ret, nil
}
