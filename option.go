package waypoint

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/waypoint/model"
	"github.com/viant/waypoint/model/types"
	"github.com/viant/waypoint/runtime/execution"
	"github.com/viant/waypoint/service/dao"
	"github.com/viant/waypoint/service/event"
	"github.com/viant/waypoint/service/meta"
	"github.com/viant/waypoint/service/session"
	"github.com/viant/waypoint/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// Option configures the Service
type Option func(s *Service)

// WithConfig sets the configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithWorkflow sets a programmatically built workflow
func WithWorkflow(workflow *model.Workflow) Option {
	return func(s *Service) {
		s.workflow = workflow
	}
}

// WithWorkflowURL sets the workflow location; it overrides config workflow.url
func WithWorkflowURL(URL string) Option {
	return func(s *Service) {
		s.workflowURL = URL
	}
}

// WithMetaService sets the meta service used to load the workflow
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) {
		s.metaService = service
	}
}

// WithExtensionServices registers additional action services
func WithExtensionServices(services ...types.Service) Option {
	return func(s *Service) {
		s.extensionServices = append(s.extensionServices, services...)
	}
}

// WithInitialState seeds the state of every new session
func WithInitialState(state map[string]interface{}) Option {
	return func(s *Service) {
		s.initialState = state
	}
}

// WithStepDAO sets the step history store shared by all sessions
func WithStepDAO(steps dao.Service[string, execution.Step]) Option {
	return func(s *Service) {
		s.stepDAO = steps
	}
}

// WithSessionPolicy overrides the session eviction policy
func WithSessionPolicy(policy session.Policy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

// WithEventService sets the lifecycle event service
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.events = service
	}
}

// WithLogger sets the logger; by default one is built from config
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRegistry sets the Prometheus registry metrics are registered with
func WithRegistry(registry *prometheus.Registry) Option {
	return func(s *Service) {
		s.registry = registry
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
