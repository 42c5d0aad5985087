package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/viant/structology/conv"
	"github.com/viant/waypoint/extension"
	"github.com/viant/waypoint/model/expander"
	"github.com/viant/waypoint/model/graph"
	"github.com/viant/waypoint/policy"
	"github.com/viant/waypoint/runtime/execution"
	"go.uber.org/zap"
)

// Listener is invoked once an action method completes successfully.
type Listener func(action *graph.Action, input, output interface{})

// Option is used to customise the executor instance.
type Option func(*Service)

// WithListener sets a callback invoked after every executed action
func WithListener(l Listener) Option {
	return func(s *Service) {
		s.listener = l
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPolicy restricts executable actions; a policy found in the call
// context takes precedence
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// Service executes workflow actions using registered action services
type Service struct {
	actions   *extension.Actions
	converter *conv.Converter
	validator *validator
	listener  Listener
	policy    *policy.Policy
	logger    *zap.Logger
}

var _ execution.Executor = (*Service)(nil)

// Execute validates inputs, runs the action method and returns state updates.
func (s *Service) Execute(ctx context.Context, action *graph.Action, state, inputs map[string]interface{}) (map[string]interface{}, error) {
	actionPolicy := s.policy
	if p := policy.FromContext(ctx); p != nil {
		actionPolicy = p
	}
	if err := actionPolicy.Check(action.Service + "." + action.Method); err != nil {
		return nil, err
	}
	if action.RequiresInput() {
		if err := s.validator.validate(action.Name, action.Input, inputs); err != nil {
			return nil, err
		}
	}

	actionService := s.actions.Lookup(action.Service)
	if actionService == nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceNotFound, action.Service)
	}
	if action.Method == "" {
		return nil, fmt.Errorf("%w: service %v has no method set", ErrMethodNotFound, action.Service)
	}
	method, err := actionService.Method(action.Method)
	if err != nil {
		return nil, fmt.Errorf("%w: %v.%v: %v", ErrMethodNotFound, action.Service, action.Method, err)
	}
	signature := actionService.Methods().Lookup(action.Method)
	if signature == nil {
		return nil, fmt.Errorf("%w: %v.%v", ErrMethodNotFound, action.Service, action.Method)
	}

	data := make(map[string]interface{}, len(state)+len(inputs))
	for k, v := range state {
		data[k] = v
	}
	for k, v := range inputs {
		data[k] = v
	}

	var params map[string]interface{}
	if len(action.With) > 0 {
		expanded, err := expander.Expand(action.With, data)
		if err != nil {
			return nil, fmt.Errorf("failed to expand parameters of %v: %w", action.Name, err)
		}
		params, _ = expanded.(map[string]interface{})
	} else {
		params = inputs
	}

	input, err := s.typedValue(signature.Input, params)
	if err != nil {
		return nil, fmt.Errorf("failed to convert input of %v: %w", action.Name, err)
	}
	output, err := s.typedValue(signature.Output, nil)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("executing action",
		zap.String("action", action.Name),
		zap.String("service", action.Service),
		zap.String("method", action.Method))
	if err = method(ctx, input, output); err != nil {
		return nil, err
	}
	if s.listener != nil {
		s.listener(action, input, output)
	}
	return asMap(output)
}

// typedValue converts value to aType; a nil type yields a plain map
func (s *Service) typedValue(aType reflect.Type, value map[string]interface{}) (interface{}, error) {
	if aType == nil {
		ret := make(map[string]interface{}, len(value))
		for k, v := range value {
			ret[k] = v
		}
		return ret, nil
	}
	if aType.Kind() == reflect.Ptr {
		aType = aType.Elem()
	}
	instance := reflect.New(aType).Interface()
	if value == nil {
		return instance, nil
	}
	if err := s.converter.Convert(value, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

func asMap(output interface{}) (map[string]interface{}, error) {
	switch actual := output.(type) {
	case nil:
		return nil, nil
	case map[string]interface{}:
		return actual, nil
	case *map[string]interface{}:
		return *actual, nil
	}
	data, err := json.Marshal(output)
	if err != nil {
		return nil, fmt.Errorf("failed to encode output %T: %w", output, err)
	}
	ret := map[string]interface{}{}
	if err = json.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("output %T is not an object: %w", output, err)
	}
	return ret, nil
}

// New creates a new executor service instance.
func New(actions *extension.Actions, opts ...Option) *Service {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	options.AccessUnexported = true

	s := &Service{
		actions:   actions,
		converter: conv.NewConverter(options),
		validator: newValidator(),
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}
