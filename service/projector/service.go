package projector

import (
	"reflect"

	"github.com/viant/waypoint/service/driver"
)

// Instance is the read side of a session instance
type Instance interface {
	ID() string
	TenantID() string
	State() map[string]interface{}
}

// sequencer is implemented by instances that count executed steps
type sequencer interface {
	Sequence() int
}

// pender is implemented by instances that expose their pending action
type pender interface {
	PendingAction() string
}

// Service projects instances into views
type Service struct {
	checkpoints *driver.Checkpoints
	fields      []FieldSpec
}

// Project builds a view of instance for result. It only reads the instance;
// all projected values are copies. With no configured fields the whole
// state is projected. A pause after the last action of a workflow projects
// as terminal.
func (s *Service) Project(instance Instance, result *driver.Result) *View {
	state := instance.State()
	view := &View{
		SessionID: instance.ID(),
		TenantID:  instance.TenantID(),
		Fields:    make(map[string]interface{}, len(s.fields)),
	}
	if len(s.fields) == 0 {
		for k, v := range state {
			view.Fields[k] = deepCopy(v)
		}
	}
	for i := range s.fields {
		field := &s.fields[i]
		value, ok := state[field.key()]
		if !ok || value == nil {
			value = field.Default
		}
		view.Fields[field.Name] = deepCopy(value)
	}
	if seq, ok := instance.(sequencer); ok {
		view.Sequence = seq.Sequence()
	}

	next := Classify(result, s.checkpoints)
	if result != nil && result.Kind == driver.KindAfter {
		if p, ok := instance.(pender); ok && p.PendingAction() == "" {
			next = Terminal()
		}
	}
	view.NextStep = next.Name()
	switch {
	case result != nil && result.Kind == driver.KindFailed:
		view.Status = StatusFailed
		if result.Err != nil {
			view.Error = result.Err.Error()
		}
	case next.IsPendingInput():
		view.Status = StatusAwaitingInput
	case next.IsTerminal():
		view.Status = StatusCompleted
	default:
		view.Status = StatusHalted
	}
	return view
}

// Fields returns configured field specs
func (s *Service) Fields() []FieldSpec {
	return s.fields
}

func deepCopy(value interface{}) interface{} {
	switch actual := value.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		result := make(map[string]interface{}, len(actual))
		for k, v := range actual {
			result[k] = deepCopy(v)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(actual))
		for i, v := range actual {
			result[i] = deepCopy(v)
		}
		return result
	}
	rValue := reflect.ValueOf(value)
	switch rValue.Kind() {
	case reflect.Slice:
		if rValue.IsNil() {
			return value
		}
		result := reflect.MakeSlice(rValue.Type(), rValue.Len(), rValue.Len())
		reflect.Copy(result, rValue)
		return result.Interface()
	case reflect.Map:
		if rValue.IsNil() {
			return value
		}
		result := reflect.MakeMapWithSize(rValue.Type(), rValue.Len())
		iter := rValue.MapRange()
		for iter.Next() {
			result.SetMapIndex(iter.Key(), iter.Value())
		}
		return result.Interface()
	}
	return value
}

// New creates a projector
func New(checkpoints *driver.Checkpoints, fields ...FieldSpec) *Service {
	if checkpoints == nil {
		checkpoints = &driver.Checkpoints{}
	}
	return &Service{checkpoints: checkpoints, fields: fields}
}
