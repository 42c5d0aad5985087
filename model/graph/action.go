package graph

import (
	"fmt"
	"reflect"
)

type (
	// Action is a named node of the workflow graph.
	Action struct {
		Name    string                 `json:"name" yaml:"name"`
		Service string                 `json:"service,omitempty" yaml:"service,omitempty"`
		Method  string                 `json:"method,omitempty" yaml:"method,omitempty"`
		// With holds static method parameters; ${...} references are expanded
		// against the session state merged with the caller inputs.
		With map[string]interface{} `json:"with,omitempty" yaml:"with,omitempty"`
		// Input is a JSON schema the caller inputs must satisfy.
		Input map[string]interface{} `json:"input,omitempty" yaml:"input,omitempty"`
	}

	// Transition moves the workflow from one action to another when the
	// optional condition holds.
	Transition struct {
		From string     `json:"from" yaml:"from"`
		To   string     `json:"to" yaml:"to"`
		When *Condition `json:"when,omitempty" yaml:"when,omitempty"`
	}

	// Condition is a predicate over a single state key. With neither Empty
	// nor Equals set the key must hold a non-empty value.
	Condition struct {
		Key    string      `json:"key" yaml:"key"`
		Empty  *bool       `json:"empty,omitempty" yaml:"empty,omitempty"`
		Equals interface{} `json:"equals,omitempty" yaml:"equals,omitempty"`
	}
)

// WithParameter sets a static method parameter
func (a *Action) WithParameter(name string, value interface{}) *Action {
	if a.With == nil {
		a.With = make(map[string]interface{})
	}
	a.With[name] = value
	return a
}

// WithInputSchema sets the JSON schema of expected caller inputs
func (a *Action) WithInputSchema(schema map[string]interface{}) *Action {
	a.Input = schema
	return a
}

// RequiresInput reports whether the action declares an input schema
func (a *Action) RequiresInput() bool {
	return len(a.Input) > 0
}

// Match returns true when the transition applies to the supplied state
func (t *Transition) Match(state map[string]interface{}) bool {
	if t.When == nil {
		return true
	}
	return t.When.Match(state)
}

// Match evaluates the condition against state
func (c *Condition) Match(state map[string]interface{}) bool {
	value := state[c.Key]
	if c.Equals != nil {
		return value != nil && fmt.Sprint(value) == fmt.Sprint(c.Equals)
	}
	empty := isEmpty(value)
	if c.Empty != nil {
		return empty == *c.Empty
	}
	return !empty
}

func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	}
	return false
}
