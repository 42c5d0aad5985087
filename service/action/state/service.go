// Package state provides actions that write session state: set copies its
// parameters into the state and append extends a list held under a key.
package state

import (
	"context"
	"fmt"
	"reflect"

	"github.com/viant/waypoint/model/types"
)

// Name of the service as used by workflows.
const Name = "state"

type Service struct{}

// AppendInput extends Into (usually ${key}) with Values and stores it under Key
type AppendInput struct {
	Key    string        `json:"key"`
	Values []interface{} `json:"values,omitempty"`
	Into   []interface{} `json:"into,omitempty"`
}

// New creates a state service
func New() *Service {
	return &Service{}
}

func (s *Service) Name() string {
	return Name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "set",
			Description: "Writes every parameter into the session state.",
		},
		{
			Name:        "append",
			Description: "Appends values to a list stored under key.",
			Input:       reflect.TypeOf(&AppendInput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch name {
	case "set":
		return s.set, nil
	case "append":
		return s.append, nil
	}
	return nil, types.NewMethodNotFoundError(name)
}

func (s *Service) set(_ context.Context, in, out interface{}) error {
	input, ok := in.(map[string]interface{})
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(map[string]interface{})
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	for k, v := range input {
		output[k] = v
	}
	return nil
}

func (s *Service) append(_ context.Context, in, out interface{}) error {
	input, ok := in.(*AppendInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(map[string]interface{})
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	if input.Key == "" {
		return fmt.Errorf("append: key was empty")
	}
	values := make([]interface{}, 0, len(input.Into)+len(input.Values))
	values = append(values, input.Into...)
	values = append(values, input.Values...)
	output[input.Key] = values
	return nil
}
