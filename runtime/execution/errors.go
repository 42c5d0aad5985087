package execution

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput is returned when caller inputs do not satisfy the
	// paused action's input schema. The instance position is unchanged.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCompleted is returned when stepping an instance with no pending action.
	ErrCompleted = errors.New("instance completed")

	// ErrUnknownAction indicates the pending action is not defined by the workflow.
	ErrUnknownAction = errors.New("unknown action")
)

// FieldError describes a single input violation
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field level detail for ErrInvalidInput
type ValidationError struct {
	Action string       `json:"action"`
	Fields []FieldError `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%v: action %s", ErrInvalidInput, e.Action)
	}
	var parts []string
	for _, field := range e.Fields {
		parts = append(parts, field.Field+": "+field.Message)
	}
	return fmt.Sprintf("%v: action %s: %s", ErrInvalidInput, e.Action, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
