package execution

import (
	"time"

	"github.com/viant/waypoint/internal/clock"
	"github.com/viant/waypoint/internal/idgen"
)

// StepState represents the outcome of a step
type StepState string

const (
	StepStateRunning   StepState = "running"
	StepStateCompleted StepState = "completed"
	StepStateFailed    StepState = "failed"
)

// Step records a single action execution
type Step struct {
	ID          string                 `json:"id"`
	InstanceID  string                 `json:"instanceId"`
	Sequence    int                    `json:"sequence"`
	Action      string                 `json:"action"`
	State       StepState              `json:"state"`
	Input       map[string]interface{} `json:"input,omitempty"`
	Output      map[string]interface{} `json:"output,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Next        string                 `json:"next,omitempty"`
	StartedAt   time.Time              `json:"startedAt"`
	CompletedAt *time.Time             `json:"completedAt,omitempty"`
}

// Complete marks the step as completed
func (s *Step) Complete(output map[string]interface{}, next string) {
	now := clock.Now()
	s.CompletedAt = &now
	s.Output = output
	s.Next = next
	s.State = StepStateCompleted
}

// Fail marks the step as failed
func (s *Step) Fail(err error) {
	now := clock.Now()
	s.CompletedAt = &now
	if err != nil {
		s.Error = err.Error()
	}
	s.State = StepStateFailed
}

// NewStep creates a running step
func NewStep(instanceID string, sequence int, action string, input map[string]interface{}) *Step {
	return &Step{
		ID:         idgen.Step(instanceID),
		InstanceID: instanceID,
		Sequence:   sequence,
		Action:     action,
		State:      StepStateRunning,
		Input:      input,
		StartedAt:  clock.Now(),
	}
}
