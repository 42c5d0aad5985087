package projector

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/waypoint/service/driver"
)

type stateInstance struct {
	state    map[string]interface{}
	sequence int
}

func (s *stateInstance) ID() string                    { return "s1" }
func (s *stateInstance) TenantID() string              { return "t1" }
func (s *stateInstance) State() map[string]interface{} { return s.state }
func (s *stateInstance) Sequence() int                 { return s.sequence }

// pendingInstance reports its pending action; "" means the workflow ended
type pendingInstance struct {
	*stateInstance
	pending string
}

func (p *pendingInstance) PendingAction() string { return p.pending }

func TestService_Project(t *testing.T) {
	checkpoints := &driver.Checkpoints{PauseBefore: []string{"ask", "review"}, PauseAfter: []string{"final"}}
	checkpoints.Init()
	srv := New(checkpoints,
		FieldSpec{Name: "request", Key: "a"},
		FieldSpec{Name: "drafts", Default: []interface{}{}},
		FieldSpec{Name: "final"},
	)

	type testCase struct {
		name         string
		state        map[string]interface{}
		result       *driver.Result
		pending      *string
		expectNext   string
		expectStatus Status
		expectFields map[string]interface{}
		expectError  string
	}

	tests := []testCase{
		{
			name:         "awaiting input",
			state:        map[string]interface{}{"a": "x", "internal": 1},
			result:       driver.Before("ask"),
			expectNext:   "ask",
			expectStatus: StatusAwaitingInput,
			expectFields: map[string]interface{}{"request": "x", "drafts": []interface{}{}, "final": nil},
		},
		{
			name:         "terminal",
			state:        map[string]interface{}{"a": "x", "drafts": []interface{}{"d1"}, "final": "d1"},
			result:       driver.Terminal(),
			expectNext:   driver.Done,
			expectStatus: StatusCompleted,
			expectFields: map[string]interface{}{"request": "x", "drafts": []interface{}{"d1"}, "final": "d1"},
		},
		{
			name:         "pause after outside input set",
			state:        map[string]interface{}{},
			result:       driver.After("final"),
			expectNext:   driver.Done,
			expectStatus: StatusHalted,
			expectFields: map[string]interface{}{"request": nil, "drafts": []interface{}{}, "final": nil},
		},
		{
			name:         "pause after last action",
			state:        map[string]interface{}{"final": "d1"},
			result:       driver.After("final"),
			pending:      stringPtr(""),
			expectNext:   driver.Done,
			expectStatus: StatusCompleted,
			expectFields: map[string]interface{}{"request": nil, "drafts": []interface{}{}, "final": "d1"},
		},
		{
			name:         "pause after with pending action",
			state:        map[string]interface{}{},
			result:       driver.After("final"),
			pending:      stringPtr("review"),
			expectNext:   driver.Done,
			expectStatus: StatusHalted,
			expectFields: map[string]interface{}{"request": nil, "drafts": []interface{}{}, "final": nil},
		},
		{
			name:         "internal action is normalized",
			state:        map[string]interface{}{},
			result:       driver.Before("draft"),
			expectNext:   driver.Done,
			expectStatus: StatusHalted,
			expectFields: map[string]interface{}{"request": nil, "drafts": []interface{}{}, "final": nil},
		},
		{
			name:         "failed",
			state:        map[string]interface{}{},
			result:       driver.Failed("draft", errors.New("boom")),
			expectNext:   driver.Done,
			expectStatus: StatusFailed,
			expectError:  "boom",
			expectFields: map[string]interface{}{"request": nil, "drafts": []interface{}{}, "final": nil},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var instance Instance = &stateInstance{state: tc.state, sequence: 2}
			if tc.pending != nil {
				instance = &pendingInstance{stateInstance: &stateInstance{state: tc.state, sequence: 2}, pending: *tc.pending}
			}
			view := srv.Project(instance, tc.result)
			assert.Equal(t, "s1", view.SessionID)
			assert.Equal(t, "t1", view.TenantID)
			assert.Equal(t, tc.expectNext, view.NextStep)
			assert.Equal(t, tc.expectStatus, view.Status)
			assert.Equal(t, tc.expectError, view.Error)
			assert.Equal(t, tc.expectFields, view.Fields)
			assert.Equal(t, 2, view.Sequence)
			assert.Contains(t, append(checkpoints.Names(), driver.Done), view.NextStep)
		})
	}
}

func TestService_Project_Idempotent(t *testing.T) {
	instance := &stateInstance{state: map[string]interface{}{
		"a":      "x",
		"drafts": []interface{}{"d1", map[string]interface{}{"z": 1, "a": 2}},
	}}
	srv := New(&driver.Checkpoints{PauseBefore: []string{"review"}})

	first, err := json.Marshal(srv.Project(instance, driver.Before("review")))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		next, err := json.Marshal(srv.Project(instance, driver.Before("review")))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(next))
	}
}

func TestService_Project_Copies(t *testing.T) {
	drafts := []interface{}{"d1"}
	tags := []string{"a"}
	instance := &stateInstance{state: map[string]interface{}{"drafts": drafts, "tags": tags}}
	view := New(nil).Project(instance, driver.Terminal())

	view.Fields["drafts"].([]interface{})[0] = "changed"
	view.Fields["tags"].([]string)[0] = "changed"
	assert.Equal(t, "d1", drafts[0])
	assert.Equal(t, "a", tags[0])
}

func TestClassify(t *testing.T) {
	checkpoints := &driver.Checkpoints{PauseBefore: []string{"ask"}, PauseAfter: []string{"final"}, Input: []string{"ask", "final"}}

	type testCase struct {
		name     string
		result   *driver.Result
		expected NextStep
	}
	tests := []testCase{
		{name: "before input", result: driver.Before("ask"), expected: PendingInput("ask")},
		{name: "after input", result: driver.After("final"), expected: PendingInput("final")},
		{name: "terminal", result: driver.Terminal(), expected: Terminal()},
		{name: "failed", result: driver.Failed("ask", errors.New("x")), expected: Unknown()},
		{name: "unrecognized", result: driver.Before("draft"), expected: Unknown()},
		{name: "nil", result: nil, expected: Unknown()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			actual := Classify(tc.result, checkpoints)
			assert.Equal(t, tc.expected, actual)
			if !actual.IsPendingInput() {
				assert.Equal(t, driver.Done, actual.Name())
			}
		})
	}
}

func stringPtr(s string) *string { return &s }
