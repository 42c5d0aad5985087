package execution

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/waypoint/internal/idgen"
	"github.com/viant/waypoint/model"
	"github.com/viant/waypoint/model/graph"
	"github.com/viant/waypoint/service/dao"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// scriptedExecutor copies inputs into state and fails on demand
type scriptedExecutor struct {
	fail     map[string]error
	executed []string
}

func (e *scriptedExecutor) Execute(_ context.Context, action *graph.Action, _, inputs map[string]interface{}) (map[string]interface{}, error) {
	if err := e.fail[action.Name]; err != nil {
		return nil, err
	}
	e.executed = append(e.executed, action.Name)
	ret := map[string]interface{}{"last": action.Name}
	for k, v := range inputs {
		ret[k] = v
	}
	return ret, nil
}

func newTestWorkflow() *model.Workflow {
	workflow := model.NewWorkflow("review")
	workflow.NewAction("ask", "state", "set")
	workflow.NewAction("review", "state", "set")
	workflow.NewAction("final", "nop", "nop")
	workflow.AddTransition("ask", "review", nil).
		AddTransition("review", "ask", &graph.Condition{Key: "feedback"}).
		AddTransition("review", "final", nil)
	return workflow
}

func TestInstance_Step(t *testing.T) {
	ctx := context.Background()
	executor := &scriptedExecutor{fail: map[string]error{}}
	factory, err := NewFactory(newTestWorkflow(), executor, WithState(map[string]interface{}{"feedback": []interface{}{}}))
	require.NoError(t, err)

	instance, err := factory.New(ctx, "t1", "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", instance.ID())
	assert.Equal(t, "t1", instance.TenantID())
	assert.Equal(t, "ask", instance.PendingAction())

	executed, err := instance.Step(ctx, map[string]interface{}{"answer": "yes"})
	require.NoError(t, err)
	assert.Equal(t, "ask", executed)
	assert.Equal(t, "review", instance.PendingAction())
	assert.Equal(t, "yes", instance.State()["answer"])

	executed, err = instance.Step(ctx, map[string]interface{}{"feedback": []interface{}{"shorter"}})
	require.NoError(t, err)
	assert.Equal(t, "review", executed)
	assert.Equal(t, "ask", instance.PendingAction())

	_, err = instance.Step(ctx, nil)
	require.NoError(t, err)
	_, err = instance.Step(ctx, map[string]interface{}{"feedback": []interface{}{}})
	require.NoError(t, err)
	assert.Equal(t, "final", instance.PendingAction())

	_, err = instance.Step(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "", instance.PendingAction())
	assert.Equal(t, "final", instance.LastAction())
	assert.Equal(t, 5, instance.Sequence())

	_, err = instance.Step(ctx, nil)
	assert.ErrorIs(t, err, ErrCompleted)

	steps, err := instance.Steps(ctx)
	require.NoError(t, err)
	require.Len(t, steps, 5)
	assert.Equal(t, []string{"ask", "review", "ask", "review", "final"}, []string{steps[0].Action, steps[1].Action, steps[2].Action, steps[3].Action, steps[4].Action})
	assert.Equal(t, StepStateCompleted, steps[4].State)
}

func TestInstance_StepFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	type testCase struct {
		name        string
		failure     error
		expectErr   error
		expectSet   bool
		expectSteps int
	}

	tests := []testCase{
		{name: "soft failure is recorded", failure: boom, expectErr: boom, expectSet: true, expectSteps: 1},
		{name: "invalid input leaves instance untouched", failure: &ValidationError{Action: "ask"}, expectErr: ErrInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			executor := &scriptedExecutor{fail: map[string]error{"ask": tc.failure}}
			factory, err := NewFactory(newTestWorkflow(), executor)
			require.NoError(t, err)
			instance, err := factory.New(ctx, "t1", "")
			require.NoError(t, err)

			_, err = instance.Step(ctx, nil)
			assert.ErrorIs(t, err, tc.expectErr)
			assert.Equal(t, "ask", instance.PendingAction())
			assert.Equal(t, 0, instance.Sequence())
			if tc.expectSet {
				assert.ErrorIs(t, instance.Err(), tc.failure)
			} else {
				assert.NoError(t, instance.Err())
			}
			steps, err := instance.Steps(ctx)
			require.NoError(t, err)
			assert.Len(t, steps, tc.expectSteps)

			delete(executor.fail, "ask")
			_, err = instance.Step(ctx, nil)
			require.NoError(t, err)
			assert.NoError(t, instance.Err())
			assert.Equal(t, "review", instance.PendingAction())
		})
	}
}

// brokenSteps rejects every save
type brokenSteps struct{}

func (brokenSteps) Save(context.Context, *Step) error { return errors.New("disk full") }
func (brokenSteps) Load(context.Context, string) (*Step, error) {
	return nil, dao.ErrNotFound
}
func (brokenSteps) Delete(context.Context, string) error { return dao.ErrNotFound }
func (brokenSteps) List(context.Context, ...*dao.Parameter) ([]*Step, error) {
	return nil, nil
}

func TestInstance_StepHistoryFailure(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	executor := &scriptedExecutor{fail: map[string]error{}}
	factory, err := NewFactory(newTestWorkflow(), executor, WithStepDAO(brokenSteps{}), WithLogger(zap.New(core)))
	require.NoError(t, err)
	instance, err := factory.New(ctx, "t1", "s1")
	require.NoError(t, err)

	executed, err := instance.Step(ctx, map[string]interface{}{"answer": "yes"})
	require.NoError(t, err)
	assert.Equal(t, "ask", executed)
	assert.NoError(t, instance.Err())
	assert.Equal(t, "review", instance.PendingAction())
	assert.Equal(t, 1, instance.Sequence())
	assert.Equal(t, 1, logs.FilterMessage("failed to save step").Len())

	executor.fail["review"] = errors.New("boom")
	_, err = instance.Step(ctx, nil)
	assert.EqualError(t, err, "action review failed: boom")
	assert.Equal(t, err, instance.Err())
	assert.Equal(t, 2, logs.FilterMessage("failed to save step").Len())
}

func TestFactory_New(t *testing.T) {
	prev := idgen.NewFunc
	idgen.NewFunc = func() string { return "generated" }
	defer func() { idgen.NewFunc = prev }()

	factory, err := NewFactory(newTestWorkflow(), &scriptedExecutor{})
	require.NoError(t, err)
	instance, err := factory.New(context.Background(), "t1", "")
	require.NoError(t, err)
	assert.Equal(t, "generated", instance.ID())
	assert.Equal(t, "t1", instance.TenantID())
	assert.Equal(t, instance.CreatedAt(), instance.UpdatedAt())

	_, err = NewFactory(model.NewWorkflow("empty"), &scriptedExecutor{})
	assert.Error(t, err)
	_, err = NewFactory(newTestWorkflow(), nil)
	assert.Error(t, err)
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Action: "review", Fields: []FieldError{{Field: "feedback", Message: "feedback is required"}}}
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "invalid input: action review: feedback: feedback is required", err.Error())
}
