package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Set(t *testing.T) {
	srv := New()
	method, err := srv.Method("set")
	require.NoError(t, err)
	out := map[string]interface{}{}
	require.NoError(t, method(context.Background(), map[string]interface{}{"answer": "yes"}, out))
	assert.Equal(t, map[string]interface{}{"answer": "yes"}, out)

	assert.Error(t, method(context.Background(), "bad", out))
}

func TestService_Append(t *testing.T) {
	type testCase struct {
		name        string
		input       *AppendInput
		expected    []interface{}
		expectedErr bool
	}

	tests := []testCase{
		{name: "into empty", input: &AppendInput{Key: "drafts", Values: []interface{}{"v1"}}, expected: []interface{}{"v1"}},
		{name: "into existing", input: &AppendInput{Key: "drafts", Values: []interface{}{"v2"}, Into: []interface{}{"v1"}}, expected: []interface{}{"v1", "v2"}},
		{name: "missing key", input: &AppendInput{Values: []interface{}{"v1"}}, expectedErr: true},
	}

	srv := New()
	method, err := srv.Method("append")
	require.NoError(t, err)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := map[string]interface{}{}
			err := method(context.Background(), tc.input, out)
			if tc.expectedErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out[tc.input.Key])
		})
	}

	_, err = srv.Method("unknown")
	assert.Error(t, err)
}
