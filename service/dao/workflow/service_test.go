package workflow

import (
	"context"
	"embed"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	_ "github.com/viant/afs/embed"
	"github.com/viant/waypoint/service/meta"
)

//go:embed testdata/*
var testFS embed.FS

func TestService_Load(t *testing.T) {
	ctx := context.Background()

	type testCase struct {
		name        string
		url         string
		expectedErr bool
		expectName  string
		expectEntry string
		expectCount int
		check       func(t *testing.T, svc *Service)
	}

	tests := []testCase{
		{
			name:        "sequence actions",
			url:         "assistant.yaml",
			expectName:  "assistant",
			expectEntry: "intake",
			expectCount: 5,
		},
		{
			name:        "mapping actions with url derived name",
			url:         "compact",
			expectName:  "compact",
			expectEntry: "start",
			expectCount: 2,
		},
		{
			name:        "invalid transition",
			url:         "broken.yaml",
			expectedErr: true,
		},
		{
			name:        "missing file",
			url:         "absent.yaml",
			expectedErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := New(WithMetaService(meta.New(afs.New(), "embed:///testdata", &testFS)))
			actual, err := svc.Load(ctx, tc.url)
			if tc.expectedErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectName, actual.Name)
			assert.Equal(t, tc.expectEntry, actual.Entrypoint)
			assert.Len(t, actual.Actions, tc.expectCount)
		})
	}
}

func TestService_Load_Details(t *testing.T) {
	svc := New(WithMetaService(meta.New(afs.New(), "embed:///testdata", &testFS)), WithCache(true))
	workflow, err := svc.Load(context.Background(), "assistant.yaml")
	require.NoError(t, err)

	intake := workflow.Action("intake")
	require.NotNil(t, intake)
	assert.True(t, intake.RequiresInput())
	assert.Equal(t, "${a}", intake.With["request"])
	assert.False(t, workflow.Action("draft").RequiresInput())

	assert.Equal(t, "draft", workflow.Next("review", map[string]interface{}{"feedback": []interface{}{"shorter"}}))
	assert.Equal(t, "final", workflow.Next("review", map[string]interface{}{"feedback": []interface{}{}}))
	assert.Equal(t, "", workflow.Next("final", nil))

	cached, err := svc.Load(context.Background(), "assistant.yaml")
	require.NoError(t, err)
	assert.Same(t, workflow, cached)
}

func TestService_DecodeYAML(t *testing.T) {
	svc := New()
	workflow, err := svc.DecodeYAML([]byte(`
name: flag
actions:
  check: {service: nop, method: nop}
  yes: {service: nop, method: nop}
  no: {service: nop, method: nop}
transitions:
  - {from: check, to: "yes", when: {key: ready, equals: true}}
  - {from: check, to: "no", when: {key: ready, empty: true}}
`))
	require.NoError(t, err)
	assert.Equal(t, "check", workflow.Entrypoint)
	assert.Equal(t, "yes", workflow.Next("check", map[string]interface{}{"ready": true}))
	assert.Equal(t, "no", workflow.Next("check", map[string]interface{}{}))
}
