package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/waypoint"
	"github.com/viant/waypoint/model"
	"github.com/viant/waypoint/model/graph"
	"github.com/viant/waypoint/runtime/execution"
	"github.com/viant/waypoint/service/driver"
	"github.com/viant/waypoint/service/projector"
	"github.com/viant/waypoint/service/session"
	"go.uber.org/zap"
)

// stubSessions returns err from every call and records the last inputs
type stubSessions struct {
	err    error
	inputs map[string]interface{}
}

func (s *stubSessions) view(tenantID, sessionID string) (*projector.View, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &projector.View{TenantID: tenantID, SessionID: sessionID, NextStep: "ask", Status: projector.StatusAwaitingInput, Fields: map[string]interface{}{}}, nil
}

func (s *stubSessions) Create(_ context.Context, tenantID string) (string, error) {
	return "generated", s.err
}

func (s *stubSessions) Start(_ context.Context, tenantID, sessionID string, inputs map[string]interface{}) (*projector.View, error) {
	s.inputs = inputs
	return s.view(tenantID, sessionID)
}

func (s *stubSessions) Submit(_ context.Context, tenantID, sessionID string, inputs map[string]interface{}) (*projector.View, error) {
	s.inputs = inputs
	return s.view(tenantID, sessionID)
}

func (s *stubSessions) Inspect(_ context.Context, tenantID, sessionID string) (*projector.View, error) {
	return s.view(tenantID, sessionID)
}

func (s *stubSessions) Steps(_ context.Context, _, _ string) ([]*execution.Step, error) {
	return nil, s.err
}

func serve(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_Routes(t *testing.T) {
	type testCase struct {
		name         string
		err          error
		method       string
		path         string
		body         string
		expectStatus int
		expectBody   string
		expectInputs map[string]interface{}
	}

	tests := []testCase{
		{name: "health", method: http.MethodGet, path: "/health", expectStatus: http.StatusOK, expectBody: `"ok"`},
		{name: "create", method: http.MethodPost, path: "/api/v0/acme/create_new/create", expectStatus: http.StatusOK, expectBody: `"generated"`},
		{
			name:         "start",
			method:       http.MethodPost,
			path:         "/api/v0/acme/s1/start",
			body:         `{"a":"x"}`,
			expectStatus: http.StatusOK,
			expectBody:   `"next_step":"ask"`,
			expectInputs: map[string]interface{}{"a": "x"},
		},
		{
			name:         "submit without body",
			method:       http.MethodPost,
			path:         "/api/v0/acme/s1/submit",
			expectStatus: http.StatusOK,
			expectInputs: map[string]interface{}{},
		},
		{name: "state", method: http.MethodGet, path: "/api/v0/acme/s1/state", expectStatus: http.StatusOK, expectBody: `"session_id":"s1"`},
		{name: "malformed body", method: http.MethodPost, path: "/api/v0/acme/s1/submit", body: `[1,2]`, expectStatus: http.StatusBadRequest},
		{name: "unknown session", err: session.ErrNotFound, method: http.MethodGet, path: "/api/v0/acme/s1/state", expectStatus: http.StatusNotFound},
		{name: "invalid key", err: fmt.Errorf("%w: x", session.ErrInvalidKey), method: http.MethodPost, path: "/api/v0/acme/s1/create", expectStatus: http.StatusBadRequest},
		{
			name:         "validation error",
			err:          &execution.ValidationError{Action: "ask", Fields: []execution.FieldError{{Field: "answer", Message: "answer is required"}}},
			method:       http.MethodPost,
			path:         "/api/v0/acme/s1/submit",
			body:         `{}`,
			expectStatus: http.StatusBadRequest,
			expectBody:   `"field":"answer"`,
		},
		{name: "engine error", err: errors.New("boom"), method: http.MethodGet, path: "/api/v0/acme/s1/steps", expectStatus: http.StatusInternalServerError, expectBody: `"message":"boom"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sessions := &stubSessions{err: tc.err}
			server, err := NewServer(sessions, prometheus.NewRegistry(), zap.NewNop(), ":0")
			require.NoError(t, err)

			rec := serve(t, server.Handler(), tc.method, tc.path, tc.body)
			assert.Equal(t, tc.expectStatus, rec.Code, rec.Body.String())
			if tc.expectBody != "" {
				assert.Contains(t, rec.Body.String(), tc.expectBody)
			}
			if tc.expectInputs != nil {
				assert.Equal(t, tc.expectInputs, sessions.inputs)
			}
		})
	}
}

func TestNewServer_NilSessions(t *testing.T) {
	_, err := NewServer(nil, nil, nil, "")
	assert.Error(t, err)
}

func TestServer_EndToEnd(t *testing.T) {
	workflow := model.NewWorkflow("assistant")
	workflow.NewAction("intake", "state", "set").
		WithParameter("request", "${a}").
		WithInputSchema(map[string]interface{}{"type": "object", "required": []interface{}{"a"}})
	workflow.NewAction("ask", "state", "set").
		WithParameter("answer", "${answer}").
		WithInputSchema(map[string]interface{}{"type": "object", "required": []interface{}{"answer"}})
	workflow.NewAction("review", "state", "set").
		WithParameter("feedback", "${feedback}").
		WithInputSchema(map[string]interface{}{"type": "object", "required": []interface{}{"feedback"}})
	workflow.NewAction("final", "nop", "nop")
	workflow.AddTransition("intake", "ask", nil).
		AddTransition("ask", "review", nil).
		AddTransition("review", "ask", &graph.Condition{Key: "feedback"}).
		AddTransition("review", "final", nil)

	cfg := waypoint.DefaultConfig()
	cfg.Checkpoints = driver.Checkpoints{PauseBefore: []string{"ask", "review"}}
	srv, err := waypoint.New(context.Background(), waypoint.WithConfig(cfg), waypoint.WithWorkflow(workflow), waypoint.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	server, err := NewServer(srv, srv.Registry(), zap.NewNop(), ":0")
	require.NoError(t, err)
	handler := server.Handler()

	rec := serve(t, handler, http.MethodPost, "/api/v0/acme/create_new/create", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var id string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &id))

	steps := []struct {
		path     string
		body     string
		nextStep string
	}{
		{path: "start", body: `{"a":"x"}`, nextStep: "ask"},
		{path: "submit", body: `{"answer":"y"}`, nextStep: "review"},
		{path: "submit", body: `{"feedback":[]}`, nextStep: driver.Done},
	}
	for _, step := range steps {
		rec = serve(t, handler, http.MethodPost, "/api/v0/acme/"+id+"/"+step.path, step.body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		view := &projector.View{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), view))
		assert.Equal(t, step.nextStep, view.NextStep)
	}

	rec = serve(t, handler, http.MethodGet, "/api/v0/acme/"+id+"/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"completed"`)

	rec = serve(t, handler, http.MethodGet, "/api/v0/acme/unknown/state", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, handler, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "waypoint_store_created_total 1")
}
