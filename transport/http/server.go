// Package http exposes the session façade over HTTP.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/viant/waypoint/runtime/execution"
	"github.com/viant/waypoint/service/dao"
	"github.com/viant/waypoint/service/projector"
	"github.com/viant/waypoint/service/session"
	"github.com/viant/waypoint/tracing"
	"go.uber.org/zap"
)

// APIPrefix prefixes session routes
const APIPrefix = "/api/v0"

// Sessions is the façade served by the server
type Sessions interface {
	Create(ctx context.Context, tenantID string) (string, error)
	Start(ctx context.Context, tenantID, sessionID string, inputs map[string]interface{}) (*projector.View, error)
	Submit(ctx context.Context, tenantID, sessionID string, inputs map[string]interface{}) (*projector.View, error)
	Inspect(ctx context.Context, tenantID, sessionID string) (*projector.View, error)
	Steps(ctx context.Context, tenantID, sessionID string) ([]*execution.Step, error)
}

// Server provides HTTP endpoints for waypoint sessions.
type Server struct {
	echo     *echo.Echo
	sessions Sessions
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	addr     string
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is returned for failed requests
type ErrorResponse struct {
	Message string                 `json:"message"`
	Fields  []execution.FieldError `json:"fields,omitempty"`
}

// NewServer creates a new HTTP server.
func NewServer(sessions Sessions, gatherer prometheus.Gatherer, logger *zap.Logger, addr string) (*Server, error) {
	if sessions == nil {
		return nil, fmt.Errorf("sessions cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			ctx, span := tracing.StartSpan(c.Request().Context(), c.Request().Method+" "+c.Path(), "SERVER")
			c.SetRequest(c.Request().WithContext(ctx))
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			span.SetStatusFromHTTPCode(c.Response().Status)
			tracing.EndSpan(span, nil)
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return nil
		}
	})

	s := &Server{echo: e, sessions: sessions, gatherer: gatherer, logger: logger, addr: addr}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v0 := s.echo.Group(APIPrefix + "/:tenant/:session")
	v0.POST("/create", s.handleCreate)
	v0.POST("/start", s.handleStart)
	v0.POST("/submit", s.handleSubmit)
	v0.GET("/state", s.handleState)
	v0.GET("/steps", s.handleSteps)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleCreate allocates a session; the session path segment is ignored
func (s *Server) handleCreate(c echo.Context) error {
	id, err := s.sessions.Create(c.Request().Context(), c.Param("tenant"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, id)
}

func (s *Server) handleStart(c echo.Context) error {
	inputs, err := bindInputs(c)
	if err != nil {
		return err
	}
	view, err := s.sessions.Start(c.Request().Context(), c.Param("tenant"), c.Param("session"), inputs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleSubmit(c echo.Context) error {
	inputs, err := bindInputs(c)
	if err != nil {
		return err
	}
	view, err := s.sessions.Submit(c.Request().Context(), c.Param("tenant"), c.Param("session"), inputs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleState(c echo.Context) error {
	view, err := s.sessions.Inspect(c.Request().Context(), c.Param("tenant"), c.Param("session"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleSteps(c echo.Context) error {
	steps, err := s.sessions.Steps(c.Request().Context(), c.Param("tenant"), c.Param("session"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, steps)
}

// bindInputs decodes an optional JSON object body; path parameters are not bound
func bindInputs(c echo.Context) (map[string]interface{}, error) {
	inputs := map[string]interface{}{}
	if c.Request().ContentLength == 0 {
		return inputs, nil
	}
	binder := &echo.DefaultBinder{}
	if err := binder.BindBody(c, &inputs); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "request body must be a JSON object")
	}
	return inputs, nil
}

func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, response := statusOf(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		}
		if writeErr := c.JSON(status, response); writeErr != nil {
			logger.Warn("failed to write error response", zap.Error(writeErr))
		}
	}
}

func statusOf(err error) (int, *ErrorResponse) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, &ErrorResponse{Message: fmt.Sprint(httpErr.Message)}
	}
	var validationErr *execution.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, &ErrorResponse{Message: validationErr.Error(), Fields: validationErr.Fields}
	case errors.Is(err, execution.ErrInvalidInput), errors.Is(err, session.ErrInvalidKey):
		return http.StatusBadRequest, &ErrorResponse{Message: err.Error()}
	case errors.Is(err, dao.ErrNotFound):
		return http.StatusNotFound, &ErrorResponse{Message: err.Error()}
	}
	return http.StatusInternalServerError, &ErrorResponse{Message: err.Error()}
}

// Handler returns the underlying HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.addr))
	return s.echo.Start(s.addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
