// Package logging builds the zap logger used across waypoint.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures the logger
type Config struct {
	// Level is one of debug, info, warn, error
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// Format is json or console
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
	// Fields are attached to every entry
	Fields map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// DefaultConfig returns info level JSON logging
func DefaultConfig() *Config {
	return &Config{Level: "info", Format: "json"}
}

// Validate checks level and format
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	switch c.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q", c.Format)
	}
	return nil
}

// New creates a logger writing to os.Stderr
func New(cfg *Config) (*zap.Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter creates a logger writing to w
func NewWithWriter(cfg *Config, w io.Writer) (*zap.Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := zapcore.ParseLevel(cfg.Level)
	core := zapcore.NewCore(newEncoder(cfg.Format), zapcore.Lock(zapcore.AddSync(w)), zap.NewAtomicLevelAt(level))
	logger := zap.New(core, zap.AddCaller())
	if len(cfg.Fields) > 0 {
		fields := make([]zap.Field, 0, len(cfg.Fields))
		for k, v := range cfg.Fields {
			fields = append(fields, zap.String(k, v))
		}
		logger = logger.With(fields...)
	}
	return logger, nil
}

func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if format == "console" {
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}
