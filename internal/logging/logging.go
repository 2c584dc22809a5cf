// Package logging provides the zap plumbing shared by dreamsearch components.
//
// Loggers are dependency-injected, never global. Components accept a
// *zap.Logger, pass it through Default, and scope it once with Named or
// With at construction time. Only main decides level and encoding.
//
// Nothing logs inside the render recursion; parse fallbacks and transport
// lifecycle events are the log points.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Default returns the provided logger if non-nil, otherwise a no-op logger.
//
//	func NewComponent(logger *zap.Logger) *Component {
//	    return &Component{logger: logging.Default(logger).Named("component")}
//	}
func Default(logger *zap.Logger) *zap.Logger {
	if logger != nil {
		return logger
	}
	return zap.NewNop()
}

// ParseLevel maps a level name (debug, info, warn, error) to a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return lvl, nil
}

// New builds the process logger: JSON to stderr at the given level.
func New(level string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
