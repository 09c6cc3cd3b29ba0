// Package observability provides the process-wide structured logger.
//
// The logger is initialized once from config and shared by every
// component. Before Init is called the package exposes a no-op logger so
// library consumers and tests never need to guard against nil.
package observability

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the shared structured logger.
//
// Defaults to a no-op logger until Init is called.
var Logger = zap.NewNop()

// Init configures the shared logger from a level and output profile.
//
// Level is one of: debug, info, warn, error. Profile selects the encoder:
// "structured" emits JSON, "console" emits human-readable output.
func Init(level, profile string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(profile)) {
	case "", "structured":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
	default:
		return fmt.Errorf("unknown logging profile %q", profile)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	Logger = logger
	return nil
}

// Sync flushes any buffered log entries. Call on shutdown.
func Sync() {
	_ = Logger.Sync()
}
