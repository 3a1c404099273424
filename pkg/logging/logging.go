// Package logging builds the process-wide zap logger and provides helpers
// for keeping secrets out of log output.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a structured logger for the given environment. Local and dev
// environments get a console-friendly development config at debug level;
// everything else gets the JSON production config at info level. A non-empty
// level overrides the environment default.
func New(env, level string) (*zap.Logger, error) {
	cfg := buildConfigByEnvironment(env)

	if strings.TrimSpace(level) != "" {
		var parsed zapcore.Level
		if err := parsed.Set(level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}

func buildConfigByEnvironment(env string) zap.Config {
	switch env {
	case "local", "dev", "development":
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return cfg
	default:
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		return cfg
	}
}
