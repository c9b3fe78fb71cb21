// Package logger wraps zap behind the small surface the rest of the service
// uses.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Zap struct {
	*zap.Logger
}

// New builds a logger for the given environment ("prod" is JSON, anything
// else is the human-readable development encoder).
func New(env, level string) (*Zap, error) {
	var cfg zap.Config
	if env == "prod" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Zap{l}, nil
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *Zap {
	return &Zap{zap.NewNop()}
}
