// Package logging builds the process logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level       string
	Development bool
	// Verbose forces debug level.
	Verbose bool
}

// New returns a JSON production logger, or a console logger in
// development mode.
func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if opts.Development {
		config = zap.NewDevelopmentConfig()
	}

	level := zapcore.InfoLevel
	if opts.Level != "" {
		var err error
		if level, err = zapcore.ParseLevel(opts.Level); err != nil {
			return nil, fmt.Errorf("failed to parse log level: %w", err)
		}
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
