// Package app wires together configuration loading, artifact resolution,
// the step-worker tool adapters, and the Scheduler into one runnable
// build, the way internal/app does for the teacher's own CLI.
package app

import (
	"io"
	"log/slog"
)

// App encapsulates one CLI invocation's dependencies and configuration.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp constructs an App with its own isolated logger, configured from
// cfg's LogLevel/LogFormat.
func NewApp(outW io.Writer, cfg *Config) *App {
	return &App{
		outW:   outW,
		logger: newLogger(cfg.LogLevel, cfg.LogFormat, outW),
		config: cfg,
	}
}

// Logger returns the App's configured logger, primarily for testing.
func (a *App) Logger() *slog.Logger { return a.logger }
