// Package app provides the application context and dependency
// management for the relsync CLI: configuration, logging, and the
// command tree.
package app

import (
	"github.com/rs/zerolog"

	"github.com/relsync/relsync/pkg/errors"
)

// App represents the relsync application with its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
func New(version, commit, date string) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}
