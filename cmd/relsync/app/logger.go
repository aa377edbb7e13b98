package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/relsync/relsync/pkg/logging"
)

// NewLogger creates a configured logger based on the application
// configuration. Log level precedence (highest to lowest):
//  1. --log-level flag (explicit always wins)
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for warn)
//  4. LOG_LEVEL environment variable
//  5. Default (info)
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)

	logConfig := &logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		NoColor:   config.NoColor,
		AddCaller: level == "debug" || level == "trace",
	}

	logger := logging.NewLoggerFromConfig(logConfig)
	logging.SetDefault(logger)
	return logger
}

// determineLogLevel determines the log level using clear precedence rules.
func determineLogLevel(config *Config) string {
	// 1. Explicit --log-level always wins
	if config.LogLevel != "" && config.LogLevel != "info" {
		return validateLogLevel(config.LogLevel)
	}

	// 2. Conflicting boolean flags: quiet is more restrictive
	if config.Verbose && config.Quiet {
		fmt.Fprintf(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}

	// 3. Boolean shortcuts
	if config.Verbose {
		return "debug"
	}
	if config.Quiet {
		return "warn"
	}

	// 4./5. LOG_LEVEL env (already in config) or default
	if config.LogLevel != "" {
		return validateLogLevel(config.LogLevel)
	}
	return "info"
}

// validateLogLevel validates a log level string and returns a valid
// level, falling back to "info".
func validateLogLevel(level string) string {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if validLevels[level] {
		return level
	}
	return "info"
}
