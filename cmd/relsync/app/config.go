package app

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/relsync/relsync/pkg/errors"
)

// Deployment environments. The dev environment auto-approves changes
// instead of requesting review.
const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Defaults for the record store collection.
const (
	DefaultBucket     = "main-workspace"
	DefaultCollection = "browser-compat-releases"
)

// Config holds the application configuration loaded from environment
// variables, .env files and command-line flags.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Sync configuration
	Authorization string
	Server        string
	Environment   string
	DryRun        bool
	SourceURL     string
	Bucket        string
	Collection    string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of
// precedence: command-line flags (applied later by cobra), environment
// variables, .env files, defaults.
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no_color"),
		Format:  viper.GetString("format"),

		Authorization: viper.GetString("authorization"),
		Server:        viper.GetString("server"),
		Environment:   viper.GetString("environment"),
		DryRun:        viper.GetString("dry_run") == "1",
		SourceURL:     viper.GetString("source_url"),
		Bucket:        viper.GetString("bucket"),
		Collection:    viper.GetString("collection"),

		LogLevel:  getEnvOrDefault("log_level", "info"),
		LogFormat: getEnvOrDefault("log_format", "auto"),
		LogOutput: getEnvOrDefault("log_output", "stderr"),
	}

	if config.Bucket == "" {
		config.Bucket = DefaultBucket
	}
	if config.Collection == "" {
		config.Collection = DefaultCollection
	}

	return config, nil
}

// Validate checks the configuration required for a sync run. Failures
// are fatal before any network call is made.
func (c *Config) Validate() error {
	if c.Authorization == "" {
		return errors.NewConfigError("env", "AUTHORIZATION is required", errors.ErrCredentialsRequired)
	}
	if c.Server == "" {
		return errors.NewConfigError("env", "SERVER is required", nil)
	}
	switch c.Environment {
	case "", EnvDev, EnvStage, EnvProd:
	default:
		return errors.NewConfigError("env",
			fmt.Sprintf("ENVIRONMENT %q is not one of %s, %s, %s", c.Environment, EnvDev, EnvStage, EnvProd),
			errors.ErrInvalidInput)
	}
	return nil
}

// AutoApprove reports whether changes skip review. Only dev does.
func (c *Config) AutoApprove() bool {
	return c.Environment == EnvDev
}

// UpdateFromFlags updates config values from parsed command flags so
// flag values take precedence over env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	envFiles := []string{
		".env",
		".env.local",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the viper value for key or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := viper.GetString(key); value != "" {
		return value
	}
	return defaultValue
}
