// Package config collects the KUBEKEEPER_* environment once at startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name.
const Prefix = "KUBEKEEPER"

// Config is the process-wide configuration.
type Config struct {
	// CheckInterval is the freshness window in seconds.
	CheckInterval int `envconfig:"CHECK_INTERVAL" default:"900"`
	// PIDFile names the freshness record, relative to the temp directory unless absolute.
	PIDFile string `envconfig:"PIDFILE" default:"kubekeeper.pid"`
	// Debug enables debug logging when set to any non-empty value.
	Debug string `envconfig:"DEBUG"`
	// RulesPath overrides ~/.kubekeeper/rules.yaml.
	RulesPath string `envconfig:"RULES"`
	// AuditLog enables the decision audit log at this path.
	AuditLog string `envconfig:"AUDIT_LOG"`
	// Kubectl is the wrapped binary.
	Kubectl string `envconfig:"KUBECTL" default:"kubectl"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		CheckInterval: 900,
		PIDFile:       "kubekeeper.pid",
		Kubectl:       "kubectl",
	}
}

// Load reads ~/.kubekeeper/env (or KUBEKEEPER_ENV_FILE) and then the
// environment. Variables already set in the environment win over the file.
// If a value cannot be parsed, Load returns Default() together with the error
// so the caller can warn and carry on.
func Load() (Config, error) {
	if path := EnvFile(); path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return Default(), fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// EnvFile returns the optional dotenv file path.
func EnvFile() string {
	if path := os.Getenv(Prefix + "_ENV_FILE"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kubekeeper", "env")
}

// Window returns CheckInterval as a duration.
func (c Config) Window() time.Duration {
	return time.Duration(c.CheckInterval) * time.Second
}

// CachePath returns the freshness record location.
func (c Config) CachePath() string {
	if filepath.IsAbs(c.PIDFile) {
		return c.PIDFile
	}
	return filepath.Join(os.TempDir(), c.PIDFile)
}

// DebugEnabled reports whether debug logging was requested.
func (c Config) DebugEnabled() bool {
	return c.Debug != ""
}
