// Package config loads the engine configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oterra/oterra/quota"
	"github.com/oterra/oterra/retry"
)

// Config is the full engine configuration.
type Config struct {
	// Strategy selects how the desired state is produced:
	// reuse, load, custom or maximize.
	Strategy string `yaml:"strategy"`

	// WorkDir holds the rendered configuration, the SSH keys and the
	// run journal.
	WorkDir string `yaml:"work_dir"`

	NonInteractive bool `yaml:"non_interactive"`
	AutoDeploy     bool `yaml:"auto_deploy"`

	OCI     OCIConfig     `yaml:"oci"`
	Retry   retry.Policy  `yaml:"retry"`
	Limits  quota.Limits  `yaml:"limits"`
	Timeout TimeoutConfig `yaml:"timeouts"`
}

// OCIConfig locates the provider credentials.
type OCIConfig struct {
	ConfigFile string `yaml:"config_file"`
	Profile    string `yaml:"profile"`
}

// TimeoutConfig bounds the external calls of one run.
type TimeoutConfig struct {
	Connection time.Duration `yaml:"connection"`
	Read       time.Duration `yaml:"read"`
	Command    time.Duration `yaml:"command"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Strategy: "reuse",
		WorkDir:  ".",
		OCI: OCIConfig{
			ConfigFile: filepath.Join(home, ".oci", "config"),
			Profile:    "DEFAULT",
		},
		Retry:  retry.DefaultPolicy(),
		Limits: quota.DefaultLimits(),
		Timeout: TimeoutConfig{
			Connection: 10 * time.Second,
			Read:       60 * time.Second,
			Command:    30 * time.Minute,
		},
	}
}

// Load reads a config file over the defaults. An empty path returns the
// defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv layers OTERRA_* environment variables over the file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("OTERRA_STRATEGY"); v != "" {
		c.Strategy = v
	}
	if v := os.Getenv("OTERRA_WORK_DIR"); v != "" {
		c.WorkDir = v
	}
	if v := os.Getenv("OTERRA_OCI_CONFIG_FILE"); v != "" {
		c.OCI.ConfigFile = v
	}
	if v := os.Getenv("OTERRA_OCI_PROFILE"); v != "" {
		c.OCI.Profile = v
	}
	if v, err := strconv.ParseBool(os.Getenv("OTERRA_NON_INTERACTIVE")); err == nil {
		c.NonInteractive = v
	}
	if v, err := strconv.ParseBool(os.Getenv("OTERRA_AUTO_DEPLOY")); err == nil {
		c.AutoDeploy = v
	}
	if v, err := strconv.Atoi(os.Getenv("OTERRA_RETRY_MAX_ATTEMPTS")); err == nil && v > 0 {
		c.Retry.MaxAttempts = v
	}
	if v, err := time.ParseDuration(os.Getenv("OTERRA_RETRY_BASE_DELAY")); err == nil && v > 0 {
		c.Retry.BaseDelay = v
	}
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch c.Strategy {
	case "reuse", "load", "custom", "maximize":
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	if c.WorkDir == "" {
		return fmt.Errorf("work_dir is required")
	}
	if c.OCI.ConfigFile == "" {
		return fmt.Errorf("oci config_file is required")
	}
	if c.OCI.Profile == "" {
		return fmt.Errorf("oci profile is required")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max_attempts must be at least 1")
	}
	if c.Retry.BaseDelay <= 0 {
		return fmt.Errorf("retry base_delay must be positive")
	}
	if c.Limits.MinBootVolumeGB <= 0 {
		return fmt.Errorf("limits min_boot_volume_gb must be positive")
	}
	return nil
}
