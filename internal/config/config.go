// Package config provides configuration loading for streak-scan.
// It loads an optional YAML file over built-in defaults and applies
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/streak-scanner/internal/detection"
	apperrors "github.com/ironsheep/streak-scanner/internal/errors"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvLogLevel = "STREAK_LOG_LEVEL"
	EnvWorkers  = "STREAK_WORKERS"
)

// DefaultProfilesDir is the profile output directory name inside the catalog.
const DefaultProfilesDir = "brightness_profile"

// Config represents the run configuration loaded from YAML
type Config struct {
	// Catalog is the directory holding the images to scan
	Catalog string `yaml:"catalog"`

	// Pattern selects candidate files inside the catalog
	Pattern string `yaml:"pattern"`

	// Report is the report file name, relative to the catalog unless absolute
	Report string `yaml:"report"`

	// MinArea is the minimum pixel count of an accepted region
	MinArea int `yaml:"minArea"`

	// Padding extends each streak bounding box before normalization
	Padding float64 `yaml:"padding"`

	Threshold struct {
		// Policy is "otsu" or "max-fraction"
		Policy      string  `yaml:"policy"`
		OtsuDivisor float64 `yaml:"otsuDivisor"`
		MaxFraction float64 `yaml:"maxFraction"`
	} `yaml:"threshold"`

	Profiles struct {
		Enabled bool `yaml:"enabled"`
		// Dir defaults to <catalog>/brightness_profile when empty
		Dir       string `yaml:"dir"`
		DrawAngle bool   `yaml:"drawAngle"`
	} `yaml:"profiles"`

	Partition struct {
		Enabled bool   `yaml:"enabled"`
		Dir     string `yaml:"dir"`
	} `yaml:"partition"`

	// Workers bounds the number of files processed concurrently
	Workers int `yaml:"workers"`

	Logging struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"logging"`

	Metrics struct {
		// Textfile receives the run metrics in Prometheus text format; empty disables it
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{
		Pattern: "*.png",
		Report:  "analytics.txt",
		MinArea: detection.DefaultMinArea,
		Padding: 0.1,
		Workers: runtime.NumCPU(),
	}

	cfg.Threshold.Policy = detection.PolicyOtsu
	cfg.Threshold.OtsuDivisor = detection.DefaultOtsuDivisor
	cfg.Threshold.MaxFraction = detection.DefaultMaxFraction

	cfg.Profiles.Enabled = true
	cfg.Profiles.DrawAngle = true

	cfg.Partition.Enabled = true
	cfg.Partition.Dir = "no_events"

	cfg.Logging.Level = "info"

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides the log level and worker count from the environment.
// Malformed or non-positive worker counts are ignored.
func (c *Config) ApplyEnv() {
	c.Logging.Level = getEnvOrDefault(EnvLogLevel, c.Logging.Level)
	if n := parseIntOrDefault(EnvWorkers, 0); n > 0 {
		c.Workers = n
	}
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Catalog) == "" {
		return apperrors.NewConfigError("catalog directory is required")
	}
	if c.MinArea < 1 {
		return apperrors.NewConfigError(fmt.Sprintf("minArea must be >= 1 (got %d)", c.MinArea))
	}
	if c.Padding < 0 {
		return apperrors.NewConfigError(fmt.Sprintf("padding must be >= 0 (got %g)", c.Padding))
	}
	if _, err := c.ThresholdPolicy(); err != nil {
		return apperrors.NewConfigError(err.Error())
	}
	if c.Threshold.OtsuDivisor <= 0 || c.Threshold.MaxFraction <= 0 {
		return apperrors.NewConfigError(fmt.Sprintf("threshold constants must be > 0 (got otsuDivisor=%g, maxFraction=%g)",
			c.Threshold.OtsuDivisor, c.Threshold.MaxFraction))
	}
	if c.Workers < 1 {
		return apperrors.NewConfigError(fmt.Sprintf("workers must be >= 1 (got %d)", c.Workers))
	}
	if c.Partition.Enabled && strings.TrimSpace(c.Partition.Dir) == "" {
		return apperrors.NewConfigError("partition.dir is required when partitioning is enabled")
	}
	return nil
}

// ThresholdPolicy builds the configured threshold policy.
func (c *Config) ThresholdPolicy() (detection.ThresholdPolicy, error) {
	constant := c.Threshold.OtsuDivisor
	if c.Threshold.Policy == detection.PolicyMaxFraction {
		constant = c.Threshold.MaxFraction
	}
	return detection.NewThresholdPolicy(c.Threshold.Policy, constant)
}

// ReportPath resolves the report file against the catalog.
func (c *Config) ReportPath() string {
	if filepath.IsAbs(c.Report) {
		return c.Report
	}
	return filepath.Join(c.Catalog, c.Report)
}

// ProfilesDir resolves the profile output directory.
func (c *Config) ProfilesDir() string {
	if c.Profiles.Dir != "" {
		return c.Profiles.Dir
	}
	return filepath.Join(c.Catalog, DefaultProfilesDir)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}
