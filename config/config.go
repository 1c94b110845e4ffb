// Package config loads the awshealth YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration
type Config struct {
	Version string       `yaml:"version"`
	Regions []string     `yaml:"regions"`
	Output  OutputConfig `yaml:"output,omitempty"`
	Store   StoreConfig  `yaml:"store,omitempty"`
	Watch   WatchConfig  `yaml:"watch,omitempty"`
	Log     LogConfig    `yaml:"log,omitempty"`
	OTLP    OTLPConfig   `yaml:"otlp,omitempty"`
}

// OutputConfig controls default rendering behavior
type OutputConfig struct {
	Format     string `yaml:"format"`
	ReportPath string `yaml:"report_path,omitempty"`
}

// StoreConfig controls snapshot persistence
type StoreConfig struct {
	Path    string `yaml:"path"`
	Enabled bool   `yaml:"enabled"`
}

// WatchConfig controls continuous mode
type WatchConfig struct {
	IntervalStr string        `yaml:"interval"`
	Interval    time.Duration `yaml:"-"`
	MetricsPort int           `yaml:"metrics_port"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// OTLPConfig holds the optional OTLP metric push settings
type OTLPConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Insecure bool   `yaml:"insecure,omitempty"`
}

// Default returns a config with defaults applied and no file loaded.
func Default() *Config {
	cfg := &Config{Version: "1"}
	applyDefaults(cfg)
	_ = parseInterval(cfg)
	return cfg
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := parseInterval(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Output.Format == "" {
		cfg.Output.Format = "table"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultStorePath()
	}
	if cfg.Watch.IntervalStr == "" {
		cfg.Watch.IntervalStr = "5m"
	}
	if cfg.Watch.MetricsPort == 0 {
		cfg.Watch.MetricsPort = 2112
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func parseInterval(cfg *Config) error {
	d, err := time.ParseDuration(cfg.Watch.IntervalStr)
	if err != nil {
		return fmt.Errorf("parse watch interval %q: %w", cfg.Watch.IntervalStr, err)
	}
	cfg.Watch.Interval = d
	return nil
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".awshealth"
	}
	return home + "/.awshealth"
}

// Validate ensures config has required fields
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	if c.Output.Format != "table" && c.Output.Format != "json" {
		return fmt.Errorf("output format must be table or json, got %q", c.Output.Format)
	}
	if c.Watch.Interval < time.Second {
		return fmt.Errorf("watch interval must be at least 1s, got %s", c.Watch.Interval)
	}
	return nil
}
