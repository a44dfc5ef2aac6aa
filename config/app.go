package config

import (
	"fmt"
	"time"

	"github.com/kbukum/imageflow/logger"
)

// Config is the root imageflow configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging   logger.Config   `yaml:"logging" mapstructure:"logging"`
	Workflows WorkflowsConfig `yaml:"workflows" mapstructure:"workflows"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// WorkflowsConfig configures the workflow document store.
type WorkflowsConfig struct {
	// Dir is where workflow documents are saved and listed.
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// BatchConfig configures batch runs.
type BatchConfig struct {
	// Workers is the number of parallel evaluations. Zero means one per
	// CPU core.
	Workers int `yaml:"workers" mapstructure:"workers"`
	// OutputDir is where processed images are written. Empty writes next
	// to each source file.
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// TelemetryConfig configures OpenTelemetry export. Tracing and metrics
// stay disabled unless Enabled is set.
type TelemetryConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "imageflow"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Workflows.Dir == "" {
		c.Workflows.Dir = "workflows"
	}
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
	}
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1.0
	}
	if c.Telemetry.Interval == 0 {
		c.Telemetry.Interval = 30 * time.Second
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, env := range validEnvs {
		if c.Environment == env {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("config.batch.workers must not be negative (got: %d)", c.Batch.Workers)
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("config.telemetry.sample_rate must be between 0 and 1 (got: %g)", c.Telemetry.SampleRate)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
