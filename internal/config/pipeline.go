package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvPipelineShutdownTimeout = "PRISM_PIPELINE_SHUTDOWN_TIMEOUT"
)

// PipelineConfig holds run-level pipeline settings.
type PipelineConfig struct {
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *PipelineConfig) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
}

func (c *PipelineConfig) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}
