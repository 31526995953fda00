package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
)

const (
	EnvMetricsEnabled = "PRISM_METRICS_ENABLED"
	EnvMetricsAddress = "PRISM_METRICS_ADDRESS"
)

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *MetricsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Enabled is copied when set,
// since false is indistinguishable from unset in TOML overlays it can only
// turn metrics on.
func (c *MetricsConfig) Merge(overlay *MetricsConfig) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.Address != "" {
		c.Address = overlay.Address
	}
}

func (c *MetricsConfig) loadDefaults() {
	if c.Address == "" {
		c.Address = ":9090"
	}
}

func (c *MetricsConfig) loadEnv() {
	if v := os.Getenv(EnvMetricsEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = enabled
		}
	}
	if v := os.Getenv(EnvMetricsAddress); v != "" {
		c.Address = v
	}
}

func (c *MetricsConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}
	return nil
}
