package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvIndexAddress    = "PRISM_INDEX_ADDRESS"
	EnvIndexCollection = "PRISM_INDEX_COLLECTION"
	EnvIndexTimeout    = "PRISM_INDEX_TIMEOUT"
)

// IndexConfig holds the vector database connection settings.
type IndexConfig struct {
	Address    string `toml:"address"`
	Collection string `toml:"collection"`
	Timeout    string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *IndexConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *IndexConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *IndexConfig) Merge(overlay *IndexConfig) {
	if overlay.Address != "" {
		c.Address = overlay.Address
	}
	if overlay.Collection != "" {
		c.Collection = overlay.Collection
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *IndexConfig) loadDefaults() {
	if c.Address == "" {
		c.Address = "localhost:19530"
	}
	if c.Collection == "" {
		c.Collection = "documents"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
}

func (c *IndexConfig) loadEnv() {
	if v := os.Getenv(EnvIndexAddress); v != "" {
		c.Address = v
	}
	if v := os.Getenv(EnvIndexCollection); v != "" {
		c.Collection = v
	}
	if v := os.Getenv(EnvIndexTimeout); v != "" {
		c.Timeout = v
	}
}

func (c *IndexConfig) validate() error {
	if c.Address == "" {
		return fmt.Errorf("address required")
	}
	if c.Collection == "" {
		return fmt.Errorf("collection required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
