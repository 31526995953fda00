package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvLLMBaseURL = "PRISM_LLM_BASE_URL"
	EnvLLMModel   = "PRISM_LLM_MODEL"
	EnvLLMTimeout = "PRISM_LLM_TIMEOUT"
)

// LLMConfig holds the connection settings for the completion model.
type LLMConfig struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *LLMConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LLMConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *LLMConfig) Merge(overlay *LLMConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *LLMConfig) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:11434"
	}
	if c.Model == "" {
		c.Model = "llama3.2"
	}
	if c.Timeout == "" {
		c.Timeout = "120s"
	}
}

func (c *LLMConfig) loadEnv() {
	if v := os.Getenv(EnvLLMBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvLLMModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvLLMTimeout); v != "" {
		c.Timeout = v
	}
}

func (c *LLMConfig) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
