package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prismworks/prism/internal/config"
)

const baseConfig = `
version = "1.2.3"

[llm]
base_url = "http://models:11434"
model = "llama3.2"
timeout = "90s"

[embedding]
model = "nomic-embed-text"

[index]
address = "milvus:19530"
collection = "reports"

[metrics]
enabled = true
address = ":2112"
`

const overlayConfig = `
[llm]
model = "mistral"

[index]
collection = "reports_staging"
`

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLM.BaseURL != "http://localhost:11434" {
		t.Errorf("unexpected llm base url %q", cfg.LLM.BaseURL)
	}
	if cfg.Embedding.Model != "nomic-embed-text" {
		t.Errorf("unexpected embedding model %q", cfg.Embedding.Model)
	}
	if cfg.Index.Collection != "documents" {
		t.Errorf("unexpected collection %q", cfg.Index.Collection)
	}
	if cfg.Metrics.Enabled {
		t.Error("metrics should default to disabled")
	}
	if cfg.LLM.TimeoutDuration() != 120*time.Second {
		t.Errorf("unexpected llm timeout %v", cfg.LLM.TimeoutDuration())
	}
}

func TestLoadBaseFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	write(t, dir, config.BaseConfigFile, baseConfig)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Version != "1.2.3" {
		t.Errorf("unexpected version %q", cfg.Version)
	}
	if cfg.LLM.BaseURL != "http://models:11434" {
		t.Errorf("unexpected llm base url %q", cfg.LLM.BaseURL)
	}
	if cfg.Index.Address != "milvus:19530" {
		t.Errorf("unexpected index address %q", cfg.Index.Address)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Address != ":2112" {
		t.Errorf("unexpected metrics config %+v", cfg.Metrics)
	}
	// Unset fields still receive defaults.
	if cfg.Embedding.BaseURL != "http://localhost:11434" {
		t.Errorf("unexpected embedding base url %q", cfg.Embedding.BaseURL)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	write(t, dir, config.BaseConfigFile, baseConfig)
	write(t, dir, "config.staging.toml", overlayConfig)
	t.Setenv(config.EnvPrismEnv, "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLM.Model != "mistral" {
		t.Errorf("overlay model not applied, got %q", cfg.LLM.Model)
	}
	if cfg.Index.Collection != "reports_staging" {
		t.Errorf("overlay collection not applied, got %q", cfg.Index.Collection)
	}
	// Fields absent from the overlay keep their base values.
	if cfg.LLM.BaseURL != "http://models:11434" {
		t.Errorf("base llm url lost in merge, got %q", cfg.LLM.BaseURL)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	write(t, dir, config.BaseConfigFile, baseConfig)
	t.Setenv(config.EnvIndexCollection, "from_env")
	t.Setenv(config.EnvLLMTimeout, "45s")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Index.Collection != "from_env" {
		t.Errorf("env override not applied, got %q", cfg.Index.Collection)
	}
	if cfg.LLM.TimeoutDuration() != 45*time.Second {
		t.Errorf("env timeout not applied, got %v", cfg.LLM.TimeoutDuration())
	}
}

func TestLoadValidation(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	write(t, dir, config.BaseConfigFile, "[llm]\ntimeout = \"not-a-duration\"\n")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected validation error for bad timeout")
	}
}

func TestMetricsValidation(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	write(t, dir, config.BaseConfigFile, "[metrics]\nenabled = true\naddress = \"no-port\"\n")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected validation error for bad metrics address")
	}
}
