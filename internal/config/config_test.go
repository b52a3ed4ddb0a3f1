// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig pins the baseline evaluation settings.
func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Host != "http://localhost:11434" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if len(cfg.Models) != 1 || cfg.Models[0] != "llama3.1:latest" {
		t.Errorf("Models = %v", cfg.Models)
	}
	if len(cfg.Prompts) != 1 || cfg.Prompts[0] != "Tell me a joke" {
		t.Errorf("Prompts = %v", cfg.Prompts)
	}
	if cfg.Repeats != 1 || cfg.Verbose {
		t.Errorf("Repeats = %d, Verbose = %v", cfg.Repeats, cfg.Verbose)
	}
	if cfg.OutputDir != "" {
		t.Errorf("OutputDir = %q, want empty (no files by default)", cfg.OutputDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

// TestLoadFile verifies YAML parsing over defaults.
func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tempo_runner.yaml")
	data := []byte(`host: http://ollama-1:11434
models:
  - qwen2.5:32b
prompts:
  - "What color is the sky"
  - "Write a report on the financials of Microsoft"
repeats: 10
verbose: true
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Host != "http://ollama-1:11434" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if len(cfg.Models) != 1 || cfg.Models[0] != "qwen2.5:32b" {
		t.Errorf("Models = %v", cfg.Models)
	}
	if len(cfg.Prompts) != 2 {
		t.Errorf("Prompts = %v", cfg.Prompts)
	}
	if cfg.Repeats != 10 || !cfg.Verbose {
		t.Errorf("Repeats = %d, Verbose = %v", cfg.Repeats, cfg.Verbose)
	}
	// Unset fields keep defaults.
	if cfg.OutputFile != "tempo_results.csv" {
		t.Errorf("OutputFile = %q", cfg.OutputFile)
	}
}

// TestLoadMissingExplicitFile verifies that naming a nonexistent file is an
// error rather than a silent fallback.
func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load of missing explicit file did not error")
	}
}

// TestLoadInvalidYAML verifies parse errors are explicit.
func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("models: [unclosed"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load of invalid YAML did not error")
	}
}

// TestValidate rejects configurations the runner cannot execute.
func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty host", func(c *Config) { c.Host = "" }},
		{"no models", func(c *Config) { c.Models = nil }},
		{"blank model name", func(c *Config) { c.Models = []string{""} }},
		{"no prompts", func(c *Config) { c.Prompts = nil }},
		{"zero repeats", func(c *Config) { c.Repeats = 0 }},
		{"negative repeats", func(c *Config) { c.Repeats = -3 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an unrunnable config")
			}
		})
	}
}
