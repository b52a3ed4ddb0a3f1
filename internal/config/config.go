/*
PURPOSE:
  Defines the configuration structure and loading logic for Tempo Runner.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Allow configuration of the target host, models, prompts, and repeats.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - CLI flags override whatever the file provides.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: gopkg.in/yaml.v3 (standard for Go config)

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing file falls back to defaults silently.
  - Validate() rejects configurations the runner cannot execute.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults mirror the baseline evaluation (llama3.1, one joke prompt).

USAGE:
  cfg, err := config.Load("tempo_runner.yaml")

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct and update Load() defaults.

RELATED FILES:
  - internal/cli/run.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for Tempo Runner.
type Config struct {
	Host    string   `yaml:"host"`
	Models  []string `yaml:"models"`
	Prompts []string `yaml:"prompts"`
	Repeats int      `yaml:"repeats"`
	// Verbose enables streaming inference with progressive token display.
	Verbose bool `yaml:"verbose"`
	// OutputDir, when set, enables CSV/JSON export of the run's metric rows.
	// Empty means no files are written.
	OutputDir  string `yaml:"output_dir"`
	OutputFile string `yaml:"output_file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:       "http://localhost:11434",
		Models:     []string{"llama3.1:latest"},
		Prompts:    []string{"Tell me a joke"},
		Repeats:    1,
		Verbose:    false,
		OutputDir:  "",
		OutputFile: "tempo_results.csv",
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		// Search for defaults
		defaults := []string{"tempo_runner.yaml", "runner.yaml"}
		found := false
		for _, name := range defaults {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name // record which file we loaded
				found = true
				break
			}
		}
		if !found {
			// No config file found, return default
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects configurations the trial runner cannot execute.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("at least one model is required")
	}
	for _, m := range c.Models {
		if m == "" {
			return fmt.Errorf("model names must not be empty")
		}
	}
	if len(c.Prompts) == 0 {
		return fmt.Errorf("at least one prompt is required")
	}
	if c.Repeats < 1 {
		return fmt.Errorf("repeats must be >= 1, got %d", c.Repeats)
	}
	return nil
}
