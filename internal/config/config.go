// Package config holds the run configuration, loaded from an optional
// .kaleidoscopy.yaml next to the working directory and overridden by
// command-line flags.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the file name probed in the working directory.
const DefaultConfigFile = ".kaleidoscopy.yaml"

type Config struct {
	// Prompt is printed before each interactive line.
	Prompt string `yaml:"prompt"`

	// History is the path of the SQLite transcript database. Empty
	// disables history recording.
	History string `yaml:"history"`

	// DumpAST prints each parsed unit with explicit grouping.
	DumpAST bool `yaml:"dump_ast"`

	// DumpCode disassembles each compiled unit.
	DumpCode bool `yaml:"dump_code"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{Prompt: "ready> "}
}

// Load reads a YAML configuration file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// LoadIfPresent loads path when it exists and falls back to the
// defaults when it does not.
func LoadIfPresent(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}
