// Package config holds engine constants and the quill.yaml project
// configuration consumed by the CLI and the embedding API.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level quill.yaml configuration.
type Config struct {
	// Indent overrides the canonical indentation width for re-printed
	// statements. Zero means IndentWidth.
	Indent int `yaml:"indent,omitempty"`

	// CachePath is the sqlite database used by `quill fmt -cache`.
	// Defaults to ".quill-cache.db" next to quill.yaml.
	CachePath string `yaml:"cache_path,omitempty"`

	// Color controls diagnostic coloring: "auto" (default), "always", "never".
	Color string `yaml:"color,omitempty"`
}

// DefaultConfig returns the configuration used when no quill.yaml exists.
func DefaultConfig() *Config {
	return &Config{
		Indent:    IndentWidth,
		CachePath: ".quill-cache.db",
		Color:     "auto",
	}
}

// Load reads and validates quill.yaml from dir. A missing file is not an
// error; defaults are returned.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "quill.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Indent < 0 {
		return fmt.Errorf("indent must be non-negative, got %d", c.Indent)
	}
	if c.Indent == 0 {
		c.Indent = IndentWidth
	}
	switch c.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", c.Color)
	}
	if c.Color == "" {
		c.Color = "auto"
	}
	if c.CachePath == "" {
		c.CachePath = ".quill-cache.db"
	}
	return nil
}
