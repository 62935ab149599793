// Package config loads the navigator's YAML configuration. Every field has a
// sensible default; an absent config file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the host-tunable knobs of the navigator.
type Config struct {
	// WorkspaceRoots are the directories searched when an import hint cannot
	// be resolved relative to its base document.
	WorkspaceRoots []string `yaml:"workspaceRoots"`
	// ExcludeGlobs drops matching root-relative paths from workspace search.
	ExcludeGlobs []string `yaml:"excludeGlobs"`
	// MaxSearchResults bounds every filename search.
	MaxSearchResults int `yaml:"maxSearchResults"`
	// CacheDir is the base directory for tree snapshots.
	CacheDir string `yaml:"cacheDir"`
	// DebounceMillis is the watch-mode event debounce window.
	DebounceMillis int `yaml:"debounceMillis"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		WorkspaceRoots:   []string{"."},
		ExcludeGlobs:     []string{"**/node_modules/**", "**/.git/**", "**/target/**"},
		MaxSearchResults: 50,
		CacheDir:         "tmp/.xcache",
		DebounceMillis:   200,
		LogLevel:         "info",
	}
}

// Load reads a YAML config file and overlays it onto the defaults. An empty
// path or a missing file yields the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg.normalize(), nil
}

func (c Config) normalize() Config {
	if len(c.WorkspaceRoots) == 0 {
		c.WorkspaceRoots = []string{"."}
	}
	if c.MaxSearchResults <= 0 {
		c.MaxSearchResults = 50
	}
	if c.CacheDir == "" {
		c.CacheDir = "tmp/.xcache"
	}
	if c.DebounceMillis <= 0 {
		c.DebounceMillis = 200
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return c
}
