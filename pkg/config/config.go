// Package config loads framekeep settings from a TOML file, falling back to
// defaults when no file exists.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"framekeep/pkg/pattern"
)

// DefaultPattern is the naming template applied when none is configured.
const DefaultPattern = "{{ title }} 〜 {{ counter|pad:4 }}"

// Config holds all framekeep settings.
type Config struct {
	// Root is the library directory holding the frame folders.
	Root string `toml:"root"`
	// Pattern is the naming template for kept frames.
	Pattern string `toml:"pattern"`
	// DatabasePath locates the decision and progress database.
	DatabasePath string `toml:"database_path"`
	// Journal enables the per-folder mutation journal during commits.
	Journal bool `toml:"journal"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return Config{
		Root:         filepath.Join(home, "Frames"),
		Pattern:      DefaultPattern,
		DatabasePath: filepath.Join(home, ".local", "share", "framekeep", "framekeep.db"),
		Journal:      true,
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "framekeep.toml"
	}

	return filepath.Join(base, "framekeep", "config.toml")
}

// Load reads the config file at path, overlaying the defaults. A missing
// file yields the defaults unchanged; a present but unreadable or invalid
// file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the settings are usable, including a render of the
// naming pattern so template errors surface at startup rather than mid-commit.
func (c Config) Validate() error {
	if c.Root == "" {
		return errors.New("root must not be empty")
	}
	if c.Pattern == "" {
		return errors.New("pattern must not be empty")
	}
	if c.DatabasePath == "" {
		return errors.New("database_path must not be empty")
	}

	_, err := pattern.Render(c.Pattern, pattern.Values{
		"title":   "Title",
		"year":    2000,
		"season":  "01",
		"episode": "01",
		"counter": 1,
	})
	if err != nil {
		return fmt.Errorf("pattern: %w", err)
	}

	return nil
}
