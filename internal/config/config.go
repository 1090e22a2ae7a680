// Package config loads the JSON settings file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kk-code-lab/rtree/internal/state"
)

// Config represents the settings file.
type Config struct {
	Panel PanelConfig `json:"panel"`
	Log   LogConfig   `json:"log"`
	Store StoreConfig `json:"store"`
	Watch WatchConfig `json:"watch"`
}

// PanelConfig holds display settings for the tree.
type PanelConfig struct {
	DefaultWidth int  `json:"defaultWidth"`
	IndentSize   int  `json:"indentSize"`
	FileIcons    bool `json:"fileIcons"`
	FolderIcons  bool `json:"folderIcons"`
	GitStatus    bool `json:"gitStatus"`
	ShowIgnored  bool `json:"showIgnored"`
}

type LogConfig struct {
	Level string `json:"level"`
	Path  string `json:"path"`
}

type StoreConfig struct {
	Path string `json:"path"` // empty uses the cache directory
}

type WatchConfig struct {
	DebounceMs int  `json:"debounceMs"`
	Enabled    bool `json:"enabled"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	display := state.DefaultDisplayConfig()
	return Config{
		Panel: PanelConfig{
			DefaultWidth: 40,
			IndentSize:   display.IndentSize,
			FileIcons:    display.FileIcons,
			FolderIcons:  display.FolderIcons,
			GitStatus:    display.GitStatus,
			ShowIgnored:  true,
		},
		Log:   LogConfig{Level: "info"},
		Watch: WatchConfig{DebounceMs: 200, Enabled: true},
	}
}

// DefaultPath returns the settings file location, or "" when the user has
// no config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "rtree", "config.json")
}

// Load reads path over the defaults. A missing file yields the defaults;
// keys absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects values the panel cannot draw with.
func (c Config) Validate() error {
	if c.Panel.DefaultWidth < 10 {
		return fmt.Errorf("panel.defaultWidth must be at least 10, got %d", c.Panel.DefaultWidth)
	}
	if c.Panel.IndentSize < 0 || c.Panel.IndentSize > 16 {
		return fmt.Errorf("panel.indentSize must be between 0 and 16, got %d", c.Panel.IndentSize)
	}
	if c.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch.debounceMs must not be negative")
	}
	return nil
}

// Display converts the panel section into row display settings.
func (c Config) Display() state.DisplayConfig {
	return state.DisplayConfig{
		IndentSize:  c.Panel.IndentSize,
		FileIcons:   c.Panel.FileIcons,
		FolderIcons: c.Panel.FolderIcons,
		GitStatus:   c.Panel.GitStatus,
	}
}

// Debounce returns the watcher debounce interval.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}
