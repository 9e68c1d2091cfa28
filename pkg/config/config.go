// Package config handles loading and saving cdash configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/cdash/config.yaml
//   - State:   ~/.local/state/cdash/ (last selection)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// UIConfig holds UI preference settings.
type UIConfig struct {
	Language         string `yaml:"language,omitempty"`          // en, es
	DefaultSelection string `yaml:"default_selection,omitempty"` // key, label or 1-4
	TableHeight      int    `yaml:"table_height,omitempty"`      // Visible dataset rows
}

// ExportConfig controls snapshot export.
type ExportConfig struct {
	Dir    string `yaml:"dir,omitempty"`
	Format string `yaml:"format,omitempty"` // svg, png
}

// WatchConfig controls live reload of the data file.
type WatchConfig struct {
	Enabled      *bool         `yaml:"enabled,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
}

// Config is the top-level configuration for cdash.
type Config struct {
	DataPath string       `yaml:"data_path,omitempty"`
	UI       UIConfig     `yaml:"ui,omitempty"`
	Export   ExportConfig `yaml:"export,omitempty"`
	Watch    WatchConfig  `yaml:"watch,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			Language:    "en",
			TableHeight: 10,
		},
		Export: ExportConfig{
			Dir:    ".",
			Format: FormatSVG,
		},
		Watch: WatchConfig{
			PollInterval: 2 * time.Second,
		},
	}
}

// WatchEnabled reports whether live reload is on (default true).
func (c Config) WatchEnabled() bool {
	return c.Watch.Enabled == nil || *c.Watch.Enabled
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	switch c.Export.Format {
	case "", FormatSVG, FormatPNG:
	default:
		return fmt.Errorf("export.format %q: want svg or png", c.Export.Format)
	}
	if c.UI.TableHeight < 0 {
		return fmt.Errorf("ui.table_height must not be negative")
	}
	if c.Watch.PollInterval < 0 {
		return fmt.Errorf("watch.poll_interval must not be negative")
	}
	return nil
}

// ConfigDir returns the XDG config directory for cdash.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "cdash")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cdash")
}

// StateDir returns the XDG state directory for cdash.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "cdash")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "cdash")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Export.Format = strings.ToLower(cfg.Export.Format)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	cfg.DataPath = expandHome(cfg.DataPath)
	cfg.Export.Dir = expandHome(cfg.Export.Dir)

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// State is what cdash remembers between runs.
type State struct {
	LastSelection string `yaml:"last_selection,omitempty"`
}

func statePath() string {
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "state.yaml")
}

// LoadState reads the saved state. A missing file is an empty state.
func LoadState() (State, error) {
	var st State
	path := statePath()
	if path == "" {
		return st, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, fmt.Errorf("reading state: %w", err)
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("parsing state: %w", err)
	}
	return st, nil
}

// SaveState persists st under the XDG state directory.
func SaveState(st State) error {
	path := statePath()
	if path == "" {
		return fmt.Errorf("cannot determine state directory")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	return expandHome(path)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
