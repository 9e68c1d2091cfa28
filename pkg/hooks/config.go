// Package hooks runs user commands around snapshot export.
// Hooks are configured in hooks.yaml next to config.yaml and run before
// (pre-export) and after (post-export) the files are written.
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/cdash/pkg/config"
)

// FileName is the hooks file inside the config directory.
const FileName = "hooks.yaml"

// HookPhase represents when a hook runs
type HookPhase string

const (
	// PreExport runs before any file is written. Failure cancels the export.
	PreExport HookPhase = "pre-export"
	// PostExport runs after the files are written. Failure is reported but the files stay.
	PostExport HookPhase = "post-export"
)

// On-error policies.
const (
	OnErrorFail     = "fail"
	OnErrorContinue = "continue"
)

// Hook defines a single hook configuration
type Hook struct {
	Name    string            `yaml:"name" json:"name"`
	Command string            `yaml:"command" json:"command"`                       // run with sh -c
	Timeout time.Duration     `yaml:"timeout,omitempty" json:"timeout,omitempty"`   // default 30s
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`           // values are expanded
	OnError string            `yaml:"on_error,omitempty" json:"on_error,omitempty"` // fail or continue
}

// Config holds all hook configurations
type Config struct {
	Hooks HooksByPhase `yaml:"hooks" json:"hooks"`
}

// HooksByPhase organizes hooks by their execution phase
type HooksByPhase struct {
	PreExport  []Hook `yaml:"pre-export,omitempty" json:"pre-export,omitempty"`
	PostExport []Hook `yaml:"post-export,omitempty" json:"post-export,omitempty"`
}

// Empty reports whether c has no hooks. A nil config is empty.
func (c *Config) Empty() bool {
	return c == nil || len(c.Hooks.PreExport)+len(c.Hooks.PostExport) == 0
}

// ExportContext describes the export a hook runs around. It reaches the
// hook as environment variables.
type ExportContext struct {
	Dir       string    // CDASH_EXPORT_DIR
	Format    string    // CDASH_EXPORT_FORMAT: svg or png
	Files     []string  // CDASH_EXPORT_FILES, colon separated; empty before export
	Selection string    // CDASH_SELECTION: chart key
	RowCount  int       // CDASH_ROW_COUNT
	Timestamp time.Time // CDASH_TIMESTAMP (RFC3339)
}

// ToEnv converts export context to environment variables
func (c ExportContext) ToEnv() []string {
	return []string{
		"CDASH_EXPORT_DIR=" + c.Dir,
		"CDASH_EXPORT_FORMAT=" + c.Format,
		"CDASH_EXPORT_FILES=" + strings.Join(c.Files, string(os.PathListSeparator)),
		"CDASH_SELECTION=" + c.Selection,
		fmt.Sprintf("CDASH_ROW_COUNT=%d", c.RowCount),
		"CDASH_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}

// DefaultTimeout is the default hook execution timeout
const DefaultTimeout = 30 * time.Second

// Loader reads hooks.yaml.
type Loader struct {
	path     string
	config   *Config
	warnings []string
}

// LoaderOption configures the loader
type LoaderOption func(*Loader)

// WithPath reads hooks from path instead of the config directory.
func WithPath(path string) LoaderOption {
	return func(l *Loader) {
		l.path = path
	}
}

// NewLoader creates a new hook loader with options
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.path == "" {
		l.path = filepath.Join(config.ConfigDir(), FileName)
	}
	return l
}

// Path returns the file the loader reads.
func (l *Loader) Path() string {
	return l.path
}

// Load reads and normalizes the hooks file. A missing file means no hooks.
func (l *Loader) Load() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.config = &Config{}
			return nil
		}
		return fmt.Errorf("reading hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", l.path, err)
	}

	cfg.Hooks.PreExport, l.warnings = normalizeHooks(cfg.Hooks.PreExport, PreExport, l.warnings)
	cfg.Hooks.PostExport, l.warnings = normalizeHooks(cfg.Hooks.PostExport, PostExport, l.warnings)
	l.config = &cfg
	return nil
}

// normalizeHooks applies defaults, drops empty commands, and accumulates warnings.
func normalizeHooks(hooks []Hook, phase HookPhase, warnings []string) ([]Hook, []string) {
	var out []Hook
	for i := range hooks {
		hook := hooks[i]
		if strings.TrimSpace(hook.Command) == "" {
			warnings = append(warnings, fmt.Sprintf("%s hook %d has empty command; skipping", phase, i+1))
			continue
		}
		if hook.Timeout <= 0 {
			hook.Timeout = DefaultTimeout
		}
		switch hook.OnError {
		case OnErrorFail, OnErrorContinue:
		case "":
			if phase == PreExport {
				hook.OnError = OnErrorFail
			} else {
				hook.OnError = OnErrorContinue
			}
		default:
			warnings = append(warnings, fmt.Sprintf("%s hook %d: unknown on_error %q, using fail", phase, i+1, hook.OnError))
			hook.OnError = OnErrorFail
		}
		if hook.Name == "" {
			hook.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		out = append(out, hook)
	}
	return out, warnings
}

// Config returns the loaded configuration (or empty if not loaded)
func (l *Loader) Config() *Config {
	if l.config == nil {
		return &Config{}
	}
	return l.config
}

// HasHooks returns true if any hooks are configured
func (l *Loader) HasHooks() bool {
	return !l.config.Empty()
}

// GetHooks returns hooks for a specific phase
func (c *Config) GetHooks(phase HookPhase) []Hook {
	if c == nil {
		return nil
	}
	switch phase {
	case PreExport:
		return c.Hooks.PreExport
	case PostExport:
		return c.Hooks.PostExport
	default:
		return nil
	}
}

// Warnings returns any warnings from loading
func (l *Loader) Warnings() []string {
	return l.warnings
}

// LoadDefault loads hooks.yaml from the config directory.
func LoadDefault() (*Loader, error) {
	loader := NewLoader()
	if err := loader.Load(); err != nil {
		return nil, err
	}
	return loader, nil
}

// UnmarshalYAML accepts timeouts as durations ("5s") or bare seconds.
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	// Must mirror Hook except for Timeout.
	type hookDTO struct {
		Name    string            `yaml:"name"`
		Command string            `yaml:"command"`
		Timeout string            `yaml:"timeout,omitempty"`
		Env     map[string]string `yaml:"env,omitempty"`
		OnError string            `yaml:"on_error,omitempty"`
	}

	var dto hookDTO
	if err := node.Decode(&dto); err != nil {
		return err
	}

	h.Name = dto.Name
	h.Command = dto.Command
	h.Env = dto.Env
	h.OnError = dto.OnError

	if dto.Timeout != "" {
		d, err := time.ParseDuration(dto.Timeout)
		if err == nil {
			h.Timeout = d
		} else {
			// "timeout: 30" means seconds
			var seconds float64
			if _, scanErr := fmt.Sscanf(dto.Timeout, "%f", &seconds); scanErr == nil {
				h.Timeout = time.Duration(seconds * float64(time.Second))
			} else {
				return fmt.Errorf("invalid timeout %q: %w", dto.Timeout, err)
			}
		}
	}

	return nil
}
