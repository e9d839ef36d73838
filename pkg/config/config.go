package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	perrors "github.com/odvcencio/panes/pkg/errors"
	"github.com/odvcencio/panes/pkg/logging"
	"github.com/odvcencio/panes/pkg/ui/clicks"
)

// Default configuration values exported for documentation and validation
const (
	DefaultDoubleClickMS       = 300
	DefaultClickDistance       = 3.0
	DefaultPollIntervalMS      = 50
	DefaultAnimationIntervalMS = 100
	DefaultGutter              = 2
	DefaultLogLevel            = "info"
)

// Config represents the complete panes configuration
type Config struct {
	Layout    NodeSpec        `yaml:"layout"`
	Input     InputConfig     `yaml:"input"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// InputConfig tunes click synthesis, polling and focus.
type InputConfig struct {
	DoubleClickMS       int      `yaml:"double_click_ms"`
	ClickDistance       float64  `yaml:"click_distance"`
	PollIntervalMS      int      `yaml:"poll_interval_ms"`
	AnimationIntervalMS int      `yaml:"animation_interval_ms"`
	QuitKeys            []string `yaml:"quit_keys"`
	HoverFocus          bool     `yaml:"hover_focus"`
	InitialFocus        int      `yaml:"initial_focus"`
}

// DoubleClickWindow returns the multi-click window.
func (c InputConfig) DoubleClickWindow() time.Duration {
	return time.Duration(c.DoubleClickMS) * time.Millisecond
}

// PollInterval returns the backend poll timeout.
func (c InputConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// AnimationInterval returns the idle tick period.
func (c InputConfig) AnimationInterval() time.Duration {
	return time.Duration(c.AnimationIntervalMS) * time.Millisecond
}

// Bindings parses QuitKeys. An empty list means the defaults.
func (c InputConfig) Bindings() ([]clicks.Binding, error) {
	if len(c.QuitKeys) == 0 {
		return clicks.DefaultQuitKeys(), nil
	}
	return clicks.ParseBindings(c.QuitKeys)
}

// LoggingConfig controls the JSONL session logs. An empty Dir disables them.
type LoggingConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

// TelemetryConfig controls metrics and trace export.
type TelemetryConfig struct {
	MetricsAddr string `yaml:"metrics_addr"`
	TraceFile   string `yaml:"trace_file"`
}

// DefaultConfig returns the built-in configuration: an input, a selectable
// viewer and a text pane side by side.
func DefaultConfig() *Config {
	return &Config{
		Layout: DefaultLayout(),
		Input: InputConfig{
			DoubleClickMS:       DefaultDoubleClickMS,
			ClickDistance:       DefaultClickDistance,
			PollIntervalMS:      DefaultPollIntervalMS,
			AnimationIntervalMS: DefaultAnimationIntervalMS,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Load loads configuration from default locations with proper precedence:
// defaults, then ~/.panes/config.yaml, then ./.panes/config.yaml, then the
// environment.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	if home != "" {
		userConfigPath := filepath.Join(home, ".panes", "config.yaml")
		if err := loadAndMerge(cfg, userConfigPath); err != nil && !os.IsNotExist(err) {
			return nil, wrapLoadError(err, userConfigPath)
		}
	}

	projectConfigPath := filepath.Join(".", ".panes", "config.yaml")
	if err := loadAndMerge(cfg, projectConfigPath); err != nil && !os.IsNotExist(err) {
		return nil, wrapLoadError(err, projectConfigPath)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := loadAndMerge(cfg, path); err != nil {
		return nil, wrapLoadError(err, path)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func wrapLoadError(err error, path string) error {
	if perrors.IsCode(err, perrors.ErrCodeConfigParse) {
		return err
	}
	return perrors.Wrap(err, perrors.ErrCodeConfigLoad, "loading config").
		WithContext("path", path).
		WithRemediation("Check that the file exists and is readable")
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("PANES_LOG_DIR")); v != "" {
		cfg.Logging.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv("PANES_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("PANES_METRICS_ADDR")); v != "" {
		cfg.Telemetry.MetricsAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("PANES_DOUBLE_CLICK_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Input.DoubleClickMS = n
		}
	}
	if val, ok := envBool("PANES_HOVER_FOCUS"); ok {
		cfg.Input.HoverFocus = val
	}
}

func envBool(key string) (bool, bool) {
	val := os.Getenv(key)
	if val == "" {
		return false, false
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return perrors.New(perrors.ErrCodeConfigInvalid, fmt.Sprintf(format, args...))
	}

	if c.Input.DoubleClickMS <= 0 {
		return invalid("input.double_click_ms must be positive, got %d", c.Input.DoubleClickMS)
	}
	if c.Input.ClickDistance < 0 {
		return invalid("input.click_distance must not be negative, got %g", c.Input.ClickDistance)
	}
	if c.Input.PollIntervalMS <= 0 {
		return invalid("input.poll_interval_ms must be positive, got %d", c.Input.PollIntervalMS)
	}
	if c.Input.AnimationIntervalMS <= 0 {
		return invalid("input.animation_interval_ms must be positive, got %d", c.Input.AnimationIntervalMS)
	}
	if _, err := c.Input.Bindings(); err != nil {
		return perrors.Wrap(err, perrors.ErrCodeConfigInvalid, "input.quit_keys")
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return perrors.Wrap(err, perrors.ErrCodeConfigInvalid, "logging.level")
	}

	root, panes, err := c.Layout.Build()
	if err != nil {
		return err
	}
	if c.Input.InitialFocus != 0 {
		if _, ok := panes[c.Input.InitialFocus]; !ok {
			return invalid("input.initial_focus %d is not a pane in the layout %v", c.Input.InitialFocus, root.PaneIDs())
		}
	}
	return nil
}
