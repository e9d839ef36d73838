package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/odvcencio/panes/pkg/config"
	perrors "github.com/odvcencio/panes/pkg/errors"
	"github.com/odvcencio/panes/pkg/ui/layout"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Input.DoubleClickWindow() != 300*time.Millisecond {
		t.Fatalf("unexpected double click window %v", cfg.Input.DoubleClickWindow())
	}
	if cfg.Input.PollInterval() != 50*time.Millisecond {
		t.Fatalf("unexpected poll interval %v", cfg.Input.PollInterval())
	}
	bindings, err := cfg.Input.Bindings()
	if err != nil || len(bindings) == 0 {
		t.Fatalf("expected default quit bindings, got %v (%v)", bindings, err)
	}

	root, panes, err := cfg.Layout.Build()
	if err != nil {
		t.Fatalf("build default layout: %v", err)
	}
	if got := root.PaneIDs(); len(got) != 3 {
		t.Fatalf("expected 3 panes, got %v", got)
	}
	if panes[0].Kind != config.KindInput || panes[1].Kind != config.KindSelectable || panes[2].Kind != config.KindText {
		t.Fatalf("unexpected pane kinds: %+v", panes)
	}
	if root.Direction != layout.Horizontal || root.Gutter != config.DefaultGutter {
		t.Fatalf("unexpected root split: %v gutter %d", root.Direction, root.Gutter)
	}
}

func TestLoadHierarchy(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	t.Setenv("HOME", home)

	writeConfig(t, filepath.Join(home, ".panes"), `
input:
  double_click_ms: 450
  hover_focus: true
logging:
  level: debug
`)
	writeConfig(t, filepath.Join(project, ".panes"), `
input:
  double_click_ms: 500
layout:
  direction: vertical
  children:
    - pane: {id: 7, kind: text, text: hello}
`)

	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(project); err != nil {
		t.Fatalf("chdir project: %v", err)
	}

	t.Setenv("PANES_METRICS_ADDR", "127.0.0.1:9100")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load returned error: %v", err)
	}

	if cfg.Input.DoubleClickMS != 500 {
		t.Fatalf("expected project double click override, got %d", cfg.Input.DoubleClickMS)
	}
	if !cfg.Input.HoverFocus {
		t.Fatalf("expected user hover_focus to survive project merge")
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected user log level, got %q", cfg.Logging.Level)
	}
	if cfg.Telemetry.MetricsAddr != "127.0.0.1:9100" {
		t.Fatalf("expected env metrics addr, got %q", cfg.Telemetry.MetricsAddr)
	}

	root, panes, err := cfg.Layout.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ids := root.PaneIDs(); len(ids) != 1 || ids[0] != 7 {
		t.Fatalf("project layout should replace the default wholesale, got %v", ids)
	}
	if panes[7].Text != "hello" {
		t.Fatalf("unexpected pane spec %+v", panes[7])
	}
}

func TestLoadFromPath_KeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
input:
  click_distance: 1.5
`)

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Input.ClickDistance != 1.5 {
		t.Fatalf("expected click distance 1.5, got %g", cfg.Input.ClickDistance)
	}
	if cfg.Input.DoubleClickMS != config.DefaultDoubleClickMS {
		t.Fatalf("expected default double click, got %d", cfg.Input.DoubleClickMS)
	}
	if len(cfg.Layout.Children) != 3 {
		t.Fatalf("expected default layout to be kept, got %+v", cfg.Layout)
	}
}

func TestLoadFromPath_QuitKeysReplaced(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
input:
  quit_keys: ["ctrl+c"]
`)

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if len(cfg.Input.QuitKeys) != 1 || cfg.Input.QuitKeys[0] != "ctrl+c" {
		t.Fatalf("unexpected quit keys %v", cfg.Input.QuitKeys)
	}
}

func TestLoadFromPath_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := config.LoadFromPath(filepath.Join(dir, "missing.yaml"))
	if !perrors.IsCode(err, perrors.ErrCodeConfigLoad) {
		t.Fatalf("expected CONFIG_LOAD for missing file, got %v", err)
	}

	bad := writeConfig(t, filepath.Join(dir, "bad"), "input: [unterminated\n")
	_, err = config.LoadFromPath(bad)
	if !perrors.IsCode(err, perrors.ErrCodeConfigParse) {
		t.Fatalf("expected CONFIG_PARSE for bad yaml, got %v", err)
	}

	invalid := writeConfig(t, filepath.Join(dir, "invalid"), "input:\n  double_click_ms: -1\n")
	_, err = config.LoadFromPath(invalid)
	if !perrors.IsCode(err, perrors.ErrCodeConfigInvalid) {
		t.Fatalf("expected CONFIG_INVALID for negative window, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "logging:\n  level: warn\n")
	t.Setenv("PANES_LOG_LEVEL", "error")
	t.Setenv("PANES_LOG_DIR", "/tmp/panes-logs")
	t.Setenv("PANES_DOUBLE_CLICK_MS", "250")
	t.Setenv("PANES_HOVER_FOCUS", "yes")

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Dir != "/tmp/panes-logs" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.Input.DoubleClickMS != 250 || !cfg.Input.HoverFocus {
		t.Fatalf("unexpected input config %+v", cfg.Input)
	}
}

func TestEnvOverrides_IgnoresGarbage(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "{}\n")
	t.Setenv("PANES_DOUBLE_CLICK_MS", "soon")
	t.Setenv("PANES_HOVER_FOCUS", "maybe")

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Input.DoubleClickMS != config.DefaultDoubleClickMS || cfg.Input.HoverFocus {
		t.Fatalf("garbage env values should be ignored: %+v", cfg.Input)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		code   perrors.ErrorCode
	}{
		{"poll interval", func(c *config.Config) { c.Input.PollIntervalMS = 0 }, perrors.ErrCodeConfigInvalid},
		{"animation interval", func(c *config.Config) { c.Input.AnimationIntervalMS = -5 }, perrors.ErrCodeConfigInvalid},
		{"click distance", func(c *config.Config) { c.Input.ClickDistance = -1 }, perrors.ErrCodeConfigInvalid},
		{"quit keys", func(c *config.Config) { c.Input.QuitKeys = []string{"hyper+x"} }, perrors.ErrCodeConfigInvalid},
		{"log level", func(c *config.Config) { c.Logging.Level = "loud" }, perrors.ErrCodeConfigInvalid},
		{"initial focus", func(c *config.Config) { c.Input.InitialFocus = 42 }, perrors.ErrCodeConfigInvalid},
		{"empty layout", func(c *config.Config) { c.Layout = config.NodeSpec{} }, perrors.ErrCodeLayoutInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !perrors.IsCode(err, tt.code) {
				t.Fatalf("expected %s, got %v", tt.code, err)
			}
		})
	}
}
