package config

import (
	"errors"
	"testing"

	perrors "github.com/odvcencio/panes/pkg/errors"
)

func TestMergeYAMLPreservesUnsetScalars(t *testing.T) {
	base := DefaultConfig()
	base.Input.HoverFocus = true

	if err := mergeYAML(base, []byte("input:\n  poll_interval_ms: 20\n"), "test.yaml"); err != nil {
		t.Fatalf("merge: %v", err)
	}

	if base.Input.PollIntervalMS != 20 {
		t.Fatalf("expected poll interval override, got %d", base.Input.PollIntervalMS)
	}
	if !base.Input.HoverFocus {
		t.Fatalf("hover_focus should remain true when not overridden")
	}
	if base.Input.DoubleClickMS != DefaultDoubleClickMS {
		t.Fatalf("double_click_ms should keep its default")
	}
}

func TestMergeYAMLRespectsFalseOverride(t *testing.T) {
	base := DefaultConfig()
	base.Input.HoverFocus = true

	if err := mergeYAML(base, []byte("input:\n  hover_focus: false\n"), "test.yaml"); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if base.Input.HoverFocus {
		t.Fatalf("explicit false should override")
	}
}

func TestMergeYAMLReplacesLayout(t *testing.T) {
	base := DefaultConfig()
	data := []byte(`
layout:
  pane:
    id: 3
    kind: noop
`)
	if err := mergeYAML(base, data, "test.yaml"); err != nil {
		t.Fatalf("merge: %v", err)
	}

	if len(base.Layout.Children) != 0 {
		t.Fatalf("default children should not leak into replaced layout: %+v", base.Layout.Children)
	}
	if base.Layout.Gutter != nil {
		t.Fatalf("default gutter should not leak into replaced layout")
	}
	if base.Layout.Pane == nil || base.Layout.Pane.ID != 3 {
		t.Fatalf("unexpected layout %+v", base.Layout)
	}
}

func TestMergeYAMLReplacesQuitKeys(t *testing.T) {
	base := DefaultConfig()
	base.Input.QuitKeys = []string{"esc", "ctrl+q", "ctrl+c"}

	if err := mergeYAML(base, []byte("input:\n  quit_keys: [\"q\"]\n"), "test.yaml"); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(base.Input.QuitKeys) != 1 || base.Input.QuitKeys[0] != "q" {
		t.Fatalf("quit keys should be replaced, got %v", base.Input.QuitKeys)
	}
}

func TestMergeYAMLParseError(t *testing.T) {
	err := mergeYAML(DefaultConfig(), []byte("input: [unterminated\n"), "broken.yaml")
	if !perrors.IsCode(err, perrors.ErrCodeConfigParse) {
		t.Fatalf("expected CONFIG_PARSE, got %v", err)
	}
	var pe *perrors.Error
	if !errors.As(err, &pe) || pe.Context["path"] != "broken.yaml" {
		t.Fatalf("expected path context, got %v", err)
	}
}

func TestWrapLoadErrorKeepsParseCode(t *testing.T) {
	parse := parseError(errString("boom"), "a.yaml")
	if got := wrapLoadError(parse, "a.yaml"); !perrors.IsCode(got, perrors.ErrCodeConfigParse) {
		t.Fatalf("parse errors should not be rewrapped, got %v", got)
	}
	if got := wrapLoadError(errString("denied"), "a.yaml"); !perrors.IsCode(got, perrors.ErrCodeConfigLoad) {
		t.Fatalf("expected CONFIG_LOAD, got %v", got)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
