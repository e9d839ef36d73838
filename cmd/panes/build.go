package main

import (
	"github.com/odvcencio/panes/pkg/clipboard"
	"github.com/odvcencio/panes/pkg/config"
	perrors "github.com/odvcencio/panes/pkg/errors"
	"github.com/odvcencio/panes/pkg/ui/panes"
	"github.com/odvcencio/panes/pkg/ui/runtime"
	"github.com/odvcencio/panes/pkg/ui/textbuf"
)

// buildTree turns the configured layout into a runnable pane tree.
func buildTree(cfg *config.Config, clip clipboard.Clipboard) (*runtime.Tree, error) {
	root, specs, err := cfg.Layout.Build()
	if err != nil {
		return nil, err
	}
	built := make(map[int]runtime.Pane, len(specs))
	for id, spec := range specs {
		p, err := buildPane(spec, clip)
		if err != nil {
			return nil, perrors.Wrap(err, perrors.ErrCodeConfigInvalid, "building pane").WithContext("pane", id)
		}
		built[id] = p
	}
	return runtime.NewTree(root, built)
}

func buildPane(spec config.PaneSpec, clip clipboard.Clipboard) (runtime.Pane, error) {
	border, focused, err := spec.Borders()
	if err != nil {
		return nil, err
	}
	style, err := spec.Style()
	if err != nil {
		return nil, err
	}
	wrap := textbuf.Wrap
	if spec.NoWrap() {
		wrap = textbuf.NoWrap
	}

	switch spec.Kind {
	case config.KindInput:
		return panes.NewInputWithText(spec.Text).
			WithStyle(style).
			WithBorder(border).
			WithFocusedBorder(focused).
			WithPlaceholder(spec.Placeholder).
			WithClipboard(clip).
			WithWrapMode(wrap), nil
	case config.KindSelectable:
		return panes.NewSelectable(spec.Text).
			WithStyle(style).
			WithBorder(border).
			WithFocusedBorder(focused).
			WithClipboard(clip).
			WithWrapMode(wrap).
			WithLanguage(spec.Language), nil
	case config.KindText:
		return panes.NewText(spec.Text).
			WithStyle(style).
			WithBorder(border).
			WithFocusedBorder(focused), nil
	default:
		return panes.Noop{}, nil
	}
}
