package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/odvcencio/panes/pkg/config"
	"github.com/odvcencio/panes/pkg/terminal"
	"github.com/odvcencio/panes/pkg/ui/backend/ansi"
	"github.com/odvcencio/panes/pkg/ui/runtime"
)

const (
	demoWidth  = 80
	demoHeight = 12
)

// demoSize uses the terminal width when out is a terminal and a fixed
// height so the frame fits in scrollback.
func demoSize(out io.Writer) (int, int) {
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 4 {
			return w - 2, demoHeight
		}
	}
	return demoWidth, demoHeight
}

// runDemo prints the effective config, the computed pane rects and one
// rendered frame without taking over the terminal.
func runDemo(out io.Writer, cfg *config.Config, tree *runtime.Tree, width, height int) error {
	_, specs, err := cfg.Layout.Build()
	if err != nil {
		return err
	}
	w := terminal.NewWithOutput(out)

	w.Header("Config")
	w.KeyValues(configSummary(cfg, len(specs)))

	screen := runtime.NewScreen(width, height)
	screen.SetTree(tree)
	if !screen.Focus(cfg.Input.InitialFocus) {
		if ids := tree.IDs(); len(ids) > 0 {
			screen.Focus(ids[0])
		}
	}
	screen.Render()

	rows := make([][]string, 0, len(specs))
	for _, id := range tree.IDs() {
		r, ok := screen.Context().Rect(id)
		if !ok {
			continue
		}
		focused := ""
		if screen.Context().IsFocused(id) {
			focused = "yes"
		}
		rows = append(rows, []string{
			strconv.Itoa(id), specs[id].Kind,
			strconv.Itoa(r.X), strconv.Itoa(r.Y), strconv.Itoa(r.Width), strconv.Itoa(r.Height),
			focused,
		})
	}
	w.Newline()
	w.Header("Layout")
	if err := w.Table([]string{"pane", "kind", "x", "y", "width", "height", "focused"}, rows); err != nil {
		return err
	}

	frame := ansi.New(out, ansi.WithSize(width, height))
	screen.Flush(frame)
	w.Frame(fmt.Sprintf("frame %dx%d", width, height), frame.Lines())
	return nil
}

func configSummary(cfg *config.Config, paneCount int) [][2]string {
	direction := cfg.Layout.Direction
	if direction == "" {
		direction = "horizontal"
	}
	gutter := 0
	if cfg.Layout.Gutter != nil {
		gutter = *cfg.Layout.Gutter
	}
	quit := "esc, ctrl+q"
	if bindings, err := cfg.Input.Bindings(); err == nil {
		names := make([]string, len(bindings))
		for i, b := range bindings {
			names[i] = b.String()
		}
		quit = strings.Join(names, ", ")
	}
	return [][2]string{
		{"direction", direction},
		{"gutter", strconv.Itoa(gutter)},
		{"panes", strconv.Itoa(paneCount)},
		{"double click", cfg.Input.DoubleClickWindow().String()},
		{"hover focus", strconv.FormatBool(cfg.Input.HoverFocus)},
		{"quit keys", quit},
	}
}
