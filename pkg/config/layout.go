package config

import (
	"fmt"
	"strings"

	perrors "github.com/odvcencio/panes/pkg/errors"
	"github.com/odvcencio/panes/pkg/ui/backend"
	"github.com/odvcencio/panes/pkg/ui/layout"
	"github.com/odvcencio/panes/pkg/ui/runtime"
)

// Pane kinds understood by the CLI.
const (
	KindInput      = "input"
	KindSelectable = "selectable"
	KindText       = "text"
	KindNoop       = "noop"
)

// NodeSpec describes a layout node in YAML. A node with a pane is a leaf;
// otherwise it is a split over its children. Weight, Size, Min and Max
// size the node within its parent.
type NodeSpec struct {
	Direction string     `yaml:"direction,omitempty"`
	Gutter    *int       `yaml:"gutter,omitempty"`
	Weight    int        `yaml:"weight,omitempty"`
	Size      *int       `yaml:"size,omitempty"`
	Min       *int       `yaml:"min,omitempty"`
	Max       *int       `yaml:"max,omitempty"`
	Children  []NodeSpec `yaml:"children,omitempty"`
	Pane      *PaneSpec  `yaml:"pane,omitempty"`
}

// PaneSpec describes the content of a leaf.
type PaneSpec struct {
	ID            int    `yaml:"id"`
	Kind          string `yaml:"kind"`
	Text          string `yaml:"text,omitempty"`
	Placeholder   string `yaml:"placeholder,omitempty"`
	Border        string `yaml:"border,omitempty"`
	FocusedBorder string `yaml:"focused_border,omitempty"`
	Language      string `yaml:"language,omitempty"`
	Color         string `yaml:"color,omitempty"`
	Wrap          string `yaml:"wrap,omitempty"`
}

// Borders returns the unfocused and focused border styles, defaulting to
// single and thick.
func (p PaneSpec) Borders() (runtime.BorderStyle, runtime.BorderStyle, error) {
	border, focused := runtime.BorderSingle, runtime.BorderThick
	var err error
	if p.Border != "" {
		if border, err = runtime.ParseBorderStyle(p.Border); err != nil {
			return 0, 0, err
		}
	}
	if p.FocusedBorder != "" {
		if focused, err = runtime.ParseBorderStyle(p.FocusedBorder); err != nil {
			return 0, 0, err
		}
	}
	return border, focused, nil
}

// Style returns the pane's text style.
func (p PaneSpec) Style() (backend.Style, error) {
	c, err := backend.ParseColor(p.Color)
	if err != nil {
		return backend.DefaultStyle(), err
	}
	return backend.DefaultStyle().Foreground(c), nil
}

// NoWrap reports whether long lines should scroll instead of wrap.
func (p PaneSpec) NoWrap() bool {
	return strings.EqualFold(p.Wrap, "nowrap") || strings.EqualFold(p.Wrap, "none")
}

func (p PaneSpec) validate() error {
	switch p.Kind {
	case KindInput, KindSelectable, KindText, KindNoop:
	default:
		return fmt.Errorf("unknown kind %q (valid: input, selectable, text, noop)", p.Kind)
	}
	if _, _, err := p.Borders(); err != nil {
		return err
	}
	if _, err := p.Style(); err != nil {
		return err
	}
	switch strings.ToLower(p.Wrap) {
	case "", "wrap", "nowrap", "none":
	default:
		return fmt.Errorf("unknown wrap mode %q", p.Wrap)
	}
	return nil
}

// Build converts the node description into a layout tree and the pane specs keyed by
// id. The tree is validated.
func (n NodeSpec) Build() (*layout.Node, map[int]PaneSpec, error) {
	panes := make(map[int]PaneSpec)
	root, err := n.build("layout", panes)
	if err != nil {
		return nil, nil, err
	}
	if err := root.Validate(); err != nil {
		return nil, nil, perrors.Wrap(err, perrors.ErrCodeLayoutInvalid, "invalid layout")
	}
	return root, panes, nil
}

func (n NodeSpec) build(path string, panes map[int]PaneSpec) (*layout.Node, error) {
	invalid := func(format string, args ...any) error {
		return perrors.New(perrors.ErrCodeLayoutInvalid, fmt.Sprintf(format, args...)).WithContext("node", path)
	}

	if n.Pane != nil {
		if len(n.Children) > 0 {
			return nil, invalid("%s: a node cannot have both a pane and children", path)
		}
		if err := n.Pane.validate(); err != nil {
			return nil, invalid("%s: pane %d: %v", path, n.Pane.ID, err)
		}
		if _, dup := panes[n.Pane.ID]; dup {
			return nil, invalid("%s: duplicate pane id %d", path, n.Pane.ID)
		}
		panes[n.Pane.ID] = *n.Pane
		return layout.Pane(n.Pane.ID), nil
	}

	if len(n.Children) == 0 {
		return nil, invalid("%s: split needs at least one child", path)
	}
	dir, err := layout.ParseDirection(n.Direction)
	if err != nil {
		return nil, invalid("%s: %v", path, err)
	}
	gutter := 0
	if n.Gutter != nil {
		gutter = *n.Gutter
	}

	children := make([]layout.Child, 0, len(n.Children))
	for i, spec := range n.Children {
		node, err := spec.build(fmt.Sprintf("%s.children[%d]", path, i), panes)
		if err != nil {
			return nil, err
		}
		children = append(children, spec.child(node))
	}
	return layout.Split(dir, gutter, children...), nil
}

func (n NodeSpec) child(node *layout.Node) layout.Child {
	if n.Size != nil {
		return layout.Fixed(*n.Size, node)
	}
	weight := n.Weight
	if weight == 0 {
		weight = 1
	}
	c := layout.Weighted(weight, node)
	if n.Min != nil {
		c = c.WithMin(*n.Min)
	}
	if n.Max != nil {
		c = c.WithMax(*n.Max)
	}
	return c
}

// DefaultLayout is a horizontal split of an input, a highlighted viewer
// and a help text.
func DefaultLayout() NodeSpec {
	gutter, inputMin, paneMin := DefaultGutter, 3, 5
	return NodeSpec{
		Direction: "horizontal",
		Gutter:    &gutter,
		Children: []NodeSpec{
			{Weight: 1, Min: &inputMin, Pane: &PaneSpec{ID: 0, Kind: KindInput, Placeholder: "Type here..."}},
			{Weight: 1, Min: &paneMin, Pane: &PaneSpec{ID: 1, Kind: KindSelectable, Text: sampleCode, Language: "go"}},
			{Weight: 2, Min: &paneMin, Pane: &PaneSpec{ID: 2, Kind: KindText, Text: helpText}},
		},
	}
}

const sampleCode = `package main

import "fmt"

func main() {
	fmt.Println("hello, panes")
}`

const helpText = `Click a pane to focus it.
Double-click selects a word, triple-click a line.
Drag to select, Ctrl+C copies.
Esc or Ctrl+Q quits.`
