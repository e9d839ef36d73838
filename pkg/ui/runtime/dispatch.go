package runtime

import (
	"github.com/odvcencio/panes/pkg/ui/event"
	"github.com/odvcencio/panes/pkg/ui/layout"
)

// RenderContext walks a pane tree to render it and route events. It owns
// focus state and a rect cache rebuilt on every pass.
type RenderContext struct {
	focused    int
	hasFocus   bool
	hoverFocus bool

	mouseX, mouseY int
	hasMouse       bool

	placements []layout.Placement
}

// NewRenderContext creates a context with no focus.
func NewRenderContext() *RenderContext {
	return &RenderContext{}
}

// SetHoverFocus makes the pane under the mouse count as focused.
func (c *RenderContext) SetHoverFocus(on bool) {
	c.hoverFocus = on
}

// Render lays the tree out over buf and renders every pane in tree order.
func (c *RenderContext) Render(tree *Tree, buf *Buffer) {
	c.relayout(tree, buf.Bounds())
	for _, p := range c.placements {
		if pane := tree.Panes[p.ID]; pane != nil {
			pane.Render(c.paneContext(p), buf)
		}
	}
}

// ForwardEvent delivers ev to every pane and reports whether any asked for
// a redraw. A press over an unfocused pane moves focus there first.
func (c *RenderContext) ForwardEvent(tree *Tree, ev event.Event, area layout.Rect) bool {
	c.relayout(tree, area)

	redraw := false
	if m, ok := ev.(event.Mouse); ok {
		switch m.Kind {
		case event.MouseMoved, event.MouseDrag, event.MouseDown:
			c.mouseX, c.mouseY, c.hasMouse = m.X, m.Y, true
		}
		if m.IsPress() {
			if id, ok := c.PaneAt(m.X, m.Y); ok && (!c.hasFocus || id != c.focused) {
				redraw = c.moveFocus(tree, id)
			}
		}
	}

	for _, p := range c.placements {
		if pane := tree.Panes[p.ID]; pane != nil {
			if pane.HandleEvent(c.paneContext(p), ev) {
				redraw = true
			}
		}
	}
	return redraw
}

// SetFocus gives id explicit focus, delivering Focus events to the old and
// new panes. It returns false when id is not in the tree or already focused.
func (c *RenderContext) SetFocus(tree *Tree, id int) bool {
	if tree == nil || !tree.Has(id) || (c.hasFocus && c.focused == id) {
		return false
	}
	return c.moveFocus(tree, id)
}

func (c *RenderContext) moveFocus(tree *Tree, id int) bool {
	old, had := c.focused, c.hasFocus
	c.focused, c.hasFocus = id, true

	if had {
		if pane := tree.Panes[old]; pane != nil {
			ctx := PaneContext{ID: old, Focused: false}
			ctx.Rect, _ = c.Rect(old)
			pane.HandleEvent(ctx, event.Focus{Focused: false})
		}
	}
	if pane := tree.Panes[id]; pane != nil {
		ctx := PaneContext{ID: id, Focused: true}
		ctx.Rect, _ = c.Rect(id)
		pane.HandleEvent(ctx, event.Focus{Focused: true})
	}
	return true
}

// FocusedPane returns the explicitly focused pane.
func (c *RenderContext) FocusedPane() (int, bool) {
	return c.focused, c.hasFocus
}

// ClearFocus drops explicit focus without delivering events.
func (c *RenderContext) ClearFocus() {
	c.focused, c.hasFocus = 0, false
}

// IsFocused reports whether id is focused. With hover focus on, a pane
// under the last mouse position wins over explicit focus.
func (c *RenderContext) IsFocused(id int) bool {
	if c.hoverFocus && c.hasMouse {
		if hovered, ok := c.PaneAt(c.mouseX, c.mouseY); ok {
			return hovered == id
		}
	}
	return c.hasFocus && c.focused == id
}

// PaneAt returns the first pane in tree order whose rect contains (x, y).
func (c *RenderContext) PaneAt(x, y int) (int, bool) {
	for _, p := range c.placements {
		if p.Rect.Contains(x, y) {
			return p.ID, true
		}
	}
	return 0, false
}

// Rect returns the rect computed for id on the last pass.
func (c *RenderContext) Rect(id int) (layout.Rect, bool) {
	return layout.Lookup(c.placements, id)
}

func (c *RenderContext) relayout(tree *Tree, area layout.Rect) {
	c.placements = c.placements[:0]
	if tree == nil {
		return
	}
	c.placements = append(c.placements, layout.Compute(tree.Root, area)...)
}

func (c *RenderContext) paneContext(p layout.Placement) PaneContext {
	return PaneContext{ID: p.ID, Rect: p.Rect, Focused: c.IsFocused(p.ID)}
}
