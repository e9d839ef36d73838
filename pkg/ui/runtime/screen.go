package runtime

import (
	"context"

	"github.com/odvcencio/panes/pkg/observability"
	"github.com/odvcencio/panes/pkg/ui/backend"
	"github.com/odvcencio/panes/pkg/ui/event"
)

// Screen owns the cell buffer and the dispatcher for one pane tree.
// It is used from a single goroutine.
type Screen struct {
	buffer *Buffer
	ctx    *RenderContext
	tree   *Tree
}

// NewScreen creates a screen with the given dimensions.
func NewScreen(w, h int) *Screen {
	return &Screen{
		buffer: NewBuffer(w, h),
		ctx:    NewRenderContext(),
	}
}

// Size returns the screen dimensions.
func (s *Screen) Size() (w, h int) {
	return s.buffer.Size()
}

// Resize changes the screen dimensions.
func (s *Screen) Resize(w, h int) {
	s.buffer.Resize(w, h)
}

// Buffer returns the screen's render buffer.
func (s *Screen) Buffer() *Buffer {
	return s.buffer
}

// Context returns the dispatcher.
func (s *Screen) Context() *RenderContext {
	return s.ctx
}

// Tree returns the active pane tree.
func (s *Screen) Tree() *Tree {
	return s.tree
}

// SetTree replaces the pane tree. Focus on a pane that no longer exists is
// dropped.
func (s *Screen) SetTree(tree *Tree) {
	s.tree = tree
	if id, ok := s.ctx.FocusedPane(); ok && !tree.Has(id) {
		s.ctx.ClearFocus()
	}
}

// Focus lays the tree out and gives id explicit focus.
func (s *Screen) Focus(id int) bool {
	s.ctx.relayout(s.tree, s.buffer.Bounds())
	return s.ctx.SetFocus(s.tree, id)
}

// Render clears the buffer and draws every pane.
func (s *Screen) Render() {
	s.buffer.Clear()
	if s.tree != nil {
		s.ctx.Render(s.tree, s.buffer)
	}
}

// Forward routes ev to the panes and reports whether a redraw is needed.
func (s *Screen) Forward(ctx context.Context, ev event.Event) bool {
	if s.tree == nil {
		return false
	}
	ctx, span := observability.StartSpan(ctx, "Screen.Forward")
	defer span.End()

	redraw := s.ctx.ForwardEvent(s.tree, ev, s.buffer.Bounds())
	observability.SetAttributes(ctx,
		observability.AttrEventKind.String(event.Name(ev)),
		observability.AttrRedraw.Bool(redraw),
	)
	return redraw
}

// Flush sends changed cells to target and clears the dirty set. Wide-rune
// continuation cells are skipped; the target draws them with the rune.
func (s *Screen) Flush(target backend.RenderTarget) int {
	flushed := 0
	s.buffer.ForEachDirtyCell(func(x, y int, cell Cell) {
		if cell.Rune == 0 {
			return
		}
		target.SetContent(x, y, cell.Rune, nil, cell.Style)
		flushed++
	})
	s.buffer.ClearDirty()
	return flushed
}
