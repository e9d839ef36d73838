package runtime

import (
	"sync"
	"testing"

	perrors "github.com/odvcencio/panes/pkg/errors"
	"github.com/odvcencio/panes/pkg/ui/backend"
	"github.com/odvcencio/panes/pkg/ui/event"
	"github.com/odvcencio/panes/pkg/ui/layout"
)

// recordPane draws its label and records what it receives.
type recordPane struct {
	label  string
	redraw bool

	mu      sync.Mutex
	renders []PaneContext
	events  []event.Event
	focus   []bool
}

func (p *recordPane) Render(ctx PaneContext, buf *Buffer) {
	p.mu.Lock()
	p.renders = append(p.renders, ctx)
	p.mu.Unlock()
	label := p.label
	if ctx.Focused {
		label += "*"
	}
	buf.SetStringClipped(ctx.Rect.X, ctx.Rect.Y, label, backend.DefaultStyle(), ctx.Rect)
}

func (p *recordPane) HandleEvent(ctx PaneContext, ev event.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if f, ok := ev.(event.Focus); ok {
		p.focus = append(p.focus, f.Focused)
		return false
	}
	p.events = append(p.events, ev)
	return p.redraw
}

func (p *recordPane) lastRender() PaneContext {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renders[len(p.renders)-1]
}

func (p *recordPane) eventCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func (p *recordPane) animationCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, ev := range p.events {
		if _, ok := ev.(event.Animation); ok {
			n++
		}
	}
	return n
}

func (p *recordPane) focusHistory() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.focus...)
}

func twoPaneTree(t *testing.T) (*Tree, *recordPane, *recordPane) {
	t.Helper()
	left, right := &recordPane{label: "L"}, &recordPane{label: "R"}
	tree, err := NewTree(
		layout.HSplit(0, layout.Weighted(1, layout.Pane(0)), layout.Weighted(1, layout.Pane(1))),
		map[int]Pane{0: left, 1: right},
	)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	return tree, left, right
}

func TestNewTree_MissingPane(t *testing.T) {
	_, err := NewTree(layout.VSplit(0, layout.Weighted(1, layout.Pane(0)), layout.Weighted(1, layout.Pane(7))),
		map[int]Pane{0: &recordPane{}})
	if !perrors.IsCode(err, perrors.ErrCodeLayoutInvalid) {
		t.Fatalf("got %v, want LAYOUT_INVALID", err)
	}

	_, err = NewTree(layout.HSplit(-1, layout.Weighted(1, layout.Pane(0))), map[int]Pane{0: &recordPane{}})
	if !perrors.IsCode(err, perrors.ErrCodeLayoutInvalid) {
		t.Fatalf("negative gutter: got %v, want LAYOUT_INVALID", err)
	}
}

func TestRenderContext_Render(t *testing.T) {
	tree, left, right := twoPaneTree(t)
	buf := NewBuffer(20, 4)
	rc := NewRenderContext()

	rc.Render(tree, buf)

	if got := left.lastRender().Rect; got != layout.NewRect(0, 0, 10, 4) {
		t.Errorf("left rect = %v", got)
	}
	if got := right.lastRender().Rect; got != layout.NewRect(10, 0, 10, 4) {
		t.Errorf("right rect = %v", got)
	}
	if got := buf.Text(0); got != "L         R         " {
		t.Errorf("row 0 = %q", got)
	}
	if r, ok := rc.Rect(1); !ok || r.X != 10 {
		t.Errorf("Rect(1) = %v, %v", r, ok)
	}
	if _, ok := rc.Rect(99); ok {
		t.Error("unknown pane should report false")
	}
}

func TestRenderContext_ClickMovesFocus(t *testing.T) {
	tree, left, right := twoPaneTree(t)
	area := layout.NewRect(0, 0, 20, 4)
	rc := NewRenderContext()

	if !rc.SetFocus(tree, 0) {
		t.Fatal("SetFocus(0) should succeed")
	}
	if rc.SetFocus(tree, 0) {
		t.Error("refocusing the same pane should report no change")
	}
	if rc.SetFocus(tree, 42) {
		t.Error("focusing an unknown pane should fail")
	}

	redraw := rc.ForwardEvent(tree, event.Mouse{X: 15, Y: 1, Kind: event.MouseDown}, area)
	if !redraw {
		t.Error("focus change should request a redraw")
	}
	if id, ok := rc.FocusedPane(); !ok || id != 1 {
		t.Errorf("focused = %d, %v; want 1", id, ok)
	}
	if got := left.focusHistory(); len(got) != 2 || got[0] != true || got[1] != false {
		t.Errorf("left focus events = %v, want [true false]", got)
	}
	if got := right.focusHistory(); len(got) != 1 || got[0] != true {
		t.Errorf("right focus events = %v, want [true]", got)
	}
	if left.eventCount() != 1 || right.eventCount() != 1 {
		t.Errorf("every pane should see the click: left=%d right=%d", left.eventCount(), right.eventCount())
	}
}

func TestRenderContext_ForwardORsResults(t *testing.T) {
	tree, left, right := twoPaneTree(t)
	area := layout.NewRect(0, 0, 20, 4)
	rc := NewRenderContext()

	if rc.ForwardEvent(tree, event.Key{Rune: 'x'}, area) {
		t.Error("no pane asked for a redraw")
	}
	right.redraw = true
	if !rc.ForwardEvent(tree, event.Key{Rune: 'y'}, area) {
		t.Error("one pane asked for a redraw")
	}
	if left.eventCount() != 2 {
		t.Errorf("left saw %d events, want 2 with no short-circuit", left.eventCount())
	}
}

func TestRenderContext_HoverFocus(t *testing.T) {
	tree, _, _ := twoPaneTree(t)
	area := layout.NewRect(0, 0, 20, 4)
	rc := NewRenderContext()
	rc.SetFocus(tree, 0)
	rc.ForwardEvent(tree, event.Mouse{X: 12, Y: 0, Kind: event.MouseMoved}, area)

	if !rc.IsFocused(0) || rc.IsFocused(1) {
		t.Error("without hover focus, explicit focus holds")
	}
	rc.SetHoverFocus(true)
	if rc.IsFocused(0) || !rc.IsFocused(1) {
		t.Error("hover should win over explicit focus")
	}

	rc.ForwardEvent(tree, event.Mouse{X: 50, Y: 50, Kind: event.MouseMoved}, area)
	if !rc.IsFocused(0) {
		t.Error("mouse outside every pane falls back to explicit focus")
	}

	rc.ClearFocus()
	if _, ok := rc.FocusedPane(); ok || rc.IsFocused(0) {
		t.Error("ClearFocus should drop explicit focus")
	}
}

func TestRenderContext_PaneAtOverflow(t *testing.T) {
	a, b := &recordPane{}, &recordPane{}
	// Minimums overflow the container; pane 2 runs past the right edge.
	tree, err := NewTree(layout.HSplit(0,
		layout.Weighted(1, layout.Pane(1)).WithMin(15),
		layout.Weighted(1, layout.Pane(2)).WithMin(15),
	), map[int]Pane{1: a, 2: b})
	if err != nil {
		t.Fatal(err)
	}
	rc := NewRenderContext()
	rc.ForwardEvent(tree, event.Animation{}, layout.NewRect(0, 0, 20, 2))

	if id, ok := rc.PaneAt(3, 1); !ok || id != 1 {
		t.Errorf("PaneAt(3,1) = %d, %v", id, ok)
	}
	if id, ok := rc.PaneAt(16, 1); !ok || id != 2 {
		t.Errorf("PaneAt(16,1) = %d, %v", id, ok)
	}
	if r, _ := rc.Rect(2); r != layout.NewRect(15, 0, 15, 2) {
		t.Errorf("Rect(2) = %v, want it to extend past the area", r)
	}
	if _, ok := rc.PaneAt(40, 1); ok {
		t.Error("PaneAt outside every rect should fail")
	}
}

func TestScreen_RenderAndFlush(t *testing.T) {
	tree, _, _ := twoPaneTree(t)
	s := NewScreen(20, 2)
	s.SetTree(tree)
	s.Focus(1)
	s.Render()

	target := &recordingTarget{}
	if n := s.Flush(target); n != 40 {
		t.Errorf("first flush wrote %d cells, want 40", n)
	}
	s.Render()
	target.cells = nil
	s.Flush(target)
	for _, c := range target.cells {
		if c != 'L' && c != 'R' && c != '*' {
			t.Errorf("unchanged blank cells should not be resent, got %q", c)
		}
	}

	s.SetTree(mustTree(t, layout.Pane(5), map[int]Pane{5: &recordPane{}}))
	if _, ok := s.Context().FocusedPane(); ok {
		t.Error("focus on a removed pane should be dropped")
	}
}

type recordingTarget struct {
	cells []rune
}

func (r *recordingTarget) Size() (int, int) { return 0, 0 }

func (r *recordingTarget) SetContent(x, y int, mainc rune, comb []rune, style backend.Style) {
	r.cells = append(r.cells, mainc)
}

func mustTree(t *testing.T, root *layout.Node, panes map[int]Pane) *Tree {
	t.Helper()
	tree, err := NewTree(root, panes)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	return tree
}
