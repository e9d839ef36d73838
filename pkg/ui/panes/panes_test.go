package panes

import (
	"testing"

	"github.com/odvcencio/panes/pkg/clipboard"
	"github.com/odvcencio/panes/pkg/ui/backend"
	"github.com/odvcencio/panes/pkg/ui/event"
	"github.com/odvcencio/panes/pkg/ui/layout"
	"github.com/odvcencio/panes/pkg/ui/runtime"
	"github.com/odvcencio/panes/pkg/ui/terminal"
	"github.com/odvcencio/panes/pkg/ui/textbuf"
)

// A 20x5 pane with a border leaves an 18x3 content area at (1,1).
var (
	focused   = runtime.PaneContext{ID: 1, Rect: layout.NewRect(0, 0, 20, 5), Focused: true}
	unfocused = runtime.PaneContext{ID: 1, Rect: layout.NewRect(0, 0, 20, 5)}
)

func key(r rune) event.Key {
	return event.Key{Code: terminal.KeyRune, Rune: r}
}

func ctrl(r rune) event.Key {
	return event.Key{Code: terminal.KeyRune, Rune: r, Ctrl: true}
}

func special(k terminal.Key) event.Key {
	return event.Key{Code: k}
}

func mouse(kind event.MouseKind, x, y int) event.Mouse {
	return event.Mouse{X: x, Y: y, Kind: kind, Button: terminal.MouseLeft}
}

func render(p runtime.Pane, ctx runtime.PaneContext) *runtime.Buffer {
	buf := runtime.NewBuffer(ctx.Rect.Width, ctx.Rect.Height)
	p.Render(ctx, buf)
	return buf
}

func TestWordAt(t *testing.T) {
	buf := textbuf.NewFromString("Hello world! my_variable_name = 42")
	tests := []struct {
		pos        int
		start, end int
		ok         bool
	}{
		{pos: 2, start: 0, end: 5, ok: true},
		{pos: 8, start: 6, end: 11, ok: true},
		{pos: 5, ok: false},
		{pos: 11, ok: false},
		{pos: 20, start: 13, end: 29, ok: true},
		{pos: 33, start: 32, end: 34, ok: true},
		{pos: 99, ok: false},
	}
	for _, tt := range tests {
		start, end, ok := WordAt(buf, tt.pos)
		if ok != tt.ok || (ok && (start != tt.start || end != tt.end)) {
			t.Errorf("WordAt(%d) = %d, %d, %v; want %d, %d, %v", tt.pos, start, end, ok, tt.start, tt.end, tt.ok)
		}
	}
}

func TestText_Render(t *testing.T) {
	p := NewText("first\nsecond line that is far too long\nthird\nfourth")

	buf := render(p, unfocused)
	if got := buf.Get(0, 0).Rune; got != '┌' {
		t.Errorf("unfocused corner = %c, want ┌", got)
	}
	if got := buf.Text(1); got != "│first             │" {
		t.Errorf("row 1 = %q", got)
	}
	if got := buf.Text(2); got != "│second line that i│" {
		t.Errorf("long line not clipped: %q", got)
	}
	if got := buf.Text(3); got != "│third             │" {
		t.Errorf("row 3 = %q", got)
	}

	buf = render(p, focused)
	if got := buf.Get(0, 0).Rune; got != '┏' {
		t.Errorf("focused corner = %c, want ┏", got)
	}

	if !p.HandleEvent(focused, event.Focus{Focused: true}) {
		t.Error("focus change should redraw when borders differ")
	}
	if p.HandleEvent(focused, key('x')) {
		t.Error("text pane ignores keys")
	}
}

func TestText_NoBorder(t *testing.T) {
	p := NewText("abc").WithBorder(runtime.BorderNone).WithFocusedBorder(runtime.BorderNone)
	buf := render(p, focused)
	if got := buf.Text(0); got[:3] != "abc" {
		t.Errorf("row 0 = %q", got)
	}
	if p.HandleEvent(focused, event.Focus{Focused: true}) {
		t.Error("identical borders need no redraw on focus")
	}
}

func TestNoop(t *testing.T) {
	buf := runtime.NewBuffer(4, 2)
	buf.ClearDirty()
	Noop{}.Render(focused, buf)
	if buf.IsDirty() {
		t.Error("Noop should draw nothing")
	}
	if (Noop{}).HandleEvent(focused, key('a')) {
		t.Error("Noop should never redraw")
	}
}

func TestInput_New(t *testing.T) {
	if in := NewInput(); in.Text() != "" || in.Cursor() != 0 {
		t.Errorf("NewInput = %q at %d", in.Text(), in.Cursor())
	}
	in := NewInputWithText("Hello\nWorld")
	if in.Cursor() != 11 {
		t.Errorf("cursor = %d, want end of text", in.Cursor())
	}
	if line, col := in.CursorLineCol(); line != 1 || col != 5 {
		t.Errorf("CursorLineCol = %d, %d", line, col)
	}
}

func TestInput_Typing(t *testing.T) {
	in := NewInputWithText("Hello World")
	for range 6 {
		in.HandleEvent(focused, special(terminal.KeyLeft))
	}
	if !in.HandleEvent(focused, key(',')) {
		t.Error("typing should redraw")
	}
	if in.Text() != "Hello, World" || in.Cursor() != 6 {
		t.Errorf("after insert: %q at %d", in.Text(), in.Cursor())
	}

	in.HandleEvent(focused, special(terminal.KeyEnter))
	if in.Text() != "Hello,\n World" {
		t.Errorf("after enter: %q", in.Text())
	}

	in.HandleEvent(focused, special(terminal.KeyBackspace))
	in.HandleEvent(focused, special(terminal.KeyDelete))
	if in.Text() != "Hello,World" {
		t.Errorf("after backspace+delete: %q", in.Text())
	}

	in.HandleEvent(unfocused, key('z'))
	if in.Text() != "Hello,World" {
		t.Error("unfocused input should ignore keys")
	}
}

func TestInput_DeleteWordBackward(t *testing.T) {
	in := NewInputWithText("one two   ")
	in.HandleEvent(focused, event.Key{Code: terminal.KeyBackspace, Alt: true})
	if in.Text() != "one " {
		t.Errorf("got %q, want %q", in.Text(), "one ")
	}
}

func TestInput_VerticalMovementKeepsColumn(t *testing.T) {
	in := NewInputWithText("abcdef\nxy\nlonger line")
	in.HandleEvent(focused, special(terminal.KeyUp))
	if line, col := in.CursorLineCol(); line != 1 || col != 2 {
		t.Errorf("after up: %d:%d, want clamped to 1:2", line, col)
	}
	in.HandleEvent(focused, special(terminal.KeyUp))
	if line, col := in.CursorLineCol(); line != 0 || col != 2 {
		t.Errorf("after second up: %d:%d", line, col)
	}
	in.HandleEvent(focused, special(terminal.KeyEnd))
	if _, col := in.CursorLineCol(); col != 6 {
		t.Errorf("End col = %d", col)
	}
	in.HandleEvent(focused, special(terminal.KeyHome))
	if in.Cursor() != 0 {
		t.Errorf("Home cursor = %d", in.Cursor())
	}
	in.HandleEvent(focused, special(terminal.KeyUp))
	if in.Cursor() != 0 {
		t.Error("up on the first line should stay put")
	}
}

func TestInput_ShiftSelectionAndReplace(t *testing.T) {
	in := NewInputWithText("Hello World")
	for range 5 {
		in.HandleEvent(focused, event.Key{Code: terminal.KeyLeft, Shift: true})
	}
	if in.Selection() != "World" {
		t.Fatalf("selection = %q", in.Selection())
	}
	in.HandleEvent(focused, key('!'))
	if in.Text() != "Hello !" {
		t.Errorf("typing over selection: %q", in.Text())
	}

	in.HandleEvent(focused, event.Key{Code: terminal.KeyLeft, Shift: true})
	in.HandleEvent(focused, special(terminal.KeyRight))
	if in.Selection() != "" {
		t.Error("unshifted movement should drop the selection")
	}
}

func TestInput_Clipboard(t *testing.T) {
	var clip clipboard.Memory
	in := NewInputWithText("cut me").WithClipboard(&clip)

	in.HandleEvent(focused, ctrl('a'))
	if in.Selection() != "cut me" {
		t.Fatalf("select all = %q", in.Selection())
	}
	if in.HandleEvent(focused, ctrl('c')) {
		t.Error("copy should not redraw")
	}
	if got, _ := clip.ReadText(); got != "cut me" {
		t.Errorf("clipboard after copy = %q", got)
	}

	if !in.HandleEvent(focused, ctrl('x')) {
		t.Error("cut should redraw")
	}
	if in.Text() != "" {
		t.Errorf("after cut: %q", in.Text())
	}

	in.HandleEvent(focused, ctrl('v'))
	in.HandleEvent(focused, ctrl('v'))
	if in.Text() != "cut mecut me" {
		t.Errorf("after paste: %q", in.Text())
	}

	in.HandleEvent(focused, event.Paste{Text: "日本"})
	if in.Text() != "cut mecut me日本" || in.Cursor() != 14 {
		t.Errorf("after bracketed paste: %q at %d", in.Text(), in.Cursor())
	}
}

func TestInput_FocusLossClearsSelection(t *testing.T) {
	in := NewInputWithText("abc")
	in.HandleEvent(focused, ctrl('a'))
	in.HandleEvent(unfocused, event.Focus{Focused: false})
	if in.Selection() != "" {
		t.Error("losing focus should clear the selection")
	}
}

func TestInput_RenderCursor(t *testing.T) {
	in := NewInputWithText("hi")
	buf := render(in, focused)
	if got := buf.Get(3, 1).Rune; got != cursorBlock {
		t.Errorf("cursor at end of line = %c, want block", got)
	}

	in.HandleEvent(focused, special(terminal.KeyLeft))
	buf = render(in, focused)
	cell := buf.Get(2, 1)
	if cell.Rune != 'i' || cell.Style.Attributes()&backend.AttrReverse == 0 {
		t.Errorf("cursor over text = %c %v, want reversed i", cell.Rune, cell.Style)
	}

	buf = render(in, unfocused)
	if buf.Get(2, 1).Style.Attributes()&backend.AttrReverse != 0 {
		t.Error("unfocused input should not draw a cursor")
	}
}

func TestInput_CursorAtRightEdge(t *testing.T) {
	ctx := runtime.PaneContext{ID: 1, Rect: layout.NewRect(0, 0, 4, 3), Focused: true}
	in := NewInputWithText("abcd").WithBorder(runtime.BorderNone).WithFocusedBorder(runtime.BorderNone)

	buf := render(in, ctx)
	for x, want := range "abcd" {
		if got := buf.Get(x, 0).Rune; got != want {
			t.Errorf("cell (%d,0) = %c, want %c", x, got, want)
		}
	}
	if got := buf.Get(0, 1).Rune; got != cursorBlock {
		t.Errorf("cursor after a full row = %c, want block on the next row", got)
	}

	in.HandleEvent(ctx, key('e'))
	buf = render(in, ctx)
	if got := buf.Get(0, 1).Rune; got != 'e' {
		t.Errorf("wrapped char = %c, want e", got)
	}
	if got := buf.Get(1, 1).Rune; got != cursorBlock {
		t.Errorf("cursor after e = %c, want block", got)
	}
}

func TestInput_WideRunesWrapByCells(t *testing.T) {
	ctx := runtime.PaneContext{ID: 1, Rect: layout.NewRect(0, 0, 4, 3), Focused: true}
	in := NewInputWithText("你好世界").WithBorder(runtime.BorderNone).WithFocusedBorder(runtime.BorderNone)

	buf := render(in, ctx)
	for _, c := range []struct {
		x, y int
		want rune
	}{
		{0, 0, '你'}, {2, 0, '好'}, {0, 1, '世'}, {2, 1, '界'}, {0, 2, cursorBlock},
	} {
		if got := buf.Get(c.x, c.y).Rune; got != c.want {
			t.Errorf("cell (%d,%d) = %c, want %c", c.x, c.y, got, c.want)
		}
	}
}

func TestInput_Placeholder(t *testing.T) {
	in := NewInput().WithPlaceholder("type here")
	if got := render(in, unfocused).Text(1); got != "│type here         │" {
		t.Errorf("placeholder row = %q", got)
	}
	if got := render(in, focused).Text(1); got != "┃█                 ┃" {
		t.Errorf("focused empty row = %q", got)
	}
}

func TestInput_ScrollsToCursor(t *testing.T) {
	in := NewInputWithText("l0\nl1\nl2\nl3\nl4")
	buf := render(in, focused)
	if got := buf.Text(3); got != "┃l4█               ┃" {
		t.Errorf("last row = %q", got)
	}
	if got := buf.Text(1); got != "┃l2                ┃" {
		t.Errorf("first row = %q", got)
	}
}

func TestInput_Mouse(t *testing.T) {
	in := NewInputWithText("hello world")
	render(in, focused)

	if !in.HandleEvent(focused, mouse(event.MouseDown, 1+6, 1)) {
		t.Error("click should redraw")
	}
	if in.Cursor() != 6 {
		t.Errorf("cursor after click = %d, want 6", in.Cursor())
	}

	in.HandleEvent(focused, mouse(event.MouseDrag, 1+9, 1))
	in.HandleEvent(focused, mouse(event.MouseUp, 1+9, 1))
	if in.Selection() != "wor" {
		t.Errorf("drag selection = %q", in.Selection())
	}

	in.HandleEvent(focused, mouse(event.MouseDoubleClick, 1+2, 1))
	if in.Selection() != "hello" {
		t.Errorf("double-click selection = %q", in.Selection())
	}

	if in.HandleEvent(focused, mouse(event.MouseDown, 30, 30)) {
		t.Error("clicks outside the pane should be ignored")
	}
}

func TestSelectable_DragSelection(t *testing.T) {
	s := NewSelectable("one\ntwo three\nfour")

	s.HandleEvent(focused, mouse(event.MouseDown, 1, 1))
	s.HandleEvent(focused, mouse(event.MouseDrag, 4, 1))
	if !s.HandleEvent(focused, mouse(event.MouseUp, 4, 1)) {
		t.Error("finishing a drag should redraw")
	}
	if s.Selection() != "one" {
		t.Errorf("selection = %q", s.Selection())
	}

	buf := render(s, focused)
	if buf.Get(1, 1).Style.Attributes()&backend.AttrReverse == 0 {
		t.Error("selected text should be reversed")
	}
	if buf.Get(5, 2).Style.Attributes()&backend.AttrReverse != 0 {
		t.Error("unselected text should not be reversed")
	}

	if s.HandleEvent(focused, mouse(event.MouseDrag, 6, 2)) {
		t.Error("drag without a press should be ignored")
	}
}

func TestSelectable_WordAndLine(t *testing.T) {
	s := NewSelectable("one\ntwo three\nfour")

	s.HandleEvent(focused, mouse(event.MouseDoubleClick, 1+5, 2))
	if s.Selection() != "three" {
		t.Errorf("double-click = %q", s.Selection())
	}
	s.HandleEvent(focused, mouse(event.MouseTripleClick, 1+5, 2))
	if s.Selection() != "two three" {
		t.Errorf("triple-click = %q", s.Selection())
	}
	if s.HandleEvent(focused, mouse(event.MouseDoubleClick, 1+3, 2)) {
		t.Error("double-click on a space selects nothing")
	}

	var clip clipboard.Memory
	s.WithClipboard(&clip)
	if s.HandleEvent(focused, ctrl('c')) {
		t.Error("copy should not redraw")
	}
	if got, _ := clip.ReadText(); got != "two three" {
		t.Errorf("clipboard = %q", got)
	}

	s.HandleEvent(unfocused, event.Focus{Focused: false})
	if s.Selection() != "" {
		t.Error("losing focus should clear the selection")
	}
}

func TestSelectable_Scroll(t *testing.T) {
	s := NewSelectable("l0\nl1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\nl9")

	if s.HandleEvent(focused, event.Mouse{X: 2, Y: 2, Kind: event.MouseScrollUp}) {
		t.Error("scrolling up at the top should do nothing")
	}
	if !s.HandleEvent(focused, event.Mouse{X: 2, Y: 2, Kind: event.MouseScrollDown}) {
		t.Error("scroll down should redraw")
	}
	buf := render(s, focused)
	if got := buf.Text(1); got != "┃l3                ┃" {
		t.Errorf("first visible row = %q", got)
	}

	s.HandleEvent(focused, mouse(event.MouseDown, 1, 1))
	s.HandleEvent(focused, mouse(event.MouseDrag, 3, 1))
	if s.Selection() != "l3" {
		t.Errorf("selection in scrolled view = %q", s.Selection())
	}
}

func TestSelectable_Highlighting(t *testing.T) {
	s := NewSelectable("func main() {}").WithLanguage("go")
	if len(s.styles) == 0 {
		t.Fatal("expected highlight styles")
	}
	if s.styleAt(0).Attributes()&backend.AttrBold == 0 {
		t.Errorf("keyword style = %v, want bold", s.styleAt(0))
	}
	if s.styleAt(999) != s.style {
		t.Error("positions past the styles fall back to the base style")
	}

	plain := NewSelectable("func main() {}")
	if plain.styleAt(0) != backend.DefaultStyle() {
		t.Error("no language means no highlighting")
	}
}
