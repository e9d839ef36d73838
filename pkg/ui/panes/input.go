package panes

import (
	"unicode"
	"unicode/utf8"

	"github.com/odvcencio/panes/pkg/clipboard"
	"github.com/odvcencio/panes/pkg/ui/backend"
	"github.com/odvcencio/panes/pkg/ui/event"
	"github.com/odvcencio/panes/pkg/ui/layout"
	"github.com/odvcencio/panes/pkg/ui/runtime"
	"github.com/odvcencio/panes/pkg/ui/terminal"
	"github.com/odvcencio/panes/pkg/ui/textbuf"
)

const cursorBlock = '█'

// Input is an editable multi-line text pane.
type Input struct {
	buf    *textbuf.Buffer
	cursor int
	sel    selection
	drag   bool
	vp     textbuf.Viewport

	style            backend.Style
	placeholderStyle backend.Style
	border           runtime.BorderStyle
	focusedBorder    runtime.BorderStyle
	placeholder      string
	wrap             textbuf.WrapMode
	clip             clipboard.Clipboard
}

// NewInput creates an empty input.
func NewInput() *Input {
	return NewInputWithText("")
}

// NewInputWithText creates an input holding text with the cursor at its end.
func NewInputWithText(text string) *Input {
	buf := textbuf.NewFromString(text)
	return &Input{
		buf:              buf,
		cursor:           buf.Len(),
		style:            backend.DefaultStyle(),
		placeholderStyle: backend.DefaultStyle().Foreground(backend.ColorWhite).Dim(true),
		border:           runtime.BorderSingle,
		focusedBorder:    runtime.BorderThick,
		clip:             &clipboard.Memory{},
	}
}

// WithStyle sets the text style.
func (i *Input) WithStyle(style backend.Style) *Input {
	i.style = style
	return i
}

// WithBorder sets the unfocused border.
func (i *Input) WithBorder(b runtime.BorderStyle) *Input {
	i.border = b
	return i
}

// WithFocusedBorder sets the focused border.
func (i *Input) WithFocusedBorder(b runtime.BorderStyle) *Input {
	i.focusedBorder = b
	return i
}

// WithPlaceholder sets the text shown while the input is empty and unfocused.
func (i *Input) WithPlaceholder(text string) *Input {
	i.placeholder = text
	return i
}

// WithClipboard sets the clipboard used for copy, cut and paste.
func (i *Input) WithClipboard(c clipboard.Clipboard) *Input {
	if c != nil {
		i.clip = c
	}
	return i
}

// WithWrapMode sets how long lines are displayed.
func (i *Input) WithWrapMode(mode textbuf.WrapMode) *Input {
	i.wrap = mode
	return i
}

// Text returns the current content.
func (i *Input) Text() string {
	return i.buf.String()
}

// SetText replaces the content and moves the cursor to the end.
func (i *Input) SetText(text string) {
	i.buf = textbuf.NewFromString(text)
	i.cursor = i.buf.Len()
	i.sel.clear()
	i.vp = textbuf.Viewport{}
}

// Cursor returns the cursor as a char index.
func (i *Input) Cursor() int {
	return i.cursor
}

// CursorLineCol returns the cursor's line and column.
func (i *Input) CursorLineCol() (line, col int) {
	return i.buf.CharToLineCol(i.cursor)
}

// Selection returns the selected text.
func (i *Input) Selection() string {
	start, end, ok := i.sel.bounds()
	if !ok {
		return ""
	}
	return i.buf.Slice(start, end)
}

// Render draws the border, the text or placeholder, the selection and the
// cursor.
func (i *Input) Render(ctx runtime.PaneContext, buf *runtime.Buffer) {
	area, border := contentRect(ctx, i.border, i.focusedBorder)
	buf.DrawBorder(ctx.Rect, border, i.style)
	if area.IsEmpty() {
		return
	}

	if i.buf.IsEmpty() && !ctx.Focused {
		buf.SetStringClipped(area.X, area.Y, i.placeholder, i.placeholderStyle, area)
		return
	}

	view := viewFor(i.buf, i.vp, area, i.wrap).WithCursorRow()
	view.ScrollToChar(i.cursor)
	i.vp = view.Viewport()

	drawView(buf, area, i.buf, view, func(pos int) backend.Style {
		if ctx.Focused && i.sel.contains(pos) {
			return i.style.Reverse(true)
		}
		return i.style
	})

	if ctx.Focused {
		i.drawCursor(buf, area, view)
	}
}

func (i *Input) drawCursor(buf *runtime.Buffer, area layout.Rect, view *textbuf.View) {
	row, col, ok := view.CharToDisplay(i.cursor)
	if !ok {
		return
	}
	dl, _ := displayLine(view, row)
	x := area.X + cellOffset(dl, col)
	y := area.Y + row
	if x >= area.Right() {
		return
	}

	content := []rune(dl.Content)
	if col < len(content) {
		buf.Set(x, y, content[col], i.style.Reverse(true))
		return
	}
	buf.Set(x, y, cursorBlock, i.style)
}

// HandleEvent edits the text. Keys and paste apply only while focused.
func (i *Input) HandleEvent(ctx runtime.PaneContext, ev event.Event) bool {
	switch e := ev.(type) {
	case event.Focus:
		if !e.Focused {
			i.sel.clear()
			i.drag = false
		}
		return true
	case event.Key:
		if !ctx.Focused {
			return false
		}
		return i.handleKey(e)
	case event.Paste:
		if !ctx.Focused || e.Text == "" {
			return false
		}
		i.insert(e.Text)
		return true
	case event.Mouse:
		return i.handleMouse(ctx, e)
	}
	return false
}

func (i *Input) handleKey(k event.Key) bool {
	if k.Code == terminal.KeyRune && (k.Ctrl || k.Alt) {
		switch unicode.ToLower(k.Rune) {
		case 'a':
			if i.buf.Len() > 0 {
				i.sel.set(0, i.buf.Len())
				i.cursor = i.buf.Len()
			}
			return true
		case 'c':
			i.copySelection()
			return false
		case 'x':
			if i.copySelection() {
				i.deleteSelection()
				return true
			}
			return false
		case 'v':
			text, err := i.clip.ReadText()
			if err != nil || text == "" {
				return false
			}
			i.insert(text)
			return true
		}
		return false
	}

	switch k.Code {
	case terminal.KeyRune:
		i.insert(string(k.Rune))
	case terminal.KeyEnter:
		i.insert("\n")
	case terminal.KeyBackspace:
		if k.Alt {
			i.deleteWordBackward()
		} else {
			i.backspace()
		}
	case terminal.KeyDelete:
		i.deleteForward()
	case terminal.KeyLeft:
		i.moveTo(i.cursor-1, k.Shift)
	case terminal.KeyRight:
		i.moveTo(i.cursor+1, k.Shift)
	case terminal.KeyUp:
		i.moveVertical(-1, k.Shift)
	case terminal.KeyDown:
		i.moveVertical(1, k.Shift)
	case terminal.KeyHome:
		line, _ := i.buf.CharToLineCol(i.cursor)
		i.moveTo(i.buf.LineToChar(line), k.Shift)
	case terminal.KeyEnd:
		line, _ := i.buf.CharToLineCol(i.cursor)
		i.moveTo(i.buf.LineEndChar(line), k.Shift)
	default:
		return false
	}
	return true
}

func (i *Input) handleMouse(ctx runtime.PaneContext, m event.Mouse) bool {
	if m.Kind == event.MouseUp {
		wasDragging := i.drag
		i.drag = false
		return wasDragging
	}
	area, _ := contentRect(ctx, i.border, i.focusedBorder)
	if !area.Contains(m.X, m.Y) {
		return false
	}
	view := viewFor(i.buf, i.vp, area, i.wrap).WithCursorRow()

	switch m.Kind {
	case event.MouseDown:
		if m.Button != terminal.MouseLeft {
			return false
		}
		if pos, ok := hitTest(view, area, m.X, m.Y); ok {
			i.cursor = pos
			i.sel.clear()
			i.sel.anchor = pos
			i.drag = true
		}
		return true
	case event.MouseDrag:
		if !i.drag {
			return false
		}
		if pos, ok := hitTest(view, area, m.X, m.Y); ok {
			i.sel.head, i.sel.active = pos, true
			i.cursor = pos
		}
		return true
	case event.MouseDoubleClick:
		pos, ok := hitTest(view, area, m.X, m.Y)
		if !ok {
			return false
		}
		start, end, ok := WordAt(i.buf, pos)
		if !ok {
			return false
		}
		i.sel.set(start, end)
		i.cursor = end
		i.drag = false
		return true
	}
	return false
}

// moveTo places the cursor at pos. With extend the selection grows from
// its anchor; otherwise it is dropped.
func (i *Input) moveTo(pos int, extend bool) {
	pos = min(max(pos, 0), i.buf.Len())
	if extend {
		if !i.sel.active {
			i.sel.anchor, i.sel.active = i.cursor, true
		}
		i.sel.head = pos
	} else {
		i.sel.clear()
	}
	i.cursor = pos
}

func (i *Input) moveVertical(delta int, extend bool) {
	line, col := i.buf.CharToLineCol(i.cursor)
	target := min(max(line+delta, 0), i.buf.LineCount()-1)
	i.moveTo(i.buf.LineColToChar(target, col), extend)
}

func (i *Input) insert(text string) {
	i.deleteSelection()
	i.buf.Insert(i.cursor, text)
	i.cursor += utf8.RuneCountInString(text)
}

func (i *Input) backspace() {
	if i.deleteSelection() || i.cursor == 0 {
		return
	}
	i.buf.Delete(i.cursor-1, i.cursor)
	i.cursor--
}

func (i *Input) deleteForward() {
	if i.deleteSelection() || i.cursor >= i.buf.Len() {
		return
	}
	i.buf.Delete(i.cursor, i.cursor+1)
}

// deleteWordBackward removes trailing whitespace and then the word before
// the cursor.
func (i *Input) deleteWordBackward() {
	if i.deleteSelection() {
		return
	}
	pos := i.cursor
	for pos > 0 {
		r, _ := i.buf.CharAt(pos - 1)
		if !unicode.IsSpace(r) {
			break
		}
		pos--
	}
	for pos > 0 {
		r, _ := i.buf.CharAt(pos - 1)
		if unicode.IsSpace(r) {
			break
		}
		pos--
	}
	if pos < i.cursor {
		i.buf.Delete(pos, i.cursor)
		i.cursor = pos
	}
}

func (i *Input) deleteSelection() bool {
	start, end, ok := i.sel.bounds()
	i.sel.clear()
	if !ok {
		return false
	}
	i.buf.Delete(start, end)
	i.cursor = start
	return true
}

func (i *Input) copySelection() bool {
	text := i.Selection()
	if text == "" {
		return false
	}
	return i.clip.WriteText(text) == nil
}

var _ runtime.Pane = (*Input)(nil)
