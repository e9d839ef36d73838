package panes

import (
	"unicode"

	"github.com/odvcencio/panes/pkg/clipboard"
	"github.com/odvcencio/panes/pkg/ui/backend"
	"github.com/odvcencio/panes/pkg/ui/event"
	"github.com/odvcencio/panes/pkg/ui/runtime"
	"github.com/odvcencio/panes/pkg/ui/terminal"
	"github.com/odvcencio/panes/pkg/ui/textbuf"
)

const scrollStep = 3

// Selectable shows read-only text that can be selected with the mouse and
// copied.
type Selectable struct {
	buf  *textbuf.Buffer
	sel  selection
	drag bool
	vp   textbuf.Viewport

	style         backend.Style
	border        runtime.BorderStyle
	focusedBorder runtime.BorderStyle
	wrap          textbuf.WrapMode
	clip          clipboard.Clipboard

	language string
	styles   []backend.Style
}

// NewSelectable creates a selectable pane over text.
func NewSelectable(text string) *Selectable {
	return &Selectable{
		buf:           textbuf.NewFromString(text),
		style:         backend.DefaultStyle(),
		border:        runtime.BorderSingle,
		focusedBorder: runtime.BorderThick,
		clip:          &clipboard.Memory{},
	}
}

// WithStyle sets the base text style.
func (s *Selectable) WithStyle(style backend.Style) *Selectable {
	s.style = style
	s.rehighlight()
	return s
}

// WithBorder sets the unfocused border.
func (s *Selectable) WithBorder(b runtime.BorderStyle) *Selectable {
	s.border = b
	return s
}

// WithFocusedBorder sets the focused border.
func (s *Selectable) WithFocusedBorder(b runtime.BorderStyle) *Selectable {
	s.focusedBorder = b
	return s
}

// WithClipboard sets the clipboard used for copy.
func (s *Selectable) WithClipboard(c clipboard.Clipboard) *Selectable {
	if c != nil {
		s.clip = c
	}
	return s
}

// WithWrapMode sets how long lines are displayed.
func (s *Selectable) WithWrapMode(mode textbuf.WrapMode) *Selectable {
	s.wrap = mode
	return s
}

// WithLanguage enables syntax highlighting for a chroma language name.
func (s *Selectable) WithLanguage(lang string) *Selectable {
	s.language = lang
	s.rehighlight()
	return s
}

// SetText replaces the content, clearing the selection and scroll.
func (s *Selectable) SetText(text string) {
	s.buf = textbuf.NewFromString(text)
	s.sel.clear()
	s.drag = false
	s.vp = textbuf.Viewport{}
	s.rehighlight()
}

// Text returns the content.
func (s *Selectable) Text() string {
	return s.buf.String()
}

// Selection returns the selected text.
func (s *Selectable) Selection() string {
	start, end, ok := s.sel.bounds()
	if !ok {
		return ""
	}
	return s.buf.Slice(start, end)
}

func (s *Selectable) rehighlight() {
	s.styles = nil
	if s.language != "" {
		s.styles = highlight(s.buf.String(), s.language, s.style)
	}
}

func (s *Selectable) styleAt(pos int) backend.Style {
	if pos >= 0 && pos < len(s.styles) {
		return s.styles[pos]
	}
	return s.style
}

// Render draws the border and the visible text. The selection is shown in
// reverse video while focused.
func (s *Selectable) Render(ctx runtime.PaneContext, buf *runtime.Buffer) {
	area, border := contentRect(ctx, s.border, s.focusedBorder)
	buf.DrawBorder(ctx.Rect, border, s.style)
	if area.IsEmpty() {
		return
	}
	view := viewFor(s.buf, s.vp, area, s.wrap)
	drawView(buf, area, s.buf, view, func(pos int) backend.Style {
		style := s.styleAt(pos)
		if ctx.Focused && s.sel.contains(pos) {
			return style.Reverse(true)
		}
		return style
	})
}

// HandleEvent drives selection, scrolling and copy.
func (s *Selectable) HandleEvent(ctx runtime.PaneContext, ev event.Event) bool {
	switch e := ev.(type) {
	case event.Focus:
		if !e.Focused {
			s.sel.clear()
			s.drag = false
		}
		return true
	case event.Key:
		if ctx.Focused && e.Code == terminal.KeyRune && (e.Ctrl || e.Alt) && unicode.ToLower(e.Rune) == 'c' {
			if text := s.Selection(); text != "" {
				_ = s.clip.WriteText(text)
			}
		}
		return false
	case event.Mouse:
		return s.handleMouse(ctx, e)
	}
	return false
}

func (s *Selectable) handleMouse(ctx runtime.PaneContext, m event.Mouse) bool {
	if m.Kind == event.MouseUp {
		wasDragging := s.drag
		s.drag = false
		return wasDragging
	}
	area, _ := contentRect(ctx, s.border, s.focusedBorder)
	if !area.Contains(m.X, m.Y) {
		return false
	}
	view := viewFor(s.buf, s.vp, area, s.wrap)

	switch m.Kind {
	case event.MouseScrollUp:
		if s.vp.ScrollLine == 0 {
			return false
		}
		s.vp.ScrollLine = max(s.vp.ScrollLine-scrollStep, 0)
		return true
	case event.MouseScrollDown:
		last := max(s.buf.LineCount()-1, 0)
		if s.vp.ScrollLine >= last {
			return false
		}
		s.vp.ScrollLine = min(s.vp.ScrollLine+scrollStep, last)
		return true
	case event.MouseDown:
		if m.Button != terminal.MouseLeft {
			return false
		}
		if pos, ok := hitTest(view, area, m.X, m.Y); ok {
			s.sel = selection{anchor: pos, head: pos, active: true}
			s.drag = true
		}
		return true
	case event.MouseDrag:
		if !s.drag {
			return false
		}
		if pos, ok := hitTest(view, area, m.X, m.Y); ok {
			s.sel.head = pos
		}
		return true
	case event.MouseDoubleClick:
		pos, ok := hitTest(view, area, m.X, m.Y)
		if !ok {
			return false
		}
		start, end, ok := WordAt(s.buf, pos)
		if !ok {
			return false
		}
		s.sel.set(start, end)
		s.drag = false
		return true
	case event.MouseTripleClick:
		pos, ok := hitTest(view, area, m.X, m.Y)
		if !ok {
			return false
		}
		line := s.buf.CharToLine(pos)
		s.sel.set(s.buf.LineToChar(line), s.buf.LineEndChar(line))
		s.drag = false
		return true
	}
	return false
}

var _ runtime.Pane = (*Selectable)(nil)
