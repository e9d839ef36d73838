package panes

import (
	"strings"

	"github.com/odvcencio/panes/pkg/ui/backend"
	"github.com/odvcencio/panes/pkg/ui/event"
	"github.com/odvcencio/panes/pkg/ui/runtime"
)

// Text renders static lines of text.
type Text struct {
	text          string
	lines         []string
	style         backend.Style
	border        runtime.BorderStyle
	focusedBorder runtime.BorderStyle
}

// NewText creates a text pane with a single border that thickens on focus.
func NewText(text string) *Text {
	return &Text{
		text:          text,
		lines:         strings.Split(text, "\n"),
		style:         backend.DefaultStyle(),
		border:        runtime.BorderSingle,
		focusedBorder: runtime.BorderThick,
	}
}

// SetText updates the displayed text.
func (t *Text) SetText(text string) {
	t.text = text
	t.lines = strings.Split(text, "\n")
}

// Text returns the current text.
func (t *Text) Text() string {
	return t.text
}

// WithStyle sets the text style and returns the pane for chaining.
func (t *Text) WithStyle(style backend.Style) *Text {
	t.style = style
	return t
}

// WithBorder sets the unfocused border.
func (t *Text) WithBorder(b runtime.BorderStyle) *Text {
	t.border = b
	return t
}

// WithFocusedBorder sets the focused border.
func (t *Text) WithFocusedBorder(b runtime.BorderStyle) *Text {
	t.focusedBorder = b
	return t
}

// Render draws the border and the lines, clipped to the content rect.
func (t *Text) Render(ctx runtime.PaneContext, buf *runtime.Buffer) {
	area, border := contentRect(ctx, t.border, t.focusedBorder)
	buf.DrawBorder(ctx.Rect, border, t.style)
	if area.IsEmpty() {
		return
	}
	for i, line := range t.lines {
		if i >= area.Height {
			break
		}
		buf.SetStringClipped(area.X, area.Y+i, line, t.style, area)
	}
}

// HandleEvent redraws on focus changes so the border follows focus.
func (t *Text) HandleEvent(ctx runtime.PaneContext, ev event.Event) bool {
	_, ok := ev.(event.Focus)
	return ok && t.border != t.focusedBorder
}

// Noop draws nothing and ignores every event. It is useful as a spacer.
type Noop struct{}

func (Noop) Render(runtime.PaneContext, *runtime.Buffer) {}

func (Noop) HandleEvent(runtime.PaneContext, event.Event) bool { return false }

var (
	_ runtime.Pane = (*Text)(nil)
	_ runtime.Pane = Noop{}
)
