// Package panes provides ready-made pane implementations: static text, an
// editable input and a read-only selectable viewer.
package panes

import (
	"unicode"

	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/panes/pkg/ui/backend"
	"github.com/odvcencio/panes/pkg/ui/layout"
	"github.com/odvcencio/panes/pkg/ui/runtime"
	"github.com/odvcencio/panes/pkg/ui/textbuf"
)

// WordAt returns the word around pos. A word is a run of letters, digits
// and underscores; ok is false when pos is not on a word character.
func WordAt(buf *textbuf.Buffer, pos int) (start, end int, ok bool) {
	r, ok := buf.CharAt(pos)
	if !ok || !isWordChar(r) {
		return 0, 0, false
	}
	start, end = pos, pos+1
	for start > 0 {
		r, _ := buf.CharAt(start - 1)
		if !isWordChar(r) {
			break
		}
		start--
	}
	for end < buf.Len() {
		r, _ := buf.CharAt(end)
		if !isWordChar(r) {
			break
		}
		end++
	}
	return start, end, true
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// selection is an anchor/cursor pair in char indices.
type selection struct {
	anchor, head int
	active       bool
}

func (s selection) bounds() (start, end int, ok bool) {
	if !s.active || s.anchor == s.head {
		return 0, 0, false
	}
	return min(s.anchor, s.head), max(s.anchor, s.head), true
}

func (s selection) contains(pos int) bool {
	start, end, ok := s.bounds()
	return ok && pos >= start && pos < end
}

func (s *selection) set(start, end int) {
	s.anchor, s.head, s.active = start, end, true
}

func (s *selection) clear() {
	*s = selection{}
}

// contentRect returns the area inside the border for the focus state.
func contentRect(ctx runtime.PaneContext, border, focused runtime.BorderStyle) (layout.Rect, runtime.BorderStyle) {
	style := border
	if ctx.Focused {
		style = focused
	}
	return style.ContentRect(ctx.Rect), style
}

// drawView draws the view's visible lines into area. styleAt picks the
// style for the rune at a char index.
func drawView(buf *runtime.Buffer, area layout.Rect, text *textbuf.Buffer, view *textbuf.View, styleAt func(pos int) backend.Style) {
	row := 0
	for dl := range view.Lines() {
		y := area.Y + row
		x := area.X
		pos := text.LineColToChar(dl.LogicalLine, dl.ColStart)
		for _, r := range dl.Content {
			w := runewidth.RuneWidth(r)
			if x+w > area.Right() {
				break
			}
			if w > 0 {
				buf.Set(x, y, r, styleAt(pos))
			}
			x += w
			pos++
		}
		row++
	}
}

// displayLine returns the view's row-th visible line.
func displayLine(view *textbuf.View, row int) (textbuf.DisplayLine, bool) {
	i := 0
	for dl := range view.Lines() {
		if i == row {
			return dl, true
		}
		i++
	}
	return textbuf.DisplayLine{}, false
}

// hitTest maps a screen position inside area to a char index, accounting
// for wide runes.
func hitTest(view *textbuf.View, area layout.Rect, x, y int) (int, bool) {
	row := y - area.Y
	dl, ok := displayLine(view, row)
	if !ok {
		return 0, false
	}
	cells := x - area.X
	col := 0
	for _, r := range dl.Content {
		w := runewidth.RuneWidth(r)
		if cells < w {
			break
		}
		cells -= w
		col++
	}
	return view.DisplayToChar(row, col)
}

// cellOffset converts a rune column on a display line to a cell offset.
func cellOffset(dl textbuf.DisplayLine, col int) int {
	cells := 0
	for i, r := range []rune(dl.Content) {
		if i >= col {
			break
		}
		cells += runewidth.RuneWidth(r)
	}
	return cells
}

// viewFor builds a view of text sized to area from a persisted viewport.
func viewFor(text *textbuf.Buffer, vp textbuf.Viewport, area layout.Rect, mode textbuf.WrapMode) *textbuf.View {
	vp.Width, vp.Height = area.Width, area.Height
	return textbuf.NewView(text, vp).WithWrapMode(mode)
}
