package runtime

import (
	"fmt"
	"strings"

	"github.com/odvcencio/panes/pkg/ui/backend"
	"github.com/odvcencio/panes/pkg/ui/layout"
)

// BorderChars are the runes a border is drawn with.
type BorderChars struct {
	TopLeft, TopRight       rune
	BottomLeft, BottomRight rune
	Horizontal, Vertical    rune
}

// BorderStyle selects a box-drawing set.
type BorderStyle int

const (
	BorderNone BorderStyle = iota
	BorderSingle
	BorderDouble
	BorderRounded
	BorderThick
)

var borderNames = [...]string{"none", "single", "double", "rounded", "thick"}

var borderChars = [...]BorderChars{
	BorderNone:    {' ', ' ', ' ', ' ', ' ', ' '},
	BorderSingle:  {'┌', '┐', '└', '┘', '─', '│'},
	BorderDouble:  {'╔', '╗', '╚', '╝', '═', '║'},
	BorderRounded: {'╭', '╮', '╰', '╯', '─', '│'},
	BorderThick:   {'┏', '┓', '┗', '┛', '━', '┃'},
}

func (b BorderStyle) valid() bool {
	return b >= BorderNone && int(b) < len(borderChars)
}

func (b BorderStyle) String() string {
	if !b.valid() {
		return "none"
	}
	return borderNames[b]
}

// ParseBorderStyle converts a name such as "rounded" to a BorderStyle.
func ParseBorderStyle(s string) (BorderStyle, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return BorderNone, nil
	}
	for i, name := range borderNames {
		if name == s {
			return BorderStyle(i), nil
		}
	}
	return BorderNone, fmt.Errorf("unknown border style %q", s)
}

// Chars returns the runes for this style.
func (b BorderStyle) Chars() BorderChars {
	if !b.valid() {
		return borderChars[BorderNone]
	}
	return borderChars[b]
}

// ContentRect returns the area inside a border drawn around outer.
func (b BorderStyle) ContentRect(outer layout.Rect) layout.Rect {
	if b == BorderNone || !b.valid() {
		return outer
	}
	return outer.Inset(1, 1, 1, 1)
}

// DrawBorder draws a border of the given style around r. Nothing is drawn
// for BorderNone or rects smaller than 2x2.
func (b *Buffer) DrawBorder(r layout.Rect, border BorderStyle, s backend.Style) {
	if border == BorderNone || !border.valid() || r.Width < 2 || r.Height < 2 {
		return
	}
	ch := border.Chars()
	right, bottom := r.Right()-1, r.Bottom()-1

	b.Set(r.X, r.Y, ch.TopLeft, s)
	b.Set(right, r.Y, ch.TopRight, s)
	b.Set(r.X, bottom, ch.BottomLeft, s)
	b.Set(right, bottom, ch.BottomRight, s)

	for x := r.X + 1; x < right; x++ {
		b.Set(x, r.Y, ch.Horizontal, s)
		b.Set(x, bottom, ch.Horizontal, s)
	}
	for y := r.Y + 1; y < bottom; y++ {
		b.Set(r.X, y, ch.Vertical, s)
		b.Set(right, y, ch.Vertical, s)
	}
}
