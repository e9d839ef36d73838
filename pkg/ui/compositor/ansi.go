package compositor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/odvcencio/panes/pkg/ui/backend"
)

// ANSI escape sequences.
const (
	ANSIEscape      = "\x1b["
	ANSIClearScreen = "\x1b[2J"
	ANSICursorHome  = "\x1b[H"
	ANSICursorHide  = "\x1b[?25l"
	ANSICursorShow  = "\x1b[?25h"
	ANSIReset       = "\x1b[0m"
	ANSIAltScreen   = "\x1b[?1049h"
	ANSIMainScreen  = "\x1b[?1049l"

	// Button tracking, drag tracking and SGR extended coordinates.
	ANSIMouseOn  = "\x1b[?1000h\x1b[?1002h\x1b[?1006h"
	ANSIMouseOff = "\x1b[?1006l\x1b[?1002l\x1b[?1000l"

	ANSIBell = "\a"
)

// CursorTo returns ANSI sequence to move cursor to (x, y).
// Coordinates are 0-indexed, but ANSI uses 1-indexed.
func CursorTo(x, y int) string {
	return fmt.Sprintf("\x1b[%d;%dH", y+1, x+1)
}

// CursorForward moves cursor right n columns.
func CursorForward(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("\x1b[%dC", n)
}

// StyleToANSI converts a Style to a full SGR sequence, down-sampling colors
// to what profile can display. Under termenv.Ascii only attributes remain.
func StyleToANSI(s backend.Style, profile termenv.Profile) string {
	parts := []string{"0"}

	fg, bg, attrs := s.Decompose()
	if attrs&backend.AttrBold != 0 {
		parts = append(parts, "1")
	}
	if attrs&backend.AttrDim != 0 {
		parts = append(parts, "2")
	}
	if attrs&backend.AttrItalic != 0 {
		parts = append(parts, "3")
	}
	if attrs&backend.AttrUnderline != 0 {
		parts = append(parts, "4")
	}
	if attrs&backend.AttrBlink != 0 {
		parts = append(parts, "5")
	}
	if attrs&backend.AttrReverse != 0 {
		parts = append(parts, "7")
	}
	if attrs&backend.AttrStrikeThrough != 0 {
		parts = append(parts, "9")
	}

	if p := colorParams(fg, false, profile); p != "" {
		parts = append(parts, p)
	}
	if p := colorParams(bg, true, profile); p != "" {
		parts = append(parts, p)
	}

	return ANSIEscape + strings.Join(parts, ";") + "m"
}

// colorParams converts a Color to SGR parameters.
func colorParams(c backend.Color, bg bool, profile termenv.Profile) string {
	if profile == termenv.Ascii {
		return ""
	}
	if c == backend.ColorDefault {
		if bg {
			return "49"
		}
		return "39"
	}

	var tc termenv.Color
	switch {
	case c.IsRGB():
		r, g, b := c.RGB()
		if profile == termenv.TrueColor {
			// Exact components; termenv's RGB path goes through floats.
			prefix := "38"
			if bg {
				prefix = "48"
			}
			return prefix + ";2;" + strconv.Itoa(int(r)) + ";" + strconv.Itoa(int(g)) + ";" + strconv.Itoa(int(b))
		}
		tc = termenv.RGBColor(fmt.Sprintf("#%02x%02x%02x", r, g, b))
	case c < 16:
		tc = termenv.ANSIColor(c)
	default:
		tc = termenv.ANSI256Color(c & 0xFF)
	}

	converted := profile.Convert(tc)
	if converted == nil {
		return ""
	}
	return converted.Sequence(bg)
}

// ANSIWriter helps build ANSI output efficiently. It only emits an SGR
// sequence when the style differs from the one last written.
type ANSIWriter struct {
	buf       strings.Builder
	profile   termenv.Profile
	lastStyle backend.Style
	styleSet  bool
	lastX     int
	lastY     int
	posSet    bool
}

// NewANSIWriter creates a new ANSI writer for the given color profile.
func NewANSIWriter(profile termenv.Profile) *ANSIWriter {
	return &ANSIWriter{
		profile: profile,
		lastX:   -1,
		lastY:   -1,
	}
}

// MoveTo positions cursor, optimizing for sequential writes.
func (w *ANSIWriter) MoveTo(x, y int) {
	if w.posSet && w.lastY == y && w.lastX == x {
		return
	}

	if w.posSet && w.lastY == y {
		delta := x - w.lastX
		if delta > 0 && delta < 5 {
			w.buf.WriteString(CursorForward(delta))
			w.lastX = x
			return
		}
	}

	w.buf.WriteString(CursorTo(x, y))
	w.lastX = x
	w.lastY = y
	w.posSet = true
}

// SetStyle changes the current style.
func (w *ANSIWriter) SetStyle(s backend.Style) {
	if w.styleSet && w.lastStyle == s {
		return
	}
	w.buf.WriteString(StyleToANSI(s, w.profile))
	w.lastStyle = s
	w.styleSet = true
}

// WriteRune writes a single rune and advances by its display width.
func (w *ANSIWriter) WriteRune(r rune) {
	w.buf.WriteRune(r)
	if rw := runewidth.RuneWidth(r); rw > 0 {
		w.lastX += rw
	} else {
		w.lastX++
	}
}

// WriteRaw appends an escape sequence without moving the tracked cursor.
func (w *ANSIWriter) WriteRaw(s string) {
	w.buf.WriteString(s)
}

// Reset adds a style reset.
func (w *ANSIWriter) Reset() {
	w.buf.WriteString(ANSIReset)
	w.styleSet = false
}

// ShowCursor adds cursor show sequence.
func (w *ANSIWriter) ShowCursor() {
	w.buf.WriteString(ANSICursorShow)
}

// HideCursor adds cursor hide sequence.
func (w *ANSIWriter) HideCursor() {
	w.buf.WriteString(ANSICursorHide)
}

// String returns the accumulated output.
func (w *ANSIWriter) String() string {
	return w.buf.String()
}

// Len returns current buffer length.
func (w *ANSIWriter) Len() int {
	return w.buf.Len()
}

// Grow pre-allocates buffer capacity.
func (w *ANSIWriter) Grow(n int) {
	w.buf.Grow(n)
}
