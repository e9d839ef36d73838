package compositor

import "github.com/muesli/termenv"

// Serialize renders a whole frame as a single ANSI string: one absolute
// cursor move per row, and an SGR only where the style changes from the
// previous emitted cell. Continuation cells of wide runes are skipped.
func Serialize(f Frame, profile termenv.Profile) string {
	width, height := f.Size()

	w := NewANSIWriter(profile)
	w.Grow(width*height*2 + height*8)
	w.HideCursor()

	for y := 0; y < height; y++ {
		w.MoveTo(0, y)
		for x := 0; x < width; x++ {
			cell := f.Cell(x, y)
			if cell.Width == 0 {
				continue
			}
			w.SetStyle(cell.Style)
			if cell.Rune == 0 {
				w.WriteRune(' ')
			} else {
				w.WriteRune(cell.Rune)
			}
		}
	}

	w.Reset()

	if cx, cy, visible := f.Cursor(); visible {
		w.WriteRaw(CursorTo(cx, cy))
		w.ShowCursor()
	}

	return w.String()
}

// Lines renders each row of the frame as a standalone string with inline
// SGR sequences and a trailing reset. Unlike Serialize it emits no cursor
// movement, so the result can be printed into ordinary scrollback. Under
// termenv.Ascii the lines are plain text.
func Lines(f Frame, profile termenv.Profile) []string {
	width, height := f.Size()
	lines := make([]string, height)
	for y := 0; y < height; y++ {
		w := NewANSIWriter(profile)
		w.Grow(width * 2)
		for x := 0; x < width; x++ {
			cell := f.Cell(x, y)
			if cell.Width == 0 {
				continue
			}
			if profile != termenv.Ascii {
				w.SetStyle(cell.Style)
			}
			if cell.Rune == 0 {
				w.WriteRune(' ')
			} else {
				w.WriteRune(cell.Rune)
			}
		}
		if profile != termenv.Ascii {
			w.Reset()
		}
		lines[y] = w.String()
	}
	return lines
}
