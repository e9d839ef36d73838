package textbuf

import (
	"iter"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// WrapMode selects how logical lines map to display lines.
type WrapMode int

const (
	// Wrap breaks long lines at word boundaries.
	Wrap WrapMode = iota
	// NoWrap shows one display line per logical line, scrolled by ScrollCol.
	NoWrap
)

func (m WrapMode) String() string {
	if m == NoWrap {
		return "nowrap"
	}
	return "wrap"
}

// Viewport is the visible window onto a buffer.
type Viewport struct {
	ScrollLine int
	ScrollCol  int
	Width      int
	Height     int
}

// NewViewport creates a viewport of the given size scrolled to the top.
func NewViewport(width, height int) Viewport {
	return Viewport{Width: width, Height: height}
}

// DisplayLine is one row of a view.
type DisplayLine struct {
	Content     string
	LogicalLine int
	Wrapped     bool // continuation of the previous row's logical line
	ColStart    int  // column within the logical line of Content's first rune
}

// View lays a buffer out inside a viewport. Build one per use; a view does
// not track later edits to its buffer.
type View struct {
	buf       *Buffer
	vp        Viewport
	mode      WrapMode
	cursorRow bool
}

// NewView creates a wrapping view.
func NewView(buf *Buffer, vp Viewport) *View {
	return &View{buf: buf, vp: vp}
}

// WithWrapMode sets the wrap mode.
func (v *View) WithWrapMode(mode WrapMode) *View {
	v.mode = mode
	return v
}

// WithCursorRow makes a wrapped logical line that ends exactly at the
// right edge yield an empty continuation row, so a cursor at the end of
// that line has a cell to sit in.
func (v *View) WithCursorRow() *View {
	v.cursorRow = true
	return v
}

// Viewport returns the current viewport, including ScrollToChar adjustments.
func (v *View) Viewport() Viewport { return v.vp }

// Lines yields the visible display lines. Each call starts over.
func (v *View) Lines() iter.Seq[DisplayLine] {
	return func(yield func(DisplayLine) bool) {
		it := v.Iter()
		for {
			dl, ok := it.Next()
			if !ok || !yield(dl) {
				return
			}
		}
	}
}

// Iter returns an explicit iterator over the visible display lines.
func (v *View) Iter() *LineIter {
	return &LineIter{view: v, line: max(v.vp.ScrollLine, 0), loaded: -1}
}

// LineIter produces display lines one at a time.
type LineIter struct {
	view   *View
	line   int
	offset int
	row    int

	loaded int
	runes  []rune
	tail   bool
}

// Next returns the next display line, or false when the viewport is full or
// the buffer is exhausted.
func (it *LineIter) Next() (DisplayLine, bool) {
	vp := it.view.vp
	buf := it.view.buf
	if vp.Width <= 0 || it.row >= vp.Height || it.line >= buf.LineCount() {
		return DisplayLine{}, false
	}
	runes := it.lineRunes()

	if it.tail {
		dl := DisplayLine{LogicalLine: it.line, Wrapped: true, ColStart: len(runes)}
		it.tail = false
		it.line++
		it.row++
		return dl, true
	}

	if it.view.mode == NoWrap {
		start := max(vp.ScrollCol, 0)
		content := ""
		if start < len(runes) {
			rest := runes[start:]
			content = string(rest[:fitCells(rest, vp.Width)])
		}
		dl := DisplayLine{Content: content, LogicalLine: it.line, ColStart: start}
		it.line++
		it.row++
		return dl, true
	}

	dl := DisplayLine{LogicalLine: it.line, Wrapped: it.offset > 0, ColStart: it.offset}
	if rest := runes[it.offset:]; len(rest) > 0 {
		take := breakPoint(rest, vp.Width)
		dl.Content = strings.TrimRightFunc(string(rest[:take]), unicode.IsSpace)
		it.offset += take
		for it.offset < len(runes) && unicode.IsSpace(runes[it.offset]) {
			it.offset++
		}
	}
	it.row++
	if it.offset >= len(runes) {
		it.offset = 0
		if it.view.cursorRow && len(runes) > 0 && runewidth.StringWidth(dl.Content) >= vp.Width {
			it.tail = true
		} else {
			it.line++
		}
	}
	return dl, true
}

// lineRunes returns the current logical line without its newline.
func (it *LineIter) lineRunes() []rune {
	if it.loaded != it.line {
		buf := it.view.buf
		start := buf.LineToChar(it.line)
		it.runes = []rune(buf.Slice(start, start+buf.LineLen(it.line)))
		it.loaded = it.line
	}
	return it.runes
}

// fitCells returns how many leading runes of rest fit in width cells.
func fitCells(rest []rune, width int) int {
	cells := 0
	for i, r := range rest {
		w := runewidth.RuneWidth(r)
		if cells+w > width {
			return i
		}
		cells += w
	}
	return len(rest)
}

// breakPoint returns how many runes of rest go on one row of width cells.
// A rune wider than the row is taken alone so wrapping always advances.
func breakPoint(rest []rune, width int) int {
	fit := fitCells(rest, width)
	if fit == len(rest) {
		return fit
	}
	if fit == 0 {
		return 1
	}
	for i := fit - 1; i >= 0; i-- {
		if unicode.IsSpace(rest[i]) {
			return i + 1
		}
	}
	for i := fit - 1; i >= 0; i-- {
		if isASCIIPunct(rest[i]) {
			return i + 1
		}
	}
	return fit
}

func isASCIIPunct(r rune) bool {
	return r < 0x80 && strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r)
}

// DisplayToChar maps a visible row and column to a char index. The column
// is clamped to the row's content.
func (v *View) DisplayToChar(row, col int) (int, bool) {
	if row < 0 {
		return 0, false
	}
	r := 0
	for dl := range v.Lines() {
		if r == row {
			col = min(max(col, 0), len([]rune(dl.Content)))
			return v.buf.LineColToChar(dl.LogicalLine, dl.ColStart+col), true
		}
		r++
	}
	return 0, false
}

// CharToDisplay maps a char index to its visible row and column. A position
// at the end of a segment belongs to that segment unless the segment fills
// the row, in which case it moves to the start of the next row of the same
// logical line. Positions in whitespace trimmed at a wrap point map to the
// end of the preceding segment, or to the next row when that end is off
// the right edge.
func (v *View) CharToDisplay(pos int) (row, col int, ok bool) {
	line, lineCol := v.buf.CharToLineCol(pos)
	r := 0
	var (
		pending     bool
		pendingRow  int
		pendingCol  int
		pendingFull bool
	)
	for dl := range v.Lines() {
		if dl.LogicalLine != line {
			if pending {
				break
			}
			r++
			continue
		}
		n := len([]rune(dl.Content))
		switch {
		case lineCol < dl.ColStart:
			if pending && pendingFull {
				return r, 0, true
			}
			if pending {
				return pendingRow, pendingCol, true
			}
		case lineCol < dl.ColStart+n:
			return r, lineCol - dl.ColStart, true
		default:
			full := runewidth.StringWidth(dl.Content) >= v.vp.Width
			if lineCol == dl.ColStart+n && !full {
				return r, n, true
			}
			pending, pendingRow, pendingCol, pendingFull = true, r, n, full
		}
		r++
	}
	if pending {
		return pendingRow, pendingCol, true
	}
	return 0, 0, false
}

// ScrollToChar scrolls the least amount needed to show pos. In NoWrap mode
// the column is brought into view as well.
func (v *View) ScrollToChar(pos int) {
	line, col := v.buf.CharToLineCol(pos)
	v.vp.ScrollLine = scrollInto(v.vp.ScrollLine, line, v.vp.Height)
	if v.mode == NoWrap {
		v.vp.ScrollCol = scrollInto(v.vp.ScrollCol, col, v.vp.Width)
		// Wide runes can push the cursor cell past the edge.
		start := v.buf.LineToChar(line)
		runes := []rune(v.buf.Slice(start, start+col))
		for v.vp.ScrollCol < col && runewidth.StringWidth(string(runes[v.vp.ScrollCol:]))+1 > v.vp.Width {
			v.vp.ScrollCol++
		}
	}
}

func scrollInto(scroll, target, size int) int {
	switch {
	case target < scroll:
		return target
	case size <= 0:
		return target
	case target >= scroll+size:
		return target - (size - 1)
	}
	return scroll
}
