package runtime

import (
	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/panes/pkg/ui/backend"
	"github.com/odvcencio/panes/pkg/ui/layout"
)

// Cell represents a single character cell in the buffer. A zero Rune marks
// the trailing half of a wide character.
type Cell struct {
	Rune  rune
	Style backend.Style
}

// Buffer is a 2D grid of cells panes render into. The screen flushes it to
// the backend after each render, sending only cells that changed.
type Buffer struct {
	cells  []Cell
	width  int
	height int

	dirty      []bool
	dirtyCount int
	dirtyRect  layout.Rect

	cursorX, cursorY int
	cursorVisible    bool
}

// NewBuffer creates a buffer with the given dimensions.
func NewBuffer(w, h int) *Buffer {
	w, h = max(w, 0), max(h, 0)
	b := &Buffer{
		cells:  make([]Cell, w*h),
		dirty:  make([]bool, w*h),
		width:  w,
		height: h,
	}
	b.Clear()
	return b
}

// Size returns the buffer dimensions.
func (b *Buffer) Size() (w, h int) {
	return b.width, b.height
}

// Bounds returns the buffer area as a rect at the origin.
func (b *Buffer) Bounds() layout.Rect {
	return layout.NewRect(0, 0, b.width, b.height)
}

// Resize changes the buffer dimensions, preserving content where possible.
func (b *Buffer) Resize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	if w == b.width && h == b.height {
		return
	}
	cells := make([]Cell, w*h)
	for i := range cells {
		cells[i] = Cell{Rune: ' ', Style: backend.DefaultStyle()}
	}
	for y := 0; y < min(h, b.height); y++ {
		copy(cells[y*w:y*w+min(w, b.width)], b.cells[y*b.width:])
	}
	b.cells = cells
	b.dirty = make([]bool, w*h)
	b.width = w
	b.height = h
	b.MarkAllDirty()
}

// Clear fills the buffer with spaces, default style, and hides the cursor.
func (b *Buffer) Clear() {
	b.Fill(b.Bounds(), ' ', backend.DefaultStyle())
	b.cursorVisible = false
}

// Get returns the cell at position (x, y), or a blank cell out of bounds.
func (b *Buffer) Get(x, y int) Cell {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Cell{Rune: ' '}
	}
	return b.cells[y*b.width+x]
}

// Set writes a rune at (x, y). Wide runes also claim the next cell; a wide
// rune that would straddle the right edge is replaced with a space.
func (b *Buffer) Set(x, y int, r rune, s backend.Style) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	if runewidth.RuneWidth(r) == 2 {
		if x+1 >= b.width {
			b.put(x, y, Cell{Rune: ' ', Style: s})
			return
		}
		b.put(x, y, Cell{Rune: r, Style: s})
		b.put(x+1, y, Cell{Rune: 0, Style: s})
		return
	}
	b.put(x, y, Cell{Rune: r, Style: s})
}

func (b *Buffer) put(x, y int, c Cell) {
	idx := y*b.width + x
	if b.cells[idx] != c {
		b.cells[idx] = c
		b.markCellDirty(x, y, idx)
	}
}

// SetString writes s starting at (x, y), advancing by display width.
// It returns the number of columns consumed. Text is clipped to the buffer.
func (b *Buffer) SetString(x, y int, s string, style backend.Style) int {
	return b.SetStringClipped(x, y, s, style, b.Bounds())
}

// SetStringClipped writes s starting at (x, y) but only inside clip.
func (b *Buffer) SetStringClipped(x, y int, s string, style backend.Style, clip layout.Rect) int {
	clip = clip.Intersection(b.Bounds())
	col := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col >= clip.Right() {
			break
		}
		if col >= clip.X && col+w <= clip.Right() && y >= clip.Y && y < clip.Bottom() {
			b.Set(col, y, r, style)
		}
		col += w
	}
	return col - x
}

// Fill fills a rectangular region with a rune and style.
func (b *Buffer) Fill(r layout.Rect, ch rune, s backend.Style) {
	r = r.Intersection(b.Bounds())
	cell := Cell{Rune: ch, Style: s}
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			b.put(x, y, cell)
		}
	}
}

// SetCursor places the terminal cursor for this frame.
func (b *Buffer) SetCursor(x, y int) {
	b.cursorX, b.cursorY = x, y
	b.cursorVisible = true
}

// Cursor returns the cursor position and whether it is shown.
func (b *Buffer) Cursor() (x, y int, visible bool) {
	return b.cursorX, b.cursorY, b.cursorVisible
}

// Text returns row y as a string, skipping wide-rune continuations.
func (b *Buffer) Text(y int) string {
	if y < 0 || y >= b.height {
		return ""
	}
	row := make([]rune, 0, b.width)
	for _, c := range b.cells[y*b.width : (y+1)*b.width] {
		if c.Rune != 0 {
			row = append(row, c.Rune)
		}
	}
	return string(row)
}

// SubBuffer is a view into a region of a buffer. Coordinates are relative to
// the region and writes are clipped to it.
type SubBuffer struct {
	parent *Buffer
	bounds layout.Rect
}

// Sub creates a SubBuffer for the given region.
func (b *Buffer) Sub(r layout.Rect) *SubBuffer {
	return &SubBuffer{parent: b, bounds: r}
}

// Size returns the sub-buffer dimensions.
func (s *SubBuffer) Size() (w, h int) {
	return s.bounds.Width, s.bounds.Height
}

// Set writes a rune at position relative to the sub-buffer.
func (s *SubBuffer) Set(x, y int, r rune, style backend.Style) {
	if x < 0 || x >= s.bounds.Width || y < 0 || y >= s.bounds.Height {
		return
	}
	s.parent.Set(s.bounds.X+x, s.bounds.Y+y, r, style)
}

// SetString writes a string at position relative to the sub-buffer.
func (s *SubBuffer) SetString(x, y int, str string, style backend.Style) int {
	return s.parent.SetStringClipped(s.bounds.X+x, s.bounds.Y+y, str, style, s.bounds)
}

// Fill fills a region relative to the sub-buffer.
func (s *SubBuffer) Fill(r layout.Rect, ch rune, style backend.Style) {
	r.X += s.bounds.X
	r.Y += s.bounds.Y
	s.parent.Fill(r.Intersection(s.bounds), ch, style)
}

// --- Dirty tracking ---

func (b *Buffer) markCellDirty(x, y, idx int) {
	if b.dirty[idx] {
		return
	}
	b.dirty[idx] = true
	b.dirtyCount++

	if b.dirtyCount == 1 {
		b.dirtyRect = layout.NewRect(x, y, 1, 1)
		return
	}
	if x < b.dirtyRect.X {
		b.dirtyRect.Width += b.dirtyRect.X - x
		b.dirtyRect.X = x
	} else if x >= b.dirtyRect.Right() {
		b.dirtyRect.Width = x - b.dirtyRect.X + 1
	}
	if y < b.dirtyRect.Y {
		b.dirtyRect.Height += b.dirtyRect.Y - y
		b.dirtyRect.Y = y
	} else if y >= b.dirtyRect.Bottom() {
		b.dirtyRect.Height = y - b.dirtyRect.Y + 1
	}
}

// MarkAllDirty marks the entire buffer as dirty.
func (b *Buffer) MarkAllDirty() {
	for i := range b.dirty {
		b.dirty[i] = true
	}
	b.dirtyCount = len(b.dirty)
	b.dirtyRect = b.Bounds()
}

// ClearDirty resets all dirty flags.
func (b *Buffer) ClearDirty() {
	clear(b.dirty)
	b.dirtyCount = 0
	b.dirtyRect = layout.Rect{}
}

// IsDirty returns true if any cells have changed.
func (b *Buffer) IsDirty() bool {
	return b.dirtyCount > 0
}

// DirtyCount returns the number of dirty cells.
func (b *Buffer) DirtyCount() int {
	return b.dirtyCount
}

// DirtyRect returns the bounding box of dirty cells.
func (b *Buffer) DirtyRect() layout.Rect {
	return b.dirtyRect
}

// IsCellDirty returns true if the cell at (x, y) is dirty.
func (b *Buffer) IsCellDirty(x, y int) bool {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return false
	}
	return b.dirty[y*b.width+x]
}

// ForEachDirtyCell calls fn for each dirty cell in row-major order.
func (b *Buffer) ForEachDirtyCell(fn func(x, y int, cell Cell)) {
	if b.dirtyCount == 0 {
		return
	}
	r := b.dirtyRect.Intersection(b.Bounds())
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			idx := y*b.width + x
			if b.dirty[idx] {
				fn(x, y, b.cells[idx])
			}
		}
	}
}
