// Package compositor turns a cell grid into terminal output. A Grid holds
// the frame being built; Serialize writes it out as one ANSI string.
package compositor

import (
	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/panes/pkg/ui/backend"
)

// Cell represents a single character cell on screen.
type Cell struct {
	Rune  rune
	Width uint8 // Display width (1 for most, 2 for CJK, 0 for continuation)
	Style backend.Style
}

// EmptyCell returns a blank cell with default style.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Width: 1, Style: backend.DefaultStyle()}
}

// Empty returns true if the cell is a space with default style.
func (c Cell) Empty() bool {
	return c == EmptyCell()
}

// Frame is a read-only view of a cell grid.
type Frame interface {
	Size() (width, height int)
	Cell(x, y int) Cell
	Cursor() (x, y int, visible bool)
}

// Grid is a row-major cell grid.
type Grid struct {
	width, height int
	cells         []Cell

	cursorX, cursorY int
	cursorVisible    bool
}

// NewGrid creates a grid filled with empty cells.
func NewGrid(width, height int) *Grid {
	g := &Grid{}
	g.Resize(width, height)
	return g
}

// Resize changes grid dimensions, preserving content where possible.
func (g *Grid) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if width == g.width && height == g.height && g.cells != nil {
		return
	}

	cells := make([]Cell, width*height)
	for i := range cells {
		cells[i] = EmptyCell()
	}
	for y := 0; y < min(height, g.height); y++ {
		copy(cells[y*width:y*width+min(width, g.width)], g.cells[y*g.width:])
	}

	g.cells = cells
	g.width = width
	g.height = height
}

// Clear resets every cell to empty.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = EmptyCell()
	}
}

// Set places a rune at the given position with style.
// Wide characters occupy two cells; the second becomes a continuation.
func (g *Grid) Set(x, y int, r rune, style backend.Style) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return
	}

	width := runewidth.RuneWidth(r)
	if width == 0 {
		width = 1
	}

	g.cells[y*g.width+x] = Cell{Rune: r, Width: uint8(width), Style: style}
	if width == 2 && x+1 < g.width {
		g.cells[y*g.width+x+1] = Cell{Rune: 0, Width: 0, Style: style}
	}
}

// Cell returns the cell at (x, y), or an empty cell when out of bounds.
func (g *Grid) Cell(x, y int) Cell {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return EmptyCell()
	}
	return g.cells[y*g.width+x]
}

// Size returns grid dimensions.
func (g *Grid) Size() (width, height int) {
	return g.width, g.height
}

// SetCursor positions the terminal cursor shown after the frame.
func (g *Grid) SetCursor(x, y int, visible bool) {
	g.cursorX, g.cursorY, g.cursorVisible = x, y, visible
}

// Cursor returns the cursor position and visibility.
func (g *Grid) Cursor() (x, y int, visible bool) {
	return g.cursorX, g.cursorY, g.cursorVisible
}
