package layout

import "fmt"

// Rect is a positioned rectangle in terminal cells.
type Rect struct {
	X, Y, Width, Height int
}

// NewRect creates a rect from position and size.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// Contains returns true if the point is inside the rect.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersects returns true if the two rects overlap.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// Intersection returns the overlapping area of two rects.
func (r Rect) Intersection(other Rect) Rect {
	x := max(r.X, other.X)
	y := max(r.Y, other.Y)
	x2 := min(r.Right(), other.Right())
	y2 := min(r.Bottom(), other.Bottom())
	if x2 <= x || y2 <= y {
		return Rect{}
	}
	return Rect{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// Inset returns a rect shrunk by the given amounts.
func (r Rect) Inset(top, right, bottom, left int) Rect {
	return Rect{
		X:      r.X + left,
		Y:      r.Y + top,
		Width:  max(0, r.Width-left-right),
		Height: max(0, r.Height-top-bottom),
	}
}

// Right is the first column past the rect.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom is the first row past the rect.
func (r Rect) Bottom() int { return r.Y + r.Height }

// IsEmpty reports whether the rect covers no cells.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}
