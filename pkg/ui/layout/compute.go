package layout

import (
	"math"
	"sort"
)

const maxCells = math.MaxInt32

// Placement is a pane's computed rectangle.
type Placement struct {
	ID   int
	Rect Rect
}

// Compute assigns a rectangle to every pane in the tree, in pre-order.
// It is pure: the same tree and area always give the same result.
//
// Minimums win over the container: when they cannot all fit, rectangles
// extend past area and callers clip at draw time.
func Compute(root *Node, area Rect) []Placement {
	var out []Placement
	computeInto(root, area, &out)
	return out
}

// Lookup finds the rectangle computed for id.
func Lookup(placements []Placement, id int) (Rect, bool) {
	for _, p := range placements {
		if p.ID == id {
			return p.Rect, true
		}
	}
	return Rect{}, false
}

func computeInto(n *Node, area Rect, out *[]Placement) {
	if n == nil {
		return
	}
	if n.IsPane {
		*out = append(*out, Placement{ID: n.ID, Rect: area})
		return
	}
	if len(n.Children) == 0 {
		return
	}

	sizes := distribute(n.Children, mainAxis(n.Direction, area), max(n.Gutter, 0))

	cursor := area.X
	if n.Direction == Vertical {
		cursor = area.Y
	}
	for i, c := range n.Children {
		var r Rect
		if n.Direction == Vertical {
			r = Rect{X: area.X, Y: cursor, Width: area.Width, Height: sizes[i]}
		} else {
			r = Rect{X: cursor, Y: area.Y, Width: sizes[i], Height: area.Height}
		}
		computeInto(c.Node, r, out)

		cursor += sizes[i]
		if i+1 < len(n.Children) {
			cursor += max(n.Gutter, 0)
		}
	}
}

func mainAxis(dir Direction, r Rect) int {
	if dir == Vertical {
		return max(r.Height, 0)
	}
	return max(r.Width, 0)
}

// distribute splits axis cells among children after reserving gutters.
func distribute(children []Child, axis, gutter int) []int {
	n := len(children)
	avail := max(axis-gutter*(n-1), 0)

	total := 0
	for _, c := range children {
		total += max(c.Size.Weight, 0)
	}
	if total == 0 {
		total = n
	}

	sizes := make([]int, n)
	sum := 0
	for i, c := range children {
		weight := c.Size.Weight
		if weight <= 0 {
			// Fixed children still take a unit share; their bounds pin them
			// and the overflow pass absorbs the excess.
			weight = 1
		}
		target := int(int64(avail) * int64(weight) / int64(total))
		sizes[i] = clamp(target, c.Size.min(), c.Size.max())
		sum += sizes[i]
	}

	switch {
	case sum > avail:
		shrink(children, sizes, sum-avail)
	case sum < avail:
		grow(children, sizes, avail-sum)
	}
	return sizes
}

// shrink takes cells from the largest children first, never below min.
func shrink(children []Child, sizes []int, over int) {
	order := make([]int, len(sizes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sizes[order[a]] > sizes[order[b]]
	})

	for _, i := range order {
		if over == 0 {
			return
		}
		take := min(max(sizes[i]-children[i].Size.min(), 0), over)
		sizes[i] -= take
		over -= take
	}
}

// grow hands out one cell at a time in child order, skipping children at
// their max. A full pass with no taker leaves the rest as trailing slack.
func grow(children []Child, sizes []int, under int) {
	for under > 0 {
		progressed := false
		for i := range sizes {
			if under == 0 {
				return
			}
			if sizes[i] < children[i].Size.max() {
				sizes[i]++
				under--
				progressed = true
			}
		}
		if !progressed {
			return
		}
	}
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
