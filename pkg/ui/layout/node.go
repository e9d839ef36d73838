// Package layout computes pane rectangles from a weighted split tree.
//
// A tree is built from Pane leaves and HSplit/VSplit containers. Compute
// walks it once per frame; nothing is cached between calls.
package layout

import (
	"fmt"
	"strings"
)

// Direction is the axis a split divides.
type Direction int

const (
	Horizontal Direction = iota // children left to right
	Vertical                    // children top to bottom
)

func (d Direction) String() string {
	if d == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ParseDirection accepts "horizontal"/"h" and "vertical"/"v".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h", "":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("unknown direction %q", s)
}

// Size controls how much of a split's axis a child receives.
// Weight 0 marks a fixed child sized by Min/Max; nil bounds are absent.
type Size struct {
	Weight int
	Min    *int
	Max    *int
}

func (s Size) min() int {
	if s.Min == nil {
		return 0
	}
	return max(*s.Min, 0)
}

func (s Size) max() int {
	if s.Max == nil {
		return maxCells
	}
	return max(*s.Max, 0)
}

// Child is a sized entry in a split.
type Child struct {
	Node *Node
	Size Size
}

// WithMin returns a copy with a minimum size.
func (c Child) WithMin(n int) Child {
	c.Size.Min = &n
	return c
}

// WithMax returns a copy with a maximum size.
func (c Child) WithMax(n int) Child {
	c.Size.Max = &n
	return c
}

// Node is either a pane leaf or a split container.
type Node struct {
	// Pane leaves.
	ID     int
	IsPane bool

	// Splits.
	Direction Direction
	Gutter    int
	Children  []Child
}

// Pane creates a leaf for pane id.
func Pane(id int) *Node {
	return &Node{ID: id, IsPane: true}
}

// HSplit lays children out left to right with gutter cells between them.
func HSplit(gutter int, children ...Child) *Node {
	return &Node{Direction: Horizontal, Gutter: gutter, Children: children}
}

// VSplit lays children out top to bottom with gutter cells between them.
func VSplit(gutter int, children ...Child) *Node {
	return &Node{Direction: Vertical, Gutter: gutter, Children: children}
}

// Split builds a split in direction dir.
func Split(dir Direction, gutter int, children ...Child) *Node {
	return &Node{Direction: dir, Gutter: gutter, Children: children}
}

// Weighted sizes node proportionally.
func Weighted(weight int, node *Node) Child {
	return Child{Node: node, Size: Size{Weight: weight}}
}

// Fixed sizes node to exactly n cells.
func Fixed(n int, node *Node) Child {
	return Child{Node: node}.WithMin(n).WithMax(n)
}

// PaneIDs lists leaf ids in pre-order.
func (n *Node) PaneIDs() []int {
	var ids []int
	n.walk(func(leaf *Node) {
		ids = append(ids, leaf.ID)
	})
	return ids
}

func (n *Node) walk(fn func(leaf *Node)) {
	if n == nil {
		return
	}
	if n.IsPane {
		fn(n)
		return
	}
	for _, c := range n.Children {
		c.Node.walk(fn)
	}
}

// ValidationError lists every structural problem found in a tree.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid layout: " + strings.Join(e.Problems, "; ")
}

// Validate reports duplicate pane ids, inverted bounds, negative gutters
// and weights, and missing child nodes. Compute tolerates all of these; it
// is Validate's job to reject them at construction time.
func (n *Node) Validate() error {
	if n == nil {
		return &ValidationError{Problems: []string{"nil root"}}
	}

	var problems []string
	seen := make(map[int]bool)

	var visit func(node *Node, path string)
	visit = func(node *Node, path string) {
		if node.IsPane {
			if seen[node.ID] {
				problems = append(problems, fmt.Sprintf("%s: duplicate pane id %d", path, node.ID))
			}
			seen[node.ID] = true
			return
		}
		if node.Gutter < 0 {
			problems = append(problems, fmt.Sprintf("%s: negative gutter %d", path, node.Gutter))
		}
		for i, c := range node.Children {
			childPath := fmt.Sprintf("%s/%d", path, i)
			if c.Size.Weight < 0 {
				problems = append(problems, fmt.Sprintf("%s: negative weight %d", childPath, c.Size.Weight))
			}
			if c.Size.Min != nil && *c.Size.Min < 0 {
				problems = append(problems, fmt.Sprintf("%s: negative min %d", childPath, *c.Size.Min))
			}
			if c.Size.Max != nil && *c.Size.Max < 0 {
				problems = append(problems, fmt.Sprintf("%s: negative max %d", childPath, *c.Size.Max))
			}
			if c.Size.Min != nil && c.Size.Max != nil && *c.Size.Min > *c.Size.Max {
				problems = append(problems, fmt.Sprintf("%s: min %d > max %d", childPath, *c.Size.Min, *c.Size.Max))
			}
			if c.Node == nil {
				problems = append(problems, fmt.Sprintf("%s: missing node", childPath))
				continue
			}
			visit(c.Node, childPath)
		}
	}
	visit(n, "root")

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
