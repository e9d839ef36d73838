package runtime

import (
	"fmt"
	"slices"

	perrors "github.com/odvcencio/panes/pkg/errors"
	"github.com/odvcencio/panes/pkg/ui/event"
	"github.com/odvcencio/panes/pkg/ui/layout"
)

// PaneContext tells a pane where it is and whether it has focus.
type PaneContext struct {
	ID      int
	Rect    layout.Rect
	Focused bool
}

// Pane is the content of a layout leaf.
//
// HandleEvent receives every event, focused or not, and returns true when
// the pane needs a redraw. Mouse coordinates are screen coordinates.
type Pane interface {
	Render(ctx PaneContext, buf *Buffer)
	HandleEvent(ctx PaneContext, ev event.Event) bool
}

// PaneFuncs adapts plain functions to Pane. Nil funcs are no-ops.
type PaneFuncs struct {
	RenderFunc func(ctx PaneContext, buf *Buffer)
	EventFunc  func(ctx PaneContext, ev event.Event) bool
}

func (p PaneFuncs) Render(ctx PaneContext, buf *Buffer) {
	if p.RenderFunc != nil {
		p.RenderFunc(ctx, buf)
	}
}

func (p PaneFuncs) HandleEvent(ctx PaneContext, ev event.Event) bool {
	if p.EventFunc != nil {
		return p.EventFunc(ctx, ev)
	}
	return false
}

// Tree pairs a layout with the panes filling its leaves.
type Tree struct {
	Root  *layout.Node
	Panes map[int]Pane
}

// NewTree validates root and checks every leaf has a pane.
func NewTree(root *layout.Node, panes map[int]Pane) (*Tree, error) {
	if err := root.Validate(); err != nil {
		return nil, perrors.Wrap(err, perrors.ErrCodeLayoutInvalid, "invalid layout tree")
	}

	var missing []int
	for _, id := range root.PaneIDs() {
		if panes[id] == nil {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, perrors.New(perrors.ErrCodeLayoutInvalid, fmt.Sprintf("no pane for leaves %v", missing)).
			WithContext("missing", missing)
	}
	return &Tree{Root: root, Panes: panes}, nil
}

// IDs lists pane ids in tree order.
func (t *Tree) IDs() []int {
	if t == nil {
		return nil
	}
	return t.Root.PaneIDs()
}

// Has reports whether id is a leaf of the tree.
func (t *Tree) Has(id int) bool {
	return slices.Contains(t.IDs(), id)
}
