// Package event defines the events delivered to panes.
//
// Raw backend input (terminal.Event) is translated into these by the click
// processor before it reaches the run loop.
package event

import (
	"time"

	"github.com/odvcencio/panes/pkg/ui/terminal"
)

// Event represents something a pane may react to.
type Event interface {
	isEvent()
}

// Key represents a keyboard input event.
type Key struct {
	Code  terminal.Key
	Rune  rune
	Shift bool
	Ctrl  bool
	Alt   bool
}

func (Key) isEvent() {}

// IsRune reports whether k is the plain or modified rune r.
func (k Key) IsRune(r rune) bool {
	return k.Code == terminal.KeyRune && k.Rune == r
}

// MouseKind classifies a mouse event after click-pattern synthesis.
type MouseKind int

const (
	MouseMoved MouseKind = iota
	MouseDown
	MouseUp
	MouseDrag
	MouseDoubleClick
	MouseTripleClick
	MouseScrollUp
	MouseScrollDown
)

var mouseKindNames = [...]string{
	MouseMoved:       "moved",
	MouseDown:        "down",
	MouseUp:          "up",
	MouseDrag:        "drag",
	MouseDoubleClick: "double-click",
	MouseTripleClick: "triple-click",
	MouseScrollUp:    "scroll-up",
	MouseScrollDown:  "scroll-down",
}

func (k MouseKind) String() string {
	if k >= 0 && int(k) < len(mouseKindNames) {
		return mouseKindNames[k]
	}
	return "unknown"
}

// Mouse represents a mouse event in screen coordinates.
type Mouse struct {
	X, Y   int
	Kind   MouseKind
	Button terminal.MouseButton
	Shift  bool
	Ctrl   bool
	Alt    bool
}

func (Mouse) isEvent() {}

// IsPress reports whether m starts a click of any multiplicity.
func (m Mouse) IsPress() bool {
	return m.Kind == MouseDown || m.Kind == MouseDoubleClick || m.Kind == MouseTripleClick
}

// Resize reports a new terminal size.
type Resize struct {
	W, H int
}

func (Resize) isEvent() {}

// Focus is delivered when a pane gains or loses focus.
type Focus struct {
	Focused bool
}

func (Focus) isEvent() {}

// Animation is a periodic tick sent while input is idle.
type Animation struct {
	Time time.Time
}

func (Animation) isEvent() {}

// Paste carries bracketed paste content.
type Paste struct {
	Text string
}

func (Paste) isEvent() {}

// Quit asks the run loop to exit.
type Quit struct{}

func (Quit) isEvent() {}

// Name returns a short label for ev, used for metrics and logs.
func Name(ev Event) string {
	switch ev.(type) {
	case Key:
		return "key"
	case Mouse:
		return "mouse"
	case Resize:
		return "resize"
	case Focus:
		return "focus"
	case Animation:
		return "animation"
	case Paste:
		return "paste"
	case Quit:
		return "quit"
	default:
		return "other"
	}
}
