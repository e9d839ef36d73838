// Package terminal defines the raw input events a backend produces.
// These are decoded by the backend library; nothing in this module parses
// escape sequences coming from the terminal.
package terminal

// Event represents a raw terminal input event.
type Event interface {
	eventMarker()
}

// KeyEvent represents a key press. Control chords on letters are reported
// as KeyRune with Ctrl set and a lower-case Rune.
type KeyEvent struct {
	Key   Key
	Rune  rune
	Alt   bool
	Ctrl  bool
	Shift bool
}

func (KeyEvent) eventMarker() {}

// ResizeEvent indicates terminal size changed.
type ResizeEvent struct {
	Width  int
	Height int
}

func (ResizeEvent) eventMarker() {}

// MouseEvent represents a mouse input event.
type MouseEvent struct {
	X, Y   int
	Button MouseButton
	Action MouseAction
	Alt    bool
	Ctrl   bool
	Shift  bool
}

func (MouseEvent) eventMarker() {}

// PasteEvent represents bracketed paste content.
type PasteEvent struct {
	Text string
}

func (PasteEvent) eventMarker() {}

// MouseButton identifies which mouse button was involved.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

func (b MouseButton) String() string {
	switch b {
	case MouseLeft:
		return "left"
	case MouseMiddle:
		return "middle"
	case MouseRight:
		return "right"
	case MouseWheelUp:
		return "wheel-up"
	case MouseWheelDown:
		return "wheel-down"
	default:
		return "none"
	}
}

// MouseAction identifies what happened with the mouse.
type MouseAction int

const (
	MousePress MouseAction = iota
	MouseRelease
	MouseMove
	// MouseDrag is motion while a button is held.
	MouseDrag
)

// Key represents special keys.
type Key int

const (
	KeyNone Key = iota
	KeyRune     // Regular character
	KeyEnter
	KeyBackspace
	KeyTab
	KeyBacktab
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyDelete
	KeyInsert
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

var keyNames = map[Key]string{
	KeyRune:      "rune",
	KeyEnter:     "enter",
	KeyBackspace: "backspace",
	KeyTab:       "tab",
	KeyBacktab:   "backtab",
	KeyEscape:    "esc",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "pgup",
	KeyPageDown:  "pgdn",
	KeyDelete:    "delete",
	KeyInsert:    "insert",
	KeyF1:        "f1",
	KeyF2:        "f2",
	KeyF3:        "f3",
	KeyF4:        "f4",
	KeyF5:        "f5",
	KeyF6:        "f6",
	KeyF7:        "f7",
	KeyF8:        "f8",
	KeyF9:        "f9",
	KeyF10:       "f10",
	KeyF11:       "f11",
	KeyF12:       "f12",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "none"
}

// KeyByName looks up a key by its String name.
func KeyByName(name string) (Key, bool) {
	for k, n := range keyNames {
		if n == name {
			return k, true
		}
	}
	return KeyNone, false
}
