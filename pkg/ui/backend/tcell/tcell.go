// Package tcell provides a Backend implementation using tcell.
package tcell

import (
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/odvcencio/panes/pkg/ui/backend"
	"github.com/odvcencio/panes/pkg/ui/terminal"
)

const queueSize = 256

// Backend implements backend.Backend using tcell.
//
// tcell's PollEvent blocks with no timeout, so Init starts a pump goroutine
// that decodes screen events into a bounded queue; PollEvent(timeout) reads
// from that queue.
type Backend struct {
	screen tcell.Screen
	queue  *backend.Queue

	startOnce sync.Once
	finiOnce  sync.Once

	// Pump-goroutine state; never touched elsewhere.
	inPaste     bool
	pasteBuffer strings.Builder
	buttons     tcell.ButtonMask
}

// New creates a new tcell backend.
func New() (*Backend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen), nil
}

// NewWithScreen creates a backend with an existing tcell screen (for testing).
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{
		screen: screen,
		queue:  backend.NewQueue(queueSize),
	}
}

// Init initializes the backend.
func (b *Backend) Init() error {
	if err := b.screen.Init(); err != nil {
		return err
	}
	b.screen.EnableMouse()
	b.screen.EnablePaste()
	b.screen.HideCursor()
	b.startOnce.Do(func() { go b.pump() })
	return nil
}

// Fini cleans up the backend. Safe to call more than once.
func (b *Backend) Fini() {
	b.finiOnce.Do(func() {
		b.queue.Close()
		b.screen.Fini()
	})
}

// Size returns the terminal dimensions.
func (b *Backend) Size() (width, height int) {
	return b.screen.Size()
}

// SetContent sets a cell at position (x, y).
func (b *Backend) SetContent(x, y int, mainc rune, comb []rune, style backend.Style) {
	b.screen.SetContent(x, y, mainc, comb, convertStyle(style))
}

// Show synchronizes the buffer to the terminal.
func (b *Backend) Show() {
	b.screen.Show()
}

// Clear clears the screen.
func (b *Backend) Clear() {
	b.screen.Clear()
}

// HideCursor hides the cursor.
func (b *Backend) HideCursor() {
	b.screen.HideCursor()
}

// ShowCursor shows the cursor.
func (b *Backend) ShowCursor() {
	// tcell shows cursor when we set its position
}

// SetCursorPos sets the cursor position.
func (b *Backend) SetCursorPos(x, y int) {
	b.screen.ShowCursor(x, y)
}

// PollEvent waits up to timeout for the next decoded event.
func (b *Backend) PollEvent(timeout time.Duration) (terminal.Event, error) {
	return b.queue.Poll(timeout)
}

// PostEvent injects an event. Keys, mouse and resize events travel through
// the screen so they are decoded in order with real input.
func (b *Backend) PostEvent(ev terminal.Event) error {
	if tev := reverseConvertEvent(ev); tev != nil {
		if err := b.screen.PostEvent(tev); err == nil {
			return nil
		}
	}
	return b.queue.Push(ev)
}

// Beep emits an audible bell.
func (b *Backend) Beep() {
	_ = b.screen.Beep()
}

// Sync forces a full redraw.
func (b *Backend) Sync() {
	b.screen.Sync()
}

func (b *Backend) pump() {
	for {
		ev := b.screen.PollEvent()
		if ev == nil {
			return
		}
		out := b.decode(ev)
		if out == nil {
			continue
		}
		if !b.queue.PushWait(out) {
			return
		}
	}
}

// decode runs the bracketed paste state machine and converts everything else.
func (b *Backend) decode(ev tcell.Event) terminal.Event {
	switch e := ev.(type) {
	case *tcell.EventPaste:
		if e.Start() {
			b.inPaste = true
			b.pasteBuffer.Reset()
			return nil
		}
		if e.End() {
			b.inPaste = false
			text := b.pasteBuffer.String()
			b.pasteBuffer.Reset()
			if text != "" {
				return terminal.PasteEvent{Text: text}
			}
			return nil
		}

	case *tcell.EventKey:
		if b.inPaste {
			switch e.Key() {
			case tcell.KeyRune:
				b.pasteBuffer.WriteRune(e.Rune())
			case tcell.KeyEnter:
				b.pasteBuffer.WriteRune('\n')
			case tcell.KeyTab:
				b.pasteBuffer.WriteRune('\t')
			}
			return nil
		}
		return convertKeyEvent(e)

	case *tcell.EventMouse:
		return b.convertMouse(e)

	case *tcell.EventResize:
		w, h := e.Size()
		return terminal.ResizeEvent{Width: w, Height: h}
	}
	return nil
}

// convertStyle converts backend.Style to tcell.Style.
func convertStyle(s backend.Style) tcell.Style {
	fg, bg, attrs := s.Decompose()
	style := tcell.StyleDefault.
		Foreground(convertColor(fg)).
		Background(convertColor(bg))

	if attrs&backend.AttrBold != 0 {
		style = style.Bold(true)
	}
	if attrs&backend.AttrItalic != 0 {
		style = style.Italic(true)
	}
	if attrs&backend.AttrUnderline != 0 {
		style = style.Underline(true)
	}
	if attrs&backend.AttrDim != 0 {
		style = style.Dim(true)
	}
	if attrs&backend.AttrBlink != 0 {
		style = style.Blink(true)
	}
	if attrs&backend.AttrReverse != 0 {
		style = style.Reverse(true)
	}
	if attrs&backend.AttrStrikeThrough != 0 {
		style = style.StrikeThrough(true)
	}

	return style
}

// convertColor converts backend.Color to tcell.Color.
func convertColor(c backend.Color) tcell.Color {
	if c == backend.ColorDefault {
		return tcell.ColorDefault
	}
	if c.IsRGB() {
		r, g, b := c.RGB()
		return tcell.NewRGBColor(int32(r), int32(g), int32(b))
	}
	return tcell.PaletteColor(int(c))
}

// convertKeyEvent maps a tcell key. Control letters arrive either as
// KeyCtrlA..KeyCtrlZ or as KeyRune with ModCtrl depending on the terminal;
// both become KeyRune + Ctrl with a lower-case rune.
func convertKeyEvent(e *tcell.EventKey) terminal.KeyEvent {
	mods := e.Modifiers()
	ev := terminal.KeyEvent{
		Alt:   mods&tcell.ModAlt != 0,
		Ctrl:  mods&tcell.ModCtrl != 0,
		Shift: mods&tcell.ModShift != 0,
	}

	k := e.Key()
	switch {
	case k == tcell.KeyRune:
		ev.Key = terminal.KeyRune
		ev.Rune = e.Rune()
		if ev.Ctrl {
			ev.Rune = unicode.ToLower(ev.Rune)
		}
	case isCtrlLetter(k):
		ev.Key = terminal.KeyRune
		ev.Rune = rune('a' + int(k-tcell.KeyCtrlA))
		ev.Ctrl = true
	default:
		ev.Key = convertKey(k)
	}
	return ev
}

func isCtrlLetter(k tcell.Key) bool {
	if k < tcell.KeyCtrlA || k > tcell.KeyCtrlZ {
		return false
	}
	switch k {
	case tcell.KeyBackspace, tcell.KeyTab, tcell.KeyEnter:
		return false
	}
	return true
}

// convertKey converts tcell.Key to terminal.Key.
func convertKey(k tcell.Key) terminal.Key {
	switch k {
	case tcell.KeyUp:
		return terminal.KeyUp
	case tcell.KeyDown:
		return terminal.KeyDown
	case tcell.KeyRight:
		return terminal.KeyRight
	case tcell.KeyLeft:
		return terminal.KeyLeft
	case tcell.KeyPgUp:
		return terminal.KeyPageUp
	case tcell.KeyPgDn:
		return terminal.KeyPageDown
	case tcell.KeyHome:
		return terminal.KeyHome
	case tcell.KeyEnd:
		return terminal.KeyEnd
	case tcell.KeyInsert:
		return terminal.KeyInsert
	case tcell.KeyDelete:
		return terminal.KeyDelete
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return terminal.KeyBackspace
	case tcell.KeyTab:
		return terminal.KeyTab
	case tcell.KeyBacktab:
		return terminal.KeyBacktab
	case tcell.KeyEnter:
		return terminal.KeyEnter
	case tcell.KeyEscape:
		return terminal.KeyEscape
	case tcell.KeyF1:
		return terminal.KeyF1
	case tcell.KeyF2:
		return terminal.KeyF2
	case tcell.KeyF3:
		return terminal.KeyF3
	case tcell.KeyF4:
		return terminal.KeyF4
	case tcell.KeyF5:
		return terminal.KeyF5
	case tcell.KeyF6:
		return terminal.KeyF6
	case tcell.KeyF7:
		return terminal.KeyF7
	case tcell.KeyF8:
		return terminal.KeyF8
	case tcell.KeyF9:
		return terminal.KeyF9
	case tcell.KeyF10:
		return terminal.KeyF10
	case tcell.KeyF11:
		return terminal.KeyF11
	case tcell.KeyF12:
		return terminal.KeyF12
	default:
		return terminal.KeyNone
	}
}

const (
	pressMask = tcell.Button1 | tcell.Button2 | tcell.Button3
	wheelMask = tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight
)

// convertMouse turns tcell's button-state snapshots into transitions by
// comparing against the previously held buttons.
func (b *Backend) convertMouse(e *tcell.EventMouse) terminal.MouseEvent {
	x, y := e.Position()
	mods := e.Modifiers()
	ev := terminal.MouseEvent{
		X:     x,
		Y:     y,
		Alt:   mods&tcell.ModAlt != 0,
		Ctrl:  mods&tcell.ModCtrl != 0,
		Shift: mods&tcell.ModShift != 0,
	}

	buttons := e.Buttons()
	pressed := buttons & pressMask
	held := b.buttons

	switch {
	case buttons&tcell.WheelUp != 0:
		ev.Button, ev.Action = terminal.MouseWheelUp, terminal.MousePress
		return ev
	case buttons&tcell.WheelDown != 0:
		ev.Button, ev.Action = terminal.MouseWheelDown, terminal.MousePress
		return ev
	case buttons&wheelMask != 0:
		// Horizontal wheel is reported as plain motion.
		ev.Action = terminal.MouseMove
		return ev
	case pressed == 0 && held == 0:
		ev.Action = terminal.MouseMove
	case pressed == 0:
		ev.Button, ev.Action = convertMouseButton(held), terminal.MouseRelease
	case held == 0:
		ev.Button, ev.Action = convertMouseButton(pressed), terminal.MousePress
	case pressed&^held != 0:
		ev.Button, ev.Action = convertMouseButton(pressed&^held), terminal.MousePress
	default:
		ev.Button, ev.Action = convertMouseButton(pressed), terminal.MouseDrag
	}
	b.buttons = pressed
	return ev
}

// convertMouseButton converts tcell button mask to terminal.MouseButton.
func convertMouseButton(buttons tcell.ButtonMask) terminal.MouseButton {
	switch {
	case buttons&tcell.WheelUp != 0:
		return terminal.MouseWheelUp
	case buttons&tcell.WheelDown != 0:
		return terminal.MouseWheelDown
	case buttons&tcell.Button1 != 0:
		return terminal.MouseLeft
	case buttons&tcell.Button2 != 0:
		return terminal.MouseMiddle
	case buttons&tcell.Button3 != 0:
		return terminal.MouseRight
	default:
		return terminal.MouseNone
	}
}

// reverseConvertEvent converts terminal.Event to tcell.Event for PostEvent.
func reverseConvertEvent(ev terminal.Event) tcell.Event {
	switch e := ev.(type) {
	case terminal.ResizeEvent:
		return tcell.NewEventResize(e.Width, e.Height)
	case terminal.KeyEvent:
		k, r, mods := TcellKey(e)
		return tcell.NewEventKey(k, r, mods)
	case terminal.MouseEvent:
		return tcell.NewEventMouse(e.X, e.Y, TcellButtons(e), mouseMods(e))
	default:
		return nil
	}
}

// TcellKey converts a key event back into tcell's representation.
func TcellKey(e terminal.KeyEvent) (tcell.Key, rune, tcell.ModMask) {
	var mods tcell.ModMask
	if e.Alt {
		mods |= tcell.ModAlt
	}
	if e.Ctrl {
		mods |= tcell.ModCtrl
	}
	if e.Shift {
		mods |= tcell.ModShift
	}
	if e.Key == terminal.KeyRune {
		return tcell.KeyRune, e.Rune, mods
	}
	for tk, k := range reverseKeys {
		if k == e.Key {
			return tk, 0, mods
		}
	}
	return tcell.KeyRune, e.Rune, mods
}

var reverseKeys = map[tcell.Key]terminal.Key{
	tcell.KeyUp:         terminal.KeyUp,
	tcell.KeyDown:       terminal.KeyDown,
	tcell.KeyRight:      terminal.KeyRight,
	tcell.KeyLeft:       terminal.KeyLeft,
	tcell.KeyPgUp:       terminal.KeyPageUp,
	tcell.KeyPgDn:       terminal.KeyPageDown,
	tcell.KeyHome:       terminal.KeyHome,
	tcell.KeyEnd:        terminal.KeyEnd,
	tcell.KeyInsert:     terminal.KeyInsert,
	tcell.KeyDelete:     terminal.KeyDelete,
	tcell.KeyBackspace2: terminal.KeyBackspace,
	tcell.KeyTab:        terminal.KeyTab,
	tcell.KeyBacktab:    terminal.KeyBacktab,
	tcell.KeyEnter:      terminal.KeyEnter,
	tcell.KeyEscape:     terminal.KeyEscape,
	tcell.KeyF1:         terminal.KeyF1,
	tcell.KeyF2:         terminal.KeyF2,
	tcell.KeyF3:         terminal.KeyF3,
	tcell.KeyF4:         terminal.KeyF4,
	tcell.KeyF5:         terminal.KeyF5,
	tcell.KeyF6:         terminal.KeyF6,
	tcell.KeyF7:         terminal.KeyF7,
	tcell.KeyF8:         terminal.KeyF8,
	tcell.KeyF9:         terminal.KeyF9,
	tcell.KeyF10:        terminal.KeyF10,
	tcell.KeyF11:        terminal.KeyF11,
	tcell.KeyF12:        terminal.KeyF12,
}

// TcellButtons returns the button-state snapshot tcell would report for e.
// Releases and plain motion carry no buttons.
func TcellButtons(e terminal.MouseEvent) tcell.ButtonMask {
	if e.Action == terminal.MouseRelease || e.Action == terminal.MouseMove {
		return tcell.ButtonNone
	}
	switch e.Button {
	case terminal.MouseLeft:
		return tcell.Button1
	case terminal.MouseMiddle:
		return tcell.Button2
	case terminal.MouseRight:
		return tcell.Button3
	case terminal.MouseWheelUp:
		return tcell.WheelUp
	case terminal.MouseWheelDown:
		return tcell.WheelDown
	}
	return tcell.ButtonNone
}

func mouseMods(e terminal.MouseEvent) tcell.ModMask {
	var mods tcell.ModMask
	if e.Alt {
		mods |= tcell.ModAlt
	}
	if e.Ctrl {
		mods |= tcell.ModCtrl
	}
	if e.Shift {
		mods |= tcell.ModShift
	}
	return mods
}

// Ensure Backend implements backend.Backend
var _ backend.Backend = (*Backend)(nil)
