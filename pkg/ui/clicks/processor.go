// Package clicks turns raw terminal input into pane events, synthesizing
// double and triple clicks from timed presses.
package clicks

import (
	"math"
	"time"

	"github.com/odvcencio/panes/pkg/ui/event"
	"github.com/odvcencio/panes/pkg/ui/terminal"
)

const (
	DefaultWindow   = 300 * time.Millisecond
	DefaultDistance = 3.0
)

type point struct{ x, y int }

func (p point) distance(o point) float64 {
	return math.Hypot(float64(p.x-o.x), float64(p.y-o.y))
}

type clickState struct {
	lastTime time.Time
	lastPos  point

	// Set after a double click, armed for a triple.
	doubleTime *time.Time
	doublePos  point
}

// Processor tracks per-button click history. It is not safe for concurrent
// use; the run loop owns one instance on its poller goroutine.
type Processor struct {
	Window   time.Duration
	Distance float64
	QuitKeys []Binding
	Clock    func() time.Time

	states map[terminal.MouseButton]*clickState
}

// New creates a processor with the default window, distance and quit keys.
func New() *Processor {
	return &Processor{
		Window:   DefaultWindow,
		Distance: DefaultDistance,
		QuitKeys: DefaultQuitKeys(),
		Clock:    time.Now,
		states:   make(map[terminal.MouseButton]*clickState),
	}
}

// Now reads the processor's clock.
func (p *Processor) Now() time.Time {
	if p.Clock == nil {
		return time.Now()
	}
	return p.Clock()
}

// Reset forgets all click history.
func (p *Processor) Reset() {
	clear(p.states)
}

// Translate converts a raw event. It returns false for events that have
// no pane equivalent.
func (p *Processor) Translate(ev terminal.Event, now time.Time) (event.Event, bool) {
	switch e := ev.(type) {
	case terminal.KeyEvent:
		if p.isQuit(e) {
			return event.Quit{}, true
		}
		return event.Key{Code: e.Key, Rune: e.Rune, Shift: e.Shift, Ctrl: e.Ctrl, Alt: e.Alt}, true
	case terminal.MouseEvent:
		return p.Process(e, now), true
	case terminal.ResizeEvent:
		return event.Resize{W: e.Width, H: e.Height}, true
	case terminal.PasteEvent:
		return event.Paste{Text: e.Text}, true
	}
	return nil, false
}

// Process classifies a mouse event, consulting and updating click history
// for presses.
func (p *Processor) Process(ev terminal.MouseEvent, now time.Time) event.Mouse {
	out := event.Mouse{X: ev.X, Y: ev.Y, Button: ev.Button, Shift: ev.Shift, Ctrl: ev.Ctrl, Alt: ev.Alt}

	switch ev.Action {
	case terminal.MouseRelease:
		out.Kind = event.MouseUp
	case terminal.MouseDrag:
		out.Kind = event.MouseDrag
	case terminal.MouseMove:
		out.Kind = event.MouseMoved
	case terminal.MousePress:
		switch ev.Button {
		case terminal.MouseWheelUp:
			out.Kind = event.MouseScrollUp
		case terminal.MouseWheelDown:
			out.Kind = event.MouseScrollDown
		case terminal.MouseNone:
			out.Kind = event.MouseMoved
		default:
			out.Kind = p.press(ev.Button, point{ev.X, ev.Y}, now)
		}
	}
	return out
}

func (p *Processor) press(button terminal.MouseButton, pos point, now time.Time) event.MouseKind {
	if p.states == nil {
		p.states = make(map[terminal.MouseButton]*clickState)
	}

	if st, ok := p.states[button]; ok && p.near(st.lastTime, st.lastPos, pos, now) {
		if st.doubleTime != nil && p.near(*st.doubleTime, st.doublePos, pos, now) {
			delete(p.states, button)
			return event.MouseTripleClick
		}
		p.states[button] = &clickState{lastTime: now, lastPos: pos, doubleTime: &now, doublePos: pos}
		return event.MouseDoubleClick
	}

	p.states[button] = &clickState{lastTime: now, lastPos: pos}
	return event.MouseDown
}

func (p *Processor) near(at time.Time, from, to point, now time.Time) bool {
	elapsed := now.Sub(at)
	return elapsed >= 0 && elapsed <= p.Window && from.distance(to) <= p.Distance
}

func (p *Processor) isQuit(k terminal.KeyEvent) bool {
	for _, b := range p.QuitKeys {
		if b.Matches(k) {
			return true
		}
	}
	return false
}
