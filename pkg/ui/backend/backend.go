// Package backend defines the terminal backend interface for the runtime.
// Implementations own the terminal lifecycle (raw mode, alternate screen,
// mouse capture) and decode input; the runtime only consumes the result.
package backend

import (
	"errors"
	"time"

	"github.com/odvcencio/panes/pkg/ui/terminal"
)

var (
	// ErrClosed is returned by PollEvent once the backend has shut down.
	ErrClosed = errors.New("backend closed")
	// ErrQueueFull is returned by PostEvent when the input queue is saturated.
	ErrQueueFull = errors.New("backend event queue full")
)

// Backend is the terminal abstraction layer.
type Backend interface {
	// Init acquires the terminal: raw mode, alternate screen, mouse capture.
	Init() error

	// Fini restores terminal state. Safe to call more than once.
	Fini()

	// Size returns the current terminal dimensions.
	Size() (width, height int)

	// SetContent sets a cell at position (x, y) with the given rune and style.
	// The comb parameter contains combining characters (can be nil).
	SetContent(x, y int, mainc rune, comb []rune, style Style)

	// Show flushes the pending frame to the terminal.
	Show()

	// Clear clears the screen.
	Clear()

	HideCursor()
	ShowCursor()
	SetCursorPos(x, y int)

	// PollEvent waits up to timeout for the next input event. It returns a
	// nil event on timeout and ErrClosed after Fini. A timeout <= 0 blocks.
	PollEvent(timeout time.Duration) (terminal.Event, error)

	// PostEvent injects an event into the input queue.
	PostEvent(ev terminal.Event) error

	// Beep emits an audible bell.
	Beep()

	// Sync forces a full redraw on next Show().
	Sync()
}

// RenderTarget is the subset of Backend a frame is flushed through.
type RenderTarget interface {
	Size() (width, height int)
	SetContent(x, y int, mainc rune, comb []rune, style Style)
}

// Queue is the bounded input queue shared by backends that accept
// injected events. The zero value is not usable; see NewQueue.
type Queue struct {
	events chan terminal.Event
	done   chan struct{}
}

// NewQueue creates a queue with the given capacity.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 256
	}
	return &Queue{
		events: make(chan terminal.Event, size),
		done:   make(chan struct{}),
	}
}

// Push enqueues without blocking.
func (q *Queue) Push(ev terminal.Event) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}
	select {
	case q.events <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// PushWait enqueues, blocking until there is room or the queue closes.
func (q *Queue) PushWait(ev terminal.Event) bool {
	select {
	case q.events <- ev:
		return true
	case <-q.done:
		return false
	}
}

// Poll waits up to timeout for an event.
func (q *Queue) Poll(timeout time.Duration) (terminal.Event, error) {
	// Queued events win over a concurrent close.
	select {
	case ev := <-q.events:
		return ev, nil
	default:
	}

	if timeout <= 0 {
		select {
		case ev := <-q.events:
			return ev, nil
		case <-q.done:
			return nil, ErrClosed
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev := <-q.events:
		return ev, nil
	case <-q.done:
		return nil, ErrClosed
	case <-timer.C:
		return nil, nil
	}
}

// Close wakes pollers with ErrClosed. Safe to call more than once.
func (q *Queue) Close() {
	select {
	case <-q.done:
	default:
		close(q.done)
	}
}
