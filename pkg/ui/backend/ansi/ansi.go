// Package ansi provides an output-only Backend that serializes each frame
// as plain ANSI text to an io.Writer. Input only arrives through PostEvent.
package ansi

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/odvcencio/panes/pkg/ui/backend"
	"github.com/odvcencio/panes/pkg/ui/compositor"
	"github.com/odvcencio/panes/pkg/ui/terminal"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// Backend writes frames to an io.Writer.
type Backend struct {
	mu sync.Mutex

	out     io.Writer
	in      *os.File
	profile termenv.Profile
	grid    *compositor.Grid
	queue   *backend.Queue

	altScreen bool
	oldState  *term.State
	err       error

	finiOnce sync.Once
}

// Option configures a Backend.
type Option func(*Backend)

// WithSize fixes the frame size instead of probing the output.
func WithSize(width, height int) Option {
	return func(b *Backend) {
		b.grid.Resize(width, height)
	}
}

// WithProfile overrides color profile detection.
func WithProfile(p termenv.Profile) Option {
	return func(b *Backend) {
		b.profile = p
	}
}

// WithInput puts f into raw mode during Init when it is a terminal.
func WithInput(f *os.File) Option {
	return func(b *Backend) {
		b.in = f
	}
}

// WithAltScreen enables the alternate screen and mouse capture on Init.
func WithAltScreen(on bool) Option {
	return func(b *Backend) {
		b.altScreen = on
	}
}

// New creates a backend writing to out. The color profile is detected from
// out and the environment unless WithProfile is given.
func New(out io.Writer, opts ...Option) *Backend {
	b := &Backend{
		out:     out,
		profile: termenv.NewOutput(out).EnvColorProfile(),
		grid:    compositor.NewGrid(0, 0),
		queue:   backend.NewQueue(256),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Init sizes the frame, enables raw input and writes the mode prefix.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if w, h := b.grid.Size(); w == 0 || h == 0 {
		w, h = defaultWidth, defaultHeight
		if f, ok := b.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			if tw, th, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 && th > 0 {
				w, h = tw, th
			}
		}
		b.grid.Resize(w, h)
	}

	if b.in != nil && term.IsTerminal(int(b.in.Fd())) {
		state, err := term.MakeRaw(int(b.in.Fd()))
		if err != nil {
			return err
		}
		b.oldState = state
	}

	if b.altScreen {
		return b.writeLocked(compositor.ANSIAltScreen + compositor.ANSICursorHide + compositor.ANSIMouseOn)
	}
	return nil
}

// Fini restores the terminal. Safe to call more than once.
func (b *Backend) Fini() {
	b.finiOnce.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		b.queue.Close()
		if b.altScreen {
			_ = b.writeLocked(compositor.ANSIMouseOff + compositor.ANSIReset + compositor.ANSICursorShow + compositor.ANSIMainScreen)
		}
		if b.oldState != nil && b.in != nil {
			_ = term.Restore(int(b.in.Fd()), b.oldState)
			b.oldState = nil
		}
	})
}

// Size returns the frame dimensions.
func (b *Backend) Size() (width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.grid.Size()
}

// Resize changes the frame size and queues a resize event.
func (b *Backend) Resize(width, height int) {
	b.mu.Lock()
	b.grid.Resize(width, height)
	b.mu.Unlock()
	_ = b.queue.Push(terminal.ResizeEvent{Width: width, Height: height})
}

// SetContent sets a cell at position (x, y). Combining runes are dropped.
func (b *Backend) SetContent(x, y int, mainc rune, _ []rune, style backend.Style) {
	b.mu.Lock()
	b.grid.Set(x, y, mainc, style)
	b.mu.Unlock()
}

// Show writes the whole frame in a single write.
func (b *Backend) Show() {
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.writeLocked(compositor.Serialize(b.grid, b.profile))
}

// Clear clears the frame.
func (b *Backend) Clear() {
	b.mu.Lock()
	b.grid.Clear()
	b.mu.Unlock()
}

// HideCursor hides the cursor.
func (b *Backend) HideCursor() {
	b.mu.Lock()
	x, y, _ := b.grid.Cursor()
	b.grid.SetCursor(x, y, false)
	b.mu.Unlock()
}

// ShowCursor shows the cursor at its last position.
func (b *Backend) ShowCursor() {
	b.mu.Lock()
	x, y, _ := b.grid.Cursor()
	b.grid.SetCursor(x, y, true)
	b.mu.Unlock()
}

// SetCursorPos sets and shows the cursor.
func (b *Backend) SetCursorPos(x, y int) {
	b.mu.Lock()
	b.grid.SetCursor(x, y, true)
	b.mu.Unlock()
}

// PollEvent waits up to timeout for a posted event.
func (b *Backend) PollEvent(timeout time.Duration) (terminal.Event, error) {
	return b.queue.Poll(timeout)
}

// PostEvent injects an event into the queue.
func (b *Backend) PostEvent(ev terminal.Event) error {
	return b.queue.Push(ev)
}

// Beep emits an audible bell.
func (b *Backend) Beep() {
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.writeLocked(compositor.ANSIBell)
}

// Sync is a no-op: every Show writes a full frame.
func (b *Backend) Sync() {}

// Profile returns the color profile frames are written with.
func (b *Backend) Profile() termenv.Profile {
	return b.profile
}

// Frame returns the current frame exactly as Show would write it.
func (b *Backend) Frame() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return compositor.Serialize(b.grid, b.profile)
}

// Lines returns the frame as standalone styled rows for printing into
// scrollback.
func (b *Backend) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return compositor.Lines(b.grid, b.profile)
}

// Text returns the frame's characters only, one line per row.
func (b *Backend) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	w, h := b.grid.Size()
	lines := make([]rune, 0, (w+1)*h)
	for y := 0; y < h; y++ {
		if y > 0 {
			lines = append(lines, '\n')
		}
		for x := 0; x < w; x++ {
			c := b.grid.Cell(x, y)
			if c.Width == 0 {
				continue
			}
			if c.Rune == 0 {
				lines = append(lines, ' ')
			} else {
				lines = append(lines, c.Rune)
			}
		}
	}
	return string(lines)
}

// Err returns the first write error, if any.
func (b *Backend) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *Backend) writeLocked(s string) error {
	if s == "" {
		return nil
	}
	_, err := io.WriteString(b.out, s)
	if err != nil && b.err == nil {
		b.err = err
	}
	return err
}

// Ensure Backend implements backend.Backend
var _ backend.Backend = (*Backend)(nil)
