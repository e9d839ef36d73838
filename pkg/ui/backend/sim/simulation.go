// Package sim provides a simulation backend for testing.
package sim

import (
	"strings"
	"sync"
	"time"

	tcellv2 "github.com/gdamore/tcell/v2"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/odvcencio/panes/pkg/ui/backend"
	"github.com/odvcencio/panes/pkg/ui/backend/tcell"
	"github.com/odvcencio/panes/pkg/ui/terminal"
)

// Backend is a testable backend using tcell's simulation screen.
type Backend struct {
	*tcell.Backend
	screen tcellv2.SimulationScreen
	mu     sync.Mutex
	width  int
	height int
}

// New creates a new simulation backend with the given dimensions.
func New(width, height int) *Backend {
	screen := tcellv2.NewSimulationScreen("")
	screen.SetSize(width, height)

	return &Backend{
		Backend: tcell.NewWithScreen(screen),
		screen:  screen,
		width:   width,
		height:  height,
	}
}

// Init initializes the simulation screen. The simulation screen resets to
// its default size on Init, so the requested size is applied again.
func (s *Backend) Init() error {
	if err := s.Backend.Init(); err != nil {
		return err
	}
	s.mu.Lock()
	s.screen.SetSize(s.width, s.height)
	s.mu.Unlock()
	return nil
}

// Resize changes the simulation screen size.
func (s *Backend) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	s.screen.SetSize(width, height)
}

// InjectKey injects a key event into the simulation.
func (s *Backend) InjectKey(key terminal.Key, r rune) {
	s.InjectKeyEvent(terminal.KeyEvent{Key: key, Rune: r})
}

// InjectKeyEvent injects a key event with modifiers.
func (s *Backend) InjectKeyEvent(ev terminal.KeyEvent) {
	k, r, mods := tcell.TcellKey(ev)
	s.screen.InjectKey(k, r, mods)
}

// InjectCtrl injects Ctrl+letter.
func (s *Backend) InjectCtrl(r rune) {
	s.InjectKeyEvent(terminal.KeyEvent{Key: terminal.KeyRune, Rune: r, Ctrl: true})
}

// InjectKeyRune injects a regular character keypress.
func (s *Backend) InjectKeyRune(r rune) {
	s.InjectKey(terminal.KeyRune, r)
}

// InjectKeyString injects a string as a sequence of key events.
func (s *Backend) InjectKeyString(str string) {
	for _, r := range str {
		s.InjectKeyRune(r)
	}
}

// InjectMouse injects a raw mouse state snapshot. Transitions (press,
// drag, release) are derived by the backend exactly as for a real terminal.
func (s *Backend) InjectMouse(ev terminal.MouseEvent) {
	var mods tcellv2.ModMask
	if ev.Alt {
		mods |= tcellv2.ModAlt
	}
	if ev.Ctrl {
		mods |= tcellv2.ModCtrl
	}
	if ev.Shift {
		mods |= tcellv2.ModShift
	}
	s.screen.InjectMouse(ev.X, ev.Y, tcell.TcellButtons(ev), mods)
}

// InjectClick injects a left press and release at (x, y).
func (s *Backend) InjectClick(x, y int) {
	s.InjectMouse(terminal.MouseEvent{X: x, Y: y, Button: terminal.MouseLeft, Action: terminal.MousePress})
	s.InjectMouse(terminal.MouseEvent{X: x, Y: y, Button: terminal.MouseLeft, Action: terminal.MouseRelease})
}

// InjectPaste injects bracketed paste content.
func (s *Backend) InjectPaste(text string) {
	_ = s.PostEvent(terminal.PasteEvent{Text: text})
}

// InjectResize injects a resize event.
func (s *Backend) InjectResize(width, height int) {
	s.Resize(width, height)
	_ = s.PostEvent(terminal.ResizeEvent{Width: width, Height: height})
}

// Capture captures the current screen content as a string.
func (s *Backend) Capture() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, h := s.screen.Size()
	return s.captureLocked(0, 0, w, h, true)
}

// CaptureCell returns the content and style of a single cell.
func (s *Backend) CaptureCell(x, y int) (mainc rune, comb []rune, style backend.Style) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, c, tcStyle, _ := s.screen.GetContent(x, y)
	return m, c, convertTcellStyle(tcStyle)
}

// CaptureRegion captures a rectangular region of the screen.
func (s *Backend) CaptureRegion(x, y, w, h int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captureLocked(x, y, w, h, false)
}

func (s *Backend) captureLocked(x, y, w, h int, withComb bool) string {
	lines := make([]string, 0, h)
	for row := y; row < y+h; row++ {
		var line strings.Builder
		for col := x; col < x+w; col++ {
			mainc, comb, _, _ := s.screen.GetContent(col, row)
			if mainc == 0 {
				mainc = ' '
			}
			line.WriteRune(mainc)
			if withComb {
				for _, c := range comb {
					line.WriteRune(c)
				}
			}
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// DiffCapture returns a unified diff between want and the current screen,
// or "" when they match. Trailing spaces on each row are ignored.
func (s *Backend) DiffCapture(want string) string {
	got := trimRows(s.Capture())
	want = trimRows(want)
	if got == want {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want + "\n"),
		B:        difflib.SplitLines(got + "\n"),
		FromFile: "want",
		ToFile:   "screen",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

func trimRows(s string) string {
	rows := strings.Split(s, "\n")
	for i, r := range rows {
		rows[i] = strings.TrimRight(r, " ")
	}
	for len(rows) > 0 && rows[len(rows)-1] == "" {
		rows = rows[:len(rows)-1]
	}
	return strings.Join(rows, "\n")
}

// FindText searches for text on the screen and returns its position.
func (s *Backend) FindText(text string) (x, y int) {
	capture := s.Capture()
	lines := strings.Split(capture, "\n")

	for row, line := range lines {
		if col := strings.Index(line, text); col >= 0 {
			return len([]rune(line[:col])), row
		}
	}
	return -1, -1
}

// ContainsText returns true if the text appears anywhere on screen.
func (s *Backend) ContainsText(text string) bool {
	x, y := s.FindText(text)
	return x >= 0 && y >= 0
}

// WaitForText polls the screen until text appears or timeout elapses.
func (s *Backend) WaitForText(text string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if s.ContainsText(text) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// convertTcellStyle converts tcellv2.Style to backend.Style.
func convertTcellStyle(ts tcellv2.Style) backend.Style {
	fg, bg, attrs := ts.Decompose()
	style := backend.DefaultStyle().
		Foreground(convertTcellColor(fg)).
		Background(convertTcellColor(bg))

	if attrs&tcellv2.AttrBold != 0 {
		style = style.Bold(true)
	}
	if attrs&tcellv2.AttrItalic != 0 {
		style = style.Italic(true)
	}
	if attrs&tcellv2.AttrUnderline != 0 {
		style = style.Underline(true)
	}
	if attrs&tcellv2.AttrDim != 0 {
		style = style.Dim(true)
	}
	if attrs&tcellv2.AttrBlink != 0 {
		style = style.Blink(true)
	}
	if attrs&tcellv2.AttrReverse != 0 {
		style = style.Reverse(true)
	}
	if attrs&tcellv2.AttrStrikeThrough != 0 {
		style = style.StrikeThrough(true)
	}

	return style
}

// convertTcellColor converts tcellv2.Color to backend.Color.
func convertTcellColor(tc tcellv2.Color) backend.Color {
	if tc == tcellv2.ColorDefault {
		return backend.ColorDefault
	}
	if tc&tcellv2.ColorIsRGB != 0 {
		r, g, b := tc.RGB()
		return backend.ColorRGB(uint8(r), uint8(g), uint8(b))
	}
	return backend.Color(tc & 0xFF)
}

// Ensure Backend implements backend.Backend
var _ backend.Backend = (*Backend)(nil)
