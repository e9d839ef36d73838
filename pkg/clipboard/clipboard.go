// Package clipboard provides the system clipboard collaborator used by the
// selectable panes. Writes fall back from the OS clipboard to an OSC 52
// escape sequence so copy works over SSH.
package clipboard

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"

	perrors "github.com/odvcencio/panes/pkg/errors"
)

// Clipboard reads and writes plain text.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// System uses the OS clipboard (pbcopy, xclip, xsel, wl-copy, clip.exe).
type System struct{}

// ReadText returns the OS clipboard contents.
func (System) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", errUnsupported("system")
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", perrors.Wrap(err, perrors.ErrCodeClipboard, "read system clipboard")
	}
	return text, nil
}

// WriteText replaces the OS clipboard contents.
func (System) WriteText(text string) error {
	if clipboard.Unsupported {
		return errUnsupported("system")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return perrors.Wrap(err, perrors.ErrCodeClipboard, "write system clipboard")
	}
	return nil
}

// OSC52 asks the terminal to set its clipboard. It cannot read.
type OSC52 struct {
	Out io.Writer
	// Tmux wraps the sequence in a tmux passthrough.
	Tmux bool
}

// NewOSC52 writes to out, detecting tmux and screen from the environment.
func NewOSC52(out io.Writer) *OSC52 {
	term := os.Getenv("TERM")
	return &OSC52{
		Out:  out,
		Tmux: os.Getenv("TMUX") != "" || strings.HasPrefix(term, "tmux") || strings.HasPrefix(term, "screen"),
	}
}

// ReadText always fails; terminals do not answer OSC 52 queries reliably.
func (o *OSC52) ReadText() (string, error) {
	return "", errUnsupported("osc52")
}

// WriteText emits the OSC 52 sequence.
func (o *OSC52) WriteText(text string) error {
	if o.Out == nil {
		return errUnsupported("osc52")
	}
	seq := osc52.New(text)
	if o.Tmux {
		seq = seq.Tmux()
	}
	if _, err := seq.WriteTo(o.Out); err != nil {
		return perrors.Wrap(err, perrors.ErrCodeClipboard, "write osc52 sequence")
	}
	return nil
}

// Memory is a process-local clipboard.
type Memory struct {
	mu   sync.Mutex
	text string
}

// ReadText returns the last written text.
func (m *Memory) ReadText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

// WriteText stores text.
func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	return nil
}

// Fallback tries each clipboard in order. Every successful write also lands
// in an internal memory clipboard, so a paste inside the process still works
// when no external clipboard can be read back.
type Fallback struct {
	chain []Clipboard
	local Memory
}

// NewFallback creates a Fallback over chain.
func NewFallback(chain ...Clipboard) *Fallback {
	return &Fallback{chain: chain}
}

// Default returns the system clipboard backed by OSC 52 on out.
func Default(out io.Writer) *Fallback {
	return NewFallback(System{}, NewOSC52(out))
}

// ReadText returns the first readable clipboard's text.
func (f *Fallback) ReadText() (string, error) {
	for _, c := range f.chain {
		if text, err := c.ReadText(); err == nil {
			return text, nil
		}
	}
	return f.local.ReadText()
}

// WriteText writes to the first clipboard that accepts text. It fails only
// when every clipboard in the chain fails.
func (f *Fallback) WriteText(text string) error {
	_ = f.local.WriteText(text)
	var last error
	for _, c := range f.chain {
		if err := c.WriteText(text); err != nil {
			last = err
			continue
		}
		return nil
	}
	if last != nil {
		return perrors.Wrap(last, perrors.ErrCodeClipboard, "no clipboard accepted the text")
	}
	return nil
}

func errUnsupported(kind string) error {
	return perrors.New(perrors.ErrCodeClipboard, "clipboard unsupported").WithContext("clipboard", kind)
}
