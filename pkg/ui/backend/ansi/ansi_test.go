package ansi

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"

	"github.com/odvcencio/panes/pkg/ui/backend"
	"github.com/odvcencio/panes/pkg/ui/compositor"
	"github.com/odvcencio/panes/pkg/ui/terminal"
)

func TestBackend_InitFiniModes(t *testing.T) {
	var out bytes.Buffer
	b := New(&out, WithSize(4, 2), WithProfile(termenv.Ascii), WithAltScreen(true))
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !strings.HasPrefix(out.String(), compositor.ANSIAltScreen+compositor.ANSICursorHide+compositor.ANSIMouseOn) {
		t.Errorf("missing mode prefix: %q", out.String())
	}

	out.Reset()
	b.Fini()
	b.Fini()
	if got := out.String(); strings.Count(got, compositor.ANSIMainScreen) != 1 {
		t.Errorf("expected exactly one restore sequence, got %q", got)
	}
}

func TestBackend_ShowSingleWrite(t *testing.T) {
	w := &countingWriter{}
	b := New(w, WithSize(5, 3), WithProfile(termenv.TrueColor))
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer b.Fini()

	for i, r := range "hi" {
		b.SetContent(i, 1, r, nil, backend.DefaultStyle())
	}
	b.Show()

	if w.writes != 1 {
		t.Errorf("Show performed %d writes, want 1", w.writes)
	}
	// Row 0 already set the default style, so row 1 needs no SGR.
	if !strings.Contains(w.buf.String(), compositor.CursorTo(0, 1)+"hi") {
		t.Errorf("row 1 not serialized as expected: %q", w.buf.String())
	}
	if got := strings.Split(b.Text(), "\n")[1]; got != "hi   " {
		t.Errorf("Text row 1 = %q", got)
	}
}

func TestBackend_DefaultSize(t *testing.T) {
	b := New(&bytes.Buffer{})
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer b.Fini()

	if w, h := b.Size(); w != defaultWidth || h != defaultHeight {
		t.Errorf("size = %dx%d, want %dx%d", w, h, defaultWidth, defaultHeight)
	}
}

func TestBackend_PostAndPoll(t *testing.T) {
	b := New(&bytes.Buffer{}, WithSize(2, 2))
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if ev, err := b.PollEvent(10 * time.Millisecond); ev != nil || err != nil {
		t.Fatalf("expected timeout, got %v %v", ev, err)
	}

	if err := b.PostEvent(terminal.KeyEvent{Key: terminal.KeyRune, Rune: 'x'}); err != nil {
		t.Fatalf("PostEvent: %v", err)
	}
	ev, err := b.PollEvent(time.Second)
	if err != nil {
		t.Fatalf("PollEvent: %v", err)
	}
	if k, ok := ev.(terminal.KeyEvent); !ok || k.Rune != 'x' {
		t.Errorf("got %#v", ev)
	}

	b.Resize(3, 1)
	ev, _ = b.PollEvent(time.Second)
	if r, ok := ev.(terminal.ResizeEvent); !ok || r.Width != 3 || r.Height != 1 {
		t.Errorf("got %#v, want resize 3x1", ev)
	}

	b.Fini()
	if _, err := b.PollEvent(10 * time.Millisecond); !errors.Is(err, backend.ErrClosed) {
		t.Errorf("after Fini got %v, want ErrClosed", err)
	}
	if err := b.PostEvent(terminal.PasteEvent{Text: "x"}); !errors.Is(err, backend.ErrClosed) {
		t.Errorf("PostEvent after Fini got %v, want ErrClosed", err)
	}
}

func TestBackend_WriteError(t *testing.T) {
	b := New(failingWriter{}, WithSize(1, 1), WithProfile(termenv.Ascii))
	b.Show()
	if b.Err() == nil {
		t.Error("expected write error to be recorded")
	}
}

type countingWriter struct {
	buf    bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.buf.Write(p)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestBackend_LinesWriteNothing(t *testing.T) {
	var out bytes.Buffer
	b := New(&out, WithSize(3, 2), WithProfile(termenv.Ascii))
	b.SetContent(0, 0, 'h', nil, backend.DefaultStyle())
	b.SetContent(2, 1, 'i', nil, backend.DefaultStyle())

	lines := b.Lines()
	if len(lines) != 2 || lines[0] != "h  " || lines[1] != "  i" {
		t.Errorf("Lines() = %q", lines)
	}
	if out.Len() != 0 {
		t.Errorf("Lines should not write to the output, got %q", out.String())
	}
}
