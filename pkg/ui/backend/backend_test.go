package backend

import (
	"errors"
	"testing"
	"time"

	"github.com/odvcencio/panes/pkg/ui/terminal"
)

func TestQueue_OrderAndTimeout(t *testing.T) {
	q := NewQueue(4)

	if ev, err := q.Poll(5 * time.Millisecond); ev != nil || err != nil {
		t.Fatalf("empty queue: got %v, %v; want timeout", ev, err)
	}

	for _, r := range "abc" {
		if err := q.Push(terminal.KeyEvent{Key: terminal.KeyRune, Rune: r}); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
	for _, want := range "abc" {
		ev, err := q.Poll(time.Second)
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		if got := ev.(terminal.KeyEvent).Rune; got != want {
			t.Errorf("got %c, want %c", got, want)
		}
	}
}

func TestQueue_Full(t *testing.T) {
	q := NewQueue(1)
	if err := q.Push(terminal.PasteEvent{}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := q.Push(terminal.PasteEvent{}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("got %v, want ErrQueueFull", err)
	}
}

func TestQueue_CloseDrainsFirst(t *testing.T) {
	q := NewQueue(2)
	_ = q.Push(terminal.ResizeEvent{Width: 1, Height: 1})
	q.Close()
	q.Close()

	ev, err := q.Poll(0)
	if err != nil || ev == nil {
		t.Fatalf("queued event should survive close, got %v, %v", ev, err)
	}
	if _, err := q.Poll(0); !errors.Is(err, ErrClosed) {
		t.Errorf("got %v, want ErrClosed", err)
	}
	if q.PushWait(terminal.PasteEvent{}) {
		t.Error("PushWait on closed queue should fail")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"", ColorDefault},
		{"default", ColorDefault},
		{"red", ColorRed},
		{"Bright-Cyan", ColorBrightCyan},
		{"196", ColorIndexed(196)},
		{"#ff8000", ColorRGB(255, 128, 0)},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"mauve", "#12", "300", "#gggggg"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) should fail", bad)
		}
	}
}

func TestStyle_Toggled(t *testing.T) {
	s := DefaultStyle().Bold(true)
	if s.Toggled().Attributes()&AttrReverse == 0 {
		t.Error("Toggled should set reverse")
	}
	if s.Toggled().Toggled() != s {
		t.Error("double toggle should restore the style")
	}
}
