package runtime

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/muesli/termenv"

	perrors "github.com/odvcencio/panes/pkg/errors"
	"github.com/odvcencio/panes/pkg/ui/backend"
	"github.com/odvcencio/panes/pkg/ui/backend/ansi"
	"github.com/odvcencio/panes/pkg/ui/backend/sim"
	"github.com/odvcencio/panes/pkg/ui/event"
	"github.com/odvcencio/panes/pkg/ui/layout"
	"github.com/odvcencio/panes/pkg/ui/terminal"
)

// finiCounter wraps a backend and counts Fini calls.
type finiCounter struct {
	backend.Backend
	finis atomic.Int32
}

func (f *finiCounter) Fini() {
	f.finis.Add(1)
	f.Backend.Fini()
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

type runResult struct {
	err error
}

func startApp(t *testing.T, app *App) (context.CancelFunc, <-chan runResult) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan runResult, 1)
	go func() {
		done <- runResult{err: app.Run(ctx)}
	}()
	return cancel, done
}

func waitDone(t *testing.T, done <-chan runResult) error {
	t.Helper()
	select {
	case r := <-done:
		return r.err
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestApp_RunRendersAndQuits(t *testing.T) {
	tree, left, _ := twoPaneTree(t)
	be := sim.New(20, 4)
	counter := &finiCounter{Backend: be}
	app := NewApp(AppConfig{Backend: counter, Tree: tree, PollInterval: 5 * time.Millisecond})

	cancel, done := startApp(t, app)
	defer cancel()

	if !be.WaitForText("L*", time.Second) {
		t.Fatalf("initial frame missing focused left pane:\n%s", be.Capture())
	}
	if !be.ContainsText("R") {
		t.Fatalf("right pane not drawn:\n%s", be.Capture())
	}
	if got := left.lastRender().Rect; got != layout.NewRect(0, 0, 10, 4) {
		t.Errorf("left rect = %v", got)
	}

	be.InjectKey(terminal.KeyEscape, 0)
	if err := waitDone(t, done); err != nil {
		t.Fatalf("Run after esc = %v, want nil", err)
	}
	if n := counter.finis.Load(); n != 1 {
		t.Errorf("Fini called %d times, want 1", n)
	}
}

func TestApp_KeysReachEveryPane(t *testing.T) {
	tree, left, right := twoPaneTree(t)
	be := sim.New(20, 4)
	app := NewApp(AppConfig{Backend: be, Tree: tree, PollInterval: 5 * time.Millisecond})

	cancel, done := startApp(t, app)
	defer cancel()
	be.WaitForText("L*", time.Second)

	be.InjectKeyRune('a')
	deadline := time.Now().Add(time.Second)
	for left.eventCount() == 0 || right.eventCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("key not delivered: left=%d right=%d", left.eventCount(), right.eventCount())
		}
		time.Sleep(5 * time.Millisecond)
	}

	if !app.Post(event.Quit{}) {
		t.Fatal("Post(Quit) rejected")
	}
	if err := waitDone(t, done); err != nil {
		t.Fatalf("Run = %v", err)
	}
}

func TestApp_ClickMovesFocus(t *testing.T) {
	tree, _, right := twoPaneTree(t)
	be := sim.New(20, 4)
	app := NewApp(AppConfig{Backend: be, Tree: tree, PollInterval: 5 * time.Millisecond})

	cancel, done := startApp(t, app)
	defer cancel()
	be.WaitForText("L*", time.Second)

	be.InjectClick(12, 1)
	if !be.WaitForText("R*", time.Second) {
		t.Fatalf("click did not move focus:\n%s", be.Capture())
	}
	if got := right.focusHistory(); len(got) != 1 || !got[0] {
		t.Errorf("right focus events = %v", got)
	}

	cancel()
	if err := waitDone(t, done); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run after cancel = %v, want context.Canceled", err)
	}
}

func TestApp_Resize(t *testing.T) {
	tree, _, right := twoPaneTree(t)
	be := sim.New(20, 4)
	app := NewApp(AppConfig{Backend: be, Tree: tree, PollInterval: 5 * time.Millisecond})

	cancel, done := startApp(t, app)
	defer cancel()
	be.WaitForText("L*", time.Second)

	be.InjectResize(40, 6)
	deadline := time.Now().Add(time.Second)
	for {
		right.mu.Lock()
		last := right.renders[len(right.renders)-1].Rect
		right.mu.Unlock()
		if last == layout.NewRect(20, 0, 20, 6) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("right rect after resize = %v", last)
		}
		time.Sleep(5 * time.Millisecond)
	}
	right.mu.Lock()
	for _, ev := range right.events {
		if _, ok := ev.(event.Resize); ok {
			t.Error("resize should be handled by the runtime, not forwarded")
		}
	}
	right.mu.Unlock()

	app.Post(event.Quit{})
	waitDone(t, done)
}

func TestApp_SetTree(t *testing.T) {
	tree, _, _ := twoPaneTree(t)
	be := sim.New(20, 4)
	app := NewApp(AppConfig{Backend: be, Tree: tree, PollInterval: 5 * time.Millisecond})

	cancel, done := startApp(t, app)
	defer cancel()
	be.WaitForText("L*", time.Second)

	solo := &recordPane{label: "solo"}
	app.SetTree(mustTree(t, layout.Pane(9), map[int]Pane{9: solo}))
	if !be.WaitForText("solo*", time.Second) {
		t.Fatalf("swapped tree not drawn or not focused:\n%s", be.Capture())
	}
	if be.ContainsText("R") {
		t.Errorf("old pane still visible:\n%s", be.Capture())
	}

	app.Post(event.Quit{})
	if err := waitDone(t, done); err != nil {
		t.Fatalf("Run = %v", err)
	}
}

func TestApp_PanicReleasesTerminal(t *testing.T) {
	boom := PaneFuncs{RenderFunc: func(PaneContext, *Buffer) { panic("boom") }}
	tree := mustTree(t, layout.Pane(0), map[int]Pane{0: boom})
	counter := &finiCounter{Backend: sim.New(10, 2)}
	app := NewApp(AppConfig{Backend: counter, Tree: tree})

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected the pane panic to propagate")
			}
		}()
		_ = app.Run(context.Background())
	}()

	if n := counter.finis.Load(); n != 1 {
		t.Errorf("Fini called %d times after panic, want 1", n)
	}
}

func TestApp_WriteFailureIsTerminalIO(t *testing.T) {
	tree, _, _ := twoPaneTree(t)
	be := ansi.New(failingWriter{}, ansi.WithSize(20, 4), ansi.WithProfile(termenv.Ascii))
	app := NewApp(AppConfig{Backend: be, Tree: tree})

	err := app.Run(context.Background())
	if !perrors.IsCode(err, perrors.ErrCodeTerminalIO) {
		t.Fatalf("Run = %v, want TERMINAL_IO", err)
	}
}

func TestApp_RequiresBackendAndTree(t *testing.T) {
	tree, _, _ := twoPaneTree(t)

	if err := NewApp(AppConfig{Tree: tree}).Run(context.Background()); err == nil {
		t.Error("Run without a backend should fail")
	}
	err := NewApp(AppConfig{Backend: sim.New(5, 5)}).Run(context.Background())
	if !perrors.IsCode(err, perrors.ErrCodeLayoutInvalid) {
		t.Errorf("Run without a tree = %v, want LAYOUT_INVALID", err)
	}
}

func TestApp_IdleAnimationTicks(t *testing.T) {
	tree, left, right := twoPaneTree(t)
	be := sim.New(20, 4)
	app := NewApp(AppConfig{
		Backend:           be,
		Tree:              tree,
		PollInterval:      5 * time.Millisecond,
		AnimationInterval: 20 * time.Millisecond,
	})

	cancel, done := startApp(t, app)
	defer cancel()

	deadline := time.Now().Add(time.Second)
	for left.animationCount() < 2 || right.animationCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("idle ticks not delivered: left=%d right=%d", left.animationCount(), right.animationCount())
		}
		time.Sleep(5 * time.Millisecond)
	}

	app.Post(event.Quit{})
	if err := waitDone(t, done); err != nil {
		t.Fatalf("Run = %v", err)
	}
}

func TestApp_PostDropsWhenFull(t *testing.T) {
	tree, _, _ := twoPaneTree(t)
	app := NewApp(AppConfig{Backend: sim.New(5, 5), Tree: tree, QueueSize: 1})

	if !app.Post(event.Animation{}) {
		t.Fatal("first Post should fit")
	}
	if app.Post(event.Animation{}) {
		t.Error("Post on a full queue should report false")
	}
}
