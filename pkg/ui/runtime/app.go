package runtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	perrors "github.com/odvcencio/panes/pkg/errors"
	"github.com/odvcencio/panes/pkg/logging"
	"github.com/odvcencio/panes/pkg/observability"
	"github.com/odvcencio/panes/pkg/ui/backend"
	"github.com/odvcencio/panes/pkg/ui/clicks"
	"github.com/odvcencio/panes/pkg/ui/event"
)

const (
	DefaultPollInterval      = 50 * time.Millisecond
	DefaultAnimationInterval = 100 * time.Millisecond
	DefaultQueueSize         = 256
)

// AppConfig configures a runtime App.
type AppConfig struct {
	Backend backend.Backend
	Tree    *Tree
	Logger  *logging.Logger

	// Clicks translates raw input; nil uses clicks.New().
	Clicks *clicks.Processor

	// InitialFocus is the pane focused at startup. If it is not in the tree
	// the first pane is used.
	InitialFocus int
	HoverFocus   bool

	PollInterval      time.Duration
	AnimationInterval time.Duration
	QueueSize         int
}

// App runs a pane tree against a terminal backend. The event queue is fed
// by one poller goroutine and drained by the goroutine calling Run.
type App struct {
	backend      backend.Backend
	screen       *Screen
	tree         *Tree
	logger       *logging.Logger
	clicks       *clicks.Processor
	initialFocus int
	hoverFocus   bool

	pollInterval      time.Duration
	animationInterval time.Duration

	events chan event.Event

	treeMu      sync.Mutex
	pendingTree *Tree
	treeReady   chan struct{}

	finiOnce sync.Once
}

// errorReporter is implemented by backends that record write failures.
type errorReporter interface {
	Err() error
}

// NewApp creates a new App from config.
func NewApp(cfg AppConfig) *App {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	anim := cfg.AnimationInterval
	if anim <= 0 {
		anim = DefaultAnimationInterval
	}
	proc := cfg.Clicks
	if proc == nil {
		proc = clicks.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &App{
		backend:           cfg.Backend,
		tree:              cfg.Tree,
		logger:            logger,
		clicks:            proc,
		initialFocus:      cfg.InitialFocus,
		hoverFocus:        cfg.HoverFocus,
		pollInterval:      poll,
		animationInterval: anim,
		events:            make(chan event.Event, queueSize),
		treeReady:         make(chan struct{}, 1),
	}
}

// Screen returns the active screen, if initialized.
func (a *App) Screen() *Screen {
	return a.screen
}

// Post enqueues an event without blocking. It returns false and counts a
// drop when the queue is full.
func (a *App) Post(ev event.Event) bool {
	select {
	case a.events <- ev:
		return true
	default:
		metricQueueDropped.Inc()
		return false
	}
}

// SetTree replaces the pane tree. It is safe to call from any goroutine;
// a running App swaps the tree between events and redraws.
func (a *App) SetTree(tree *Tree) {
	if tree == nil {
		return
	}
	a.treeMu.Lock()
	a.pendingTree = tree
	a.treeMu.Unlock()
	select {
	case a.treeReady <- struct{}{}:
	default:
	}
}

// Run acquires the terminal and processes events until a Quit event, ctx
// cancellation, or a terminal failure. The terminal is released exactly
// once on every path, including panics.
func (a *App) Run(ctx context.Context) error {
	if a.backend == nil {
		return perrors.New(perrors.ErrCodeInvalidInput, "backend is required")
	}
	if a.tree == nil {
		return perrors.New(perrors.ErrCodeLayoutInvalid, "pane tree is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := a.backend.Init(); err != nil {
		return perrors.Wrap(err, perrors.ErrCodeTerminalIO, "init backend")
	}
	defer a.fini()

	a.backend.HideCursor()
	w, h := a.backend.Size()
	a.screen = NewScreen(w, h)
	a.screen.Context().SetHoverFocus(a.hoverFocus)
	a.screen.SetTree(a.tree)
	a.focusInitial()
	_ = a.logger.Info(logging.CategoryTerminal, "init", "terminal acquired", map[string]any{
		"width": w, "height": h, "panes": len(a.tree.IDs()),
	})

	if err := a.render(ctx); err != nil {
		return err
	}

	pollCtx, stopPoller := context.WithCancel(ctx)
	defer stopPoller()
	g, gctx := errgroup.WithContext(pollCtx)
	g.Go(func() error { return a.poll(gctx) })

	runErr := a.loop(ctx, gctx)

	stopPoller()
	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		_ = a.logger.Error(logging.CategoryTerminal, "run_failed", runErr.Error(), nil)
	}
	return runErr
}

// loop drains the queue until quit. It returns nil on Quit, ctx.Err() on
// cancellation, and nil when the poller stops so g.Wait reports its error.
func (a *App) loop(ctx, pollerCtx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pollerCtx.Done():
			return nil
		case <-a.treeReady:
			a.swapTree()
			if err := a.render(ctx); err != nil {
				return err
			}
		case ev := <-a.events:
			quit, err := a.dispatch(ctx, ev)
			if quit || err != nil {
				return err
			}
		}
	}
}

func (a *App) dispatch(ctx context.Context, ev event.Event) (quit bool, err error) {
	metricEventsDispatched.WithLabelValues(event.Name(ev)).Inc()

	switch e := ev.(type) {
	case event.Quit:
		_ = a.logger.Info(logging.CategoryInput, "quit", "quit requested", nil)
		return true, nil
	case event.Resize:
		_ = a.logger.Debug(logging.CategoryTerminal, "resize", "", map[string]any{"width": e.W, "height": e.H})
		a.screen.Resize(e.W, e.H)
		return false, a.render(ctx)
	default:
		if a.screen.Forward(ctx, ev) {
			return false, a.render(ctx)
		}
		return false, nil
	}
}

// poll runs on its own goroutine, translating backend input into events.
func (a *App) poll(ctx context.Context) error {
	lastActivity := time.Now()
	for {
		if ctx.Err() != nil {
			return nil
		}
		raw, err := a.backend.PollEvent(a.pollInterval)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, backend.ErrClosed) {
				return perrors.Wrap(err, perrors.ErrCodeTerminalIO, "terminal closed while running")
			}
			return perrors.Wrap(err, perrors.ErrCodeTerminalIO, "poll terminal")
		}

		now := a.clicks.Now()
		if raw == nil {
			if now.Sub(lastActivity) >= a.animationInterval {
				lastActivity = now
				a.enqueue(ctx, event.Animation{Time: now}, true)
			}
			continue
		}
		lastActivity = now

		if ev, ok := a.clicks.Translate(raw, now); ok {
			if !a.enqueue(ctx, ev, false) {
				return nil
			}
		}
	}
}

// enqueue blocks until ev is queued or ctx ends. Droppable events give up
// immediately when the queue is full.
func (a *App) enqueue(ctx context.Context, ev event.Event, droppable bool) bool {
	if droppable {
		select {
		case a.events <- ev:
		default:
			metricQueueDropped.Inc()
		}
		return true
	}
	select {
	case a.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (a *App) render(ctx context.Context) error {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "App.render")
	defer span.End()

	a.screen.Render()
	a.screen.Flush(a.backend)

	if x, y, visible := a.screen.Buffer().Cursor(); visible {
		a.backend.SetCursorPos(x, y)
		a.backend.ShowCursor()
	} else {
		a.backend.HideCursor()
	}
	a.backend.Show()

	w, h := a.screen.Size()
	observability.SetAttributes(ctx,
		observability.AttrFrameWidth.Int(w),
		observability.AttrFrameHeight.Int(h),
	)
	metricFramesRendered.Inc()
	metricRenderDuration.Observe(time.Since(start).Seconds())

	if er, ok := a.backend.(errorReporter); ok {
		if err := er.Err(); err != nil {
			observability.RecordError(ctx, err)
			return perrors.Wrap(err, perrors.ErrCodeTerminalIO, "write frame")
		}
	}
	return nil
}

func (a *App) focusInitial() {
	id := a.initialFocus
	if !a.tree.Has(id) {
		ids := a.tree.IDs()
		if len(ids) == 0 {
			return
		}
		id = ids[0]
	}
	a.screen.Focus(id)
}

func (a *App) swapTree() {
	a.treeMu.Lock()
	tree := a.pendingTree
	a.pendingTree = nil
	a.treeMu.Unlock()
	if tree == nil {
		return
	}

	a.tree = tree
	a.screen.SetTree(tree)
	if _, ok := a.screen.Context().FocusedPane(); !ok {
		a.focusInitial()
	}
	_ = a.logger.Info(logging.CategoryLayout, "tree_swapped", "", map[string]any{"panes": len(tree.IDs())})
}

func (a *App) fini() {
	a.finiOnce.Do(func() {
		a.backend.Fini()
		_ = a.logger.Info(logging.CategoryTerminal, "fini", "terminal released", nil)
	})
}
