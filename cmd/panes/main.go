package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/odvcencio/panes/pkg/clipboard"
	"github.com/odvcencio/panes/pkg/config"
	"github.com/odvcencio/panes/pkg/logging"
	"github.com/odvcencio/panes/pkg/terminal"
	"github.com/odvcencio/panes/pkg/ui/backend"
	tcellbackend "github.com/odvcencio/panes/pkg/ui/backend/tcell"
	"github.com/odvcencio/panes/pkg/ui/clicks"
	"github.com/odvcencio/panes/pkg/ui/runtime"
)

// Version information - set via ldflags during build
var (
	version   = "0.1.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if err != nil && exitCodeForError(err) != 0 {
		terminal.NewWithOutput(os.Stderr).Error("%v", err)
	}
	os.Exit(exitCodeForError(err))
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return withExitCode(err, 2)
	}
	if opts.version {
		fmt.Fprintf(stdout, "panes %s (commit %s, built %s)\n", version, commit, buildDate)
		return nil
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	if cfg.Telemetry.TraceFile != "" {
		stop, err := startTracing(cfg.Telemetry.TraceFile)
		if err != nil {
			return err
		}
		defer stop()
	}

	clip := clipboard.Default(stdout)
	tree, err := buildTree(cfg, clip)
	if err != nil {
		return err
	}

	if opts.demo {
		w, h := demoSize(stdout)
		return runDemo(stdout, cfg, tree, w, h)
	}

	if cfg.Telemetry.MetricsAddr != "" {
		stop, err := startMetrics(cfg.Telemetry.MetricsAddr, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	be, err := tcellbackend.New()
	if err != nil {
		return err
	}
	app, err := newApp(cfg, be, tree, logger)
	if err != nil {
		return err
	}

	if opts.watch {
		go watchConfig(ctx, opts, clip, app, logger)
	}

	return app.Run(ctx)
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if cfg.Logging.Dir == "" {
		return logging.Nop(), nil
	}
	logger, err := logging.NewLogger(cfg.Logging.Dir, logging.NewSessionID())
	if err != nil {
		return nil, err
	}
	level, _ := logging.ParseLevel(cfg.Logging.Level)
	logger.SetMinLevel(level)
	return logger, nil
}

func newApp(cfg *config.Config, be backend.Backend, tree *runtime.Tree, logger *logging.Logger) (*runtime.App, error) {
	bindings, err := cfg.Input.Bindings()
	if err != nil {
		return nil, err
	}
	proc := clicks.New()
	proc.Window = cfg.Input.DoubleClickWindow()
	proc.Distance = cfg.Input.ClickDistance
	proc.QuitKeys = bindings

	return runtime.NewApp(runtime.AppConfig{
		Backend:           be,
		Tree:              tree,
		Logger:            logger,
		Clicks:            proc,
		InitialFocus:      cfg.Input.InitialFocus,
		HoverFocus:        cfg.Input.HoverFocus,
		PollInterval:      cfg.Input.PollInterval(),
		AnimationInterval: cfg.Input.AnimationInterval(),
	}), nil
}

// watchConfig rebuilds the tree whenever the config file changes. Invalid
// reloads are logged and the running tree is kept.
func watchConfig(ctx context.Context, opts *options, clip clipboard.Clipboard, app *runtime.App, logger *logging.Logger) {
	err := config.Watch(ctx, opts.configPath, func(cfg *config.Config, err error) {
		if err == nil {
			opts.apply(cfg)
			err = cfg.Validate()
		}
		if err != nil {
			_ = logger.Warn(logging.CategoryConfig, "reload_failed", err.Error(), map[string]any{"path": opts.configPath})
			return
		}
		tree, err := buildTree(cfg, clip)
		if err != nil {
			_ = logger.Warn(logging.CategoryConfig, "reload_failed", err.Error(), map[string]any{"path": opts.configPath})
			return
		}
		app.SetTree(tree)
		_ = logger.Info(logging.CategoryConfig, "reloaded", "layout reloaded", map[string]any{"panes": tree.IDs()})
	})
	if err != nil {
		_ = logger.Error(logging.CategoryConfig, "watch_failed", err.Error(), map[string]any{"path": opts.configPath})
	}
}
