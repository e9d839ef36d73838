package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/odvcencio/panes/pkg/config"
)

type options struct {
	direction   string
	gutter      int
	demo        bool
	configPath  string
	watch       bool
	hoverFocus  bool
	metricsAddr string
	tracePath   string
	logDir      string
	version     bool

	// set records which flags were given explicitly.
	set map[string]bool
}

func parseOptions(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("panes", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.direction, "direction", "horizontal", "root split direction: horizontal or vertical")
	fs.IntVar(&opts.gutter, "gutter", config.DefaultGutter, "cells between the root's children")
	fs.BoolVar(&opts.demo, "D", false, "print the layout and one rendered frame, then exit")
	fs.BoolVar(&opts.demo, "demo", false, "same as -D")
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fs.BoolVar(&opts.watch, "watch", false, "reload the layout when the config file changes (needs --config)")
	fs.BoolVar(&opts.hoverFocus, "hover-focus", false, "focus follows the mouse; the pane under the pointer wins over the clicked one")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.StringVar(&opts.tracePath, "trace", "", "write OpenTelemetry spans to this file")
	fs.StringVar(&opts.logDir, "log-dir", "", "directory for JSONL session logs")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: panes [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	fs.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	if opts.watch && opts.configPath == "" {
		return nil, fmt.Errorf("--watch requires --config")
	}
	return opts, nil
}

// apply copies explicitly given flags over cfg. Direction and gutter only
// touch the root split.
func (o *options) apply(cfg *config.Config) {
	if o.set["direction"] {
		cfg.Layout.Direction = o.direction
	}
	if o.set["gutter"] {
		g := o.gutter
		cfg.Layout.Gutter = &g
	}
	if o.set["hover-focus"] {
		cfg.Input.HoverFocus = o.hoverFocus
	}
	if o.logDir != "" {
		cfg.Logging.Dir = o.logDir
	}
	if o.metricsAddr != "" {
		cfg.Telemetry.MetricsAddr = o.metricsAddr
	}
	if o.tracePath != "" {
		cfg.Telemetry.TraceFile = o.tracePath
	}
}

func (o *options) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFromPath(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
