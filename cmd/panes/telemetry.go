package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	perrors "github.com/odvcencio/panes/pkg/errors"
	"github.com/odvcencio/panes/pkg/logging"
	"github.com/odvcencio/panes/pkg/observability"
)

const shutdownTimeout = 2 * time.Second

// startMetrics serves /metrics on addr. The returned stop function shuts
// the server down.
func startMetrics(addr string, logger *logging.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, perrors.Wrap(err, perrors.ErrCodeInternal, "listening for metrics").WithContext("addr", addr)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = logger.Error(logging.CategoryTerminal, "metrics_server", err.Error(), map[string]any{"addr": addr})
		}
	}()
	_ = logger.Info(logging.CategoryTerminal, "metrics_server", "serving metrics", map[string]any{"addr": ln.Addr().String()})

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// startTracing exports spans to path. The returned stop function flushes
// pending spans and closes the file.
func startTracing(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, perrors.Wrap(err, perrors.ErrCodeInternal, "creating trace file").WithContext("path", path)
	}
	tp, err := observability.NewTracerProvider(f, "panes", version)
	if err != nil {
		_ = f.Close()
		return nil, perrors.Wrap(err, perrors.ErrCodeInternal, "starting tracer")
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = tp.Shutdown(ctx)
		_ = f.Close()
	}, nil
}
