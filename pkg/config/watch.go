package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	perrors "github.com/odvcencio/panes/pkg/errors"
)

const watchDebounce = 100 * time.Millisecond

// Watch reloads the config at path whenever it changes and passes the
// result to fn. It blocks until ctx is done. The parent directory is
// watched so editors that replace the file on save are still seen.
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return perrors.Wrap(err, perrors.ErrCodeConfigLoad, "creating config watcher")
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return perrors.Wrap(err, perrors.ErrCodeConfigLoad, "resolving config path").WithContext("path", path)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return perrors.Wrap(err, perrors.ErrCodeConfigLoad, "watching config directory").WithContext("path", path)
	}

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fn(nil, perrors.Wrap(err, perrors.ErrCodeConfigLoad, "watching config").WithContext("path", path))
		case <-timer.C:
			fn(LoadFromPath(path))
		}
	}
}
