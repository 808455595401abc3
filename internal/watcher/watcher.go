package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stationops/nowplayd/pkg/logger"
)

// Watcher watches one file for content changes and invokes onSettled once
// per debounced burst of writes.
//
// The watch is established on the file's parent directory rather than the
// file itself, so editors and playout systems that replace the file via
// rename/recreate keep triggering events.
type Watcher struct {
	path      string
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
}

// New creates a watcher for path. onSettled fires after writes have been
// quiet for the given interval.
func New(path string, quiet time.Duration, onSettled func()) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:      abs,
		fsw:       fsw,
		debouncer: NewDebouncer(quiet, onSettled),
	}, nil
}

// Run consumes filesystem events until ctx is cancelled or the underlying
// watcher closes. Events for other files in the directory and events that
// carry no content change (chmod) are dropped before the debouncer.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				logger.Log.Debugf("Change notification: %s %s", event.Op, event.Name)
				w.debouncer.Notify()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Log.Warnf("Filesystem watcher error: %v", err)
		}
	}
}

// relevant reports whether the event is a content change of the monitored
// file. Create and Rename are included so file replacement counts as a
// change.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) close() {
	w.debouncer.Stop()
	if err := w.fsw.Close(); err != nil {
		logger.Log.Warnf("Failed to close filesystem watcher: %v", err)
	}
}
