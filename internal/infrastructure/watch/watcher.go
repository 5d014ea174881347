// Package watch regenerates sheets when a watched specification file
// changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultWindow = 500 * time.Millisecond

// SpecWatcher observes a single specification file and invokes a callback
// after edits settle. The parent directory is watched because most editors
// save via rename-replace, which drops a watch on the file itself.
type SpecWatcher struct {
	path     string
	window   time.Duration
	onChange func(path string)
	watcher  *fsnotify.Watcher
}

// NewSpecWatcher creates a watcher for one specification file.
func NewSpecWatcher(path string, window time.Duration, onChange func(string)) (*SpecWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if window == 0 {
		window = defaultWindow
	}
	return &SpecWatcher{
		path:     abs,
		window:   window,
		onChange: onChange,
		watcher:  w,
	}, nil
}

// Run blocks until the context is cancelled, firing the callback once per
// settled burst of edits to the watched file.
func (w *SpecWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close() //nolint:errcheck // shutdown path

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	var timer *time.Timer
	var settled <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.window)
			} else {
				timer.Stop()
				timer.Reset(w.window)
			}
			settled = timer.C

		case <-settled:
			settled = nil
			if w.onChange != nil {
				w.onChange(w.path)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// relevant reports whether the event affects the watched file's content.
func (w *SpecWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != filepath.Base(w.path) {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename)
}
