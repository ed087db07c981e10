// Package watch blocks until files under the watched directories change,
// debouncing bursts of events so one save triggers one recompile.
package watch

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce is how long the watcher waits after the last event before
// reporting a change. Editors often emit several events per save.
const Debounce = 200 * time.Millisecond

// Watcher wraps fsnotify with directory-set management and debouncing.
type Watcher struct {
	fsw     *fsnotify.Watcher
	watched map[string]bool
}

// New creates a watcher with no directories watched yet.
func New() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fsw: fsw, watched: make(map[string]bool)}, nil
}

// SetDirs ensures every listed directory is being watched. Directories
// from earlier passes stay watched; a recompile only ever widens the set.
func (w *Watcher) SetDirs(dirs []string) error {
	for _, dir := range dirs {
		if w.watched[dir] {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
		w.watched[dir] = true
	}
	return nil
}

// Wait blocks until a file under a watched directory is written, created,
// removed, or renamed, then waits for the burst to settle. Returns the
// context error on cancellation.
func (w *Watcher) Wait(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-w.fsw.Errors:
			return err
		case event := <-w.fsw.Events:
			if !relevant(event) {
				continue
			}
			w.settle(ctx)
			return nil
		}
	}
}

// settle drains follow-up events until the stream is quiet for Debounce.
func (w *Watcher) settle(ctx context.Context) {
	timer := time.NewTimer(Debounce)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.fsw.Events:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(Debounce)
		case <-timer.C:
			return
		}
	}
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func relevant(event fsnotify.Event) bool {
	return event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Remove) ||
		event.Op.Has(fsnotify.Rename)
}
