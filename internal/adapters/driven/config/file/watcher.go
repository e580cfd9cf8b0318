package file

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/labelrag/internal/logger"
)

// Reloadable is a configuration source backed by one file.
type Reloadable interface {
	Load() error
	Path() string
}

// Watcher reloads a configuration file when it changes on disk.
type Watcher struct {
	store Reloadable
}

// NewWatcher creates a watcher for the store's file.
func NewWatcher(store Reloadable) *Watcher {
	return &Watcher{store: store}
}

// Watch reloads the store on every write and sends on the returned channel
// after each successful reload. The parent directory is watched because
// editors often replace the file rather than write to it. The channel is
// closed when ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.store.Path())); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", w.store.Path(), err)
	}

	reloads := make(chan struct{}, 1)
	go func() {
		defer close(reloads)
		defer fw.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if !w.handleEvent(event) {
					continue
				}
				select {
				case reloads <- struct{}{}:
				default:
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Warn("config: watcher error: %v", err)
			}
		}
	}()

	return reloads, nil
}

// handleEvent reloads the store if the event concerns the config file.
// It reports whether a reload happened.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.store.Path()) {
		return false
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}

	if err := w.store.Load(); err != nil {
		logger.Warn("config: reload of %s failed, keeping previous values: %v", event.Name, err)
		return false
	}
	logger.Info("config: reloaded %s", event.Name)
	return true
}
