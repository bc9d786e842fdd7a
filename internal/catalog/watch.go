package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce collapses the burst of events an editor produces when
// saving a file into one reload.
const DefaultWatchDebounce = 250 * time.Millisecond

// Watcher reloads a Store whenever a catalog file in its directory changes.
type Watcher struct {
	dir      string
	store    *Store
	debounce time.Duration
	logger   *slog.Logger
	loadFn   func(string) (Data, error)

	// reloaded, when set, receives the result of every reload attempt.
	reloaded func(error)
}

// NewWatcher creates a watcher for dir feeding store.
func NewWatcher(dir string, store *Store, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:      dir,
		store:    store,
		debounce: DefaultWatchDebounce,
		logger:   logger,
		loadFn:   LoadDir,
	}
}

// SetDebounce changes how long the watcher waits for events to settle before
// reloading. Non-positive values keep the current setting.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Run blocks until ctx is done. A failed reload is logged and leaves the
// previous snapshot in place.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	defer func() {
		if err := fw.Close(); err != nil {
			w.logger.Warn("closing catalog watcher", "error", err)
		}
	}()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching catalog directory", "dir", w.dir)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isCatalogFile(ev.Name) || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.logger.Debug("catalog file changed", "file", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("catalog watcher error", "error", err)
		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	data, err := w.loadFn(w.dir)
	if err == nil {
		err = w.store.Reload(data)
	}
	if err != nil {
		w.logger.Error("catalog reload failed; keeping previous catalog", "dir", w.dir, "error", err)
	}
	if w.reloaded != nil {
		w.reloaded(err)
	}
}
