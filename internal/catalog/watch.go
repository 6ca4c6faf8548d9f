package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads a catalog file when it changes on disk.
type Watcher struct {
	catalog  *Catalog
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	onReload func(count int, err error)
}

// WatcherConfig holds configuration for the catalog watcher.
type WatcherConfig struct {
	Catalog  *Catalog
	Path     string
	Debounce time.Duration // delay after the last event before reloading

	// OnReload is called after every reload attempt (optional).
	OnReload func(count int, err error)
}

// NewWatcher creates a watcher on the directory holding cfg.Path. The
// directory is watched instead of the file so that editors that replace
// the file on save are still picked up.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Catalog == nil || cfg.Path == "" {
		return nil, fmt.Errorf("catalog and path are required")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	if err := fsWatcher.Add(filepath.Dir(cfg.Path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(cfg.Path), err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	return &Watcher{
		catalog:  cfg.Catalog,
		path:     filepath.Clean(cfg.Path),
		debounce: debounce,
		watcher:  fsWatcher,
		onReload: cfg.OnReload,
	}, nil
}

// Run processes file events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	slog.Info("catalog watcher started", "path", w.path)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("catalog watcher error", "error", err)
		}
	}
}

// reload swaps in the new movie list; on failure the previous list is kept.
func (w *Watcher) reload() {
	movies, err := ReadFile(w.path)
	if err == nil && len(movies) == 0 {
		err = fmt.Errorf("catalog %s is empty", w.path)
	}
	if err != nil {
		slog.Error("catalog reload failed, keeping previous list", "path", w.path, "error", err)
		if w.onReload != nil {
			w.onReload(w.catalog.Len(), err)
		}
		return
	}

	w.catalog.replace(movies)
	slog.Info("catalog reloaded", "path", w.path, "movies", len(movies))
	if w.onReload != nil {
		w.onReload(len(movies), nil)
	}
}
