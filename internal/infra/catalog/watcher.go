package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher reloads a file-backed catalog whenever the file changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	store    *Store
	source   *FileSource
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher watches the directory holding src.Path so atomic renames by
// editors and deploy tools are seen too.
func NewWatcher(store *Store, src *FileSource, logger *slog.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(src.Path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", src.Path, err)
	}
	return &Watcher{
		watcher:  watcher,
		store:    store,
		source:   src,
		debounce: defaultDebounce,
		logger:   logger.With("component", "catalog.watcher"),
	}, nil
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	target := filepath.Clean(w.source.Path)
	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.debounce, func() {
				_ = w.store.Reload(ctx, w.source)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("catalog watcher error", "error", err)
		}
	}
}
