package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/webclipper/internal/logger"
)

// watchDebounce coalesces the burst of events editors produce on save.
const watchDebounce = 250 * time.Millisecond

// WatchFile makes the reloader also reload when the manifest changes on disk.
// It must be called before Start.
func (mr *ManifestReloader) WatchFile(path string) {
	mr.watchPath = path
}

// startWatch watches the manifest's directory, which survives editors that
// replace the file instead of writing it in place.
func (mr *ManifestReloader) startWatch(ctx context.Context) error {
	abs, err := filepath.Abs(mr.watchPath)
	if err != nil {
		return fmt.Errorf("failed to resolve manifest path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch manifest directory: %w", err)
	}

	mr.logger.Info("watching manifest for changes", logger.String("path", abs))

	go func() {
		defer func() { _ = w.Close() }()

		var debounce *time.Timer
		var fire <-chan time.Time

		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if debounce == nil {
					debounce = time.NewTimer(watchDebounce)
				} else {
					debounce.Reset(watchDebounce)
				}
				fire = debounce.C
			case <-fire:
				fire = nil
				mr.logger.Info("manifest changed on disk")
				if err := mr.Reload(ctx); err != nil {
					mr.logger.Error("failed to reload manifest",
						logger.Error(err))
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				mr.logger.Warn("manifest watcher error", logger.Error(err))
			case <-mr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}
