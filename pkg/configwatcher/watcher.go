package configwatcher

import (
	"context"
	"path/filepath"
	"time"

	"skillpath_backend/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = time.Second

// ReloadFunc is called once a burst of writes to the watched file has settled.
type ReloadFunc func(ctx context.Context, path string) error

// Watch watches the directory holding path, since editors often replace files instead of
// writing them in place. It blocks until ctx is done.
func Watch(ctx context.Context, path string, debounce time.Duration, reload ReloadFunc) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return err
	}
	logger.Log.Info("Watching file for changes", zap.String("path", absPath))

	var fire <-chan time.Time
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			if err := reload(ctx, absPath); err != nil {
				logger.Log.Error("Reload after file change failed", zap.String("path", absPath), zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log.Error("File watcher error", zap.Error(err))
		}
	}
}
