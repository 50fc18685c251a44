package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/atinylittleshell/gsuggest/pkg/debounce"
	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDelay = 100 * time.Millisecond

// Reload reads path into matcher.
func Reload(matcher Matcher, path string, logger *zap.Logger) error {
	names, err := LoadNames(path)
	if err != nil {
		return err
	}
	if err := matcher.Replace(names); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	logger.Info("catalog loaded", zap.String("path", path), zap.String("entries", humanize.Comma(int64(len(names)))))
	return nil
}

// Watch reloads matcher whenever the file at path changes, until ctx is done.
// The parent directory is watched so that editors replacing the file are
// noticed too.
func Watch(ctx context.Context, matcher Matcher, path string, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", path, err)
	}

	target := filepath.Clean(path)
	reload := debounce.New(reloadDelay, func(struct{}) {
		if ctx.Err() != nil {
			return
		}
		if err := Reload(matcher, path, logger); err != nil {
			logger.Warn("catalog reload failed", zap.String("path", path), zap.Error(err))
		}
	})

	go func() {
		defer watcher.Close()
		// the matcher may be closed once ctx is done
		defer reload.Cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok || ctx.Err() != nil {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					reload.Trigger(struct{}{})
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("catalog watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
