package render

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 200 * time.Millisecond

// Watch reloads the template tree whenever a file under dir changes. dir must
// be the directory the renderer was created from. Watching stops when ctx is
// done; the returned channel is closed once the watcher has shut down.
func (r *Renderer) Watch(ctx context.Context, dir string) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create template watcher: %w", err)
	}

	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(p)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer watcher.Close()

		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(reloadDebounce)
				fire = timer.C
			case <-fire:
				fire = nil
				if err := r.Load(); err != nil {
					r.logger.Error("template reload failed, keeping previous templates", zap.Error(err))
					continue
				}
				r.logger.Info("templates reloaded", zap.String("dir", dir))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.logger.Warn("template watcher error", zap.Error(err))
			}
		}
	}()

	r.logger.Info("watching templates for changes", zap.String("dir", dir))
	return done, nil
}
