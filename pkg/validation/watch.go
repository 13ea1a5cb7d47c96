package validation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/marmos91/filebank/internal/logger"
	"github.com/marmos91/filebank/pkg/content"
)

// reloadDelay coalesces the burst of events an editor save produces.
const reloadDelay = 200 * time.Millisecond

// Watch reloads the registry whenever a schema file changes. It returns once
// the watcher is installed; the watch ends when ctx is cancelled.
//
// onReload, when non-nil, is called after every reload attempt.
func (r *Registry) Watch(ctx context.Context, onReload func(error)) error {
	if r.dir == "" {
		return errors.New("no schema directory configured")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create schema watcher: %w", err)
	}

	dirs := []string{
		r.dir,
		filepath.Join(r.dir, string(content.TypeDirectory)),
		filepath.Join(r.dir, string(content.TypeFile)),
	}
	for _, d := range dirs {
		if _, err := os.Stat(d); err != nil {
			continue
		}
		if err := w.Add(d); err != nil {
			_ = w.Close()
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	go r.watchLoop(ctx, w, dirs, onReload)

	logger.Info("Watching schema directory", logger.KeyPath, r.dir)
	return nil
}

func (r *Registry) watchLoop(ctx context.Context, w *fsnotify.Watcher, dirs []string, onReload func(error)) {
	defer func() { _ = w.Close() }()

	timer := time.NewTimer(reloadDelay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			// A kind subdirectory created after startup needs its own watch.
			if event.Has(fsnotify.Create) {
				for _, d := range dirs[1:] {
					if event.Name == d {
						if err := w.Add(d); err != nil {
							logger.Warn("Failed to watch schema directory", logger.KeyPath, d, logger.KeyError, err)
						}
					}
				}
			}
			if event.Has(fsnotify.Chmod) {
				continue
			}
			timer.Reset(reloadDelay)

		case <-timer.C:
			err := r.Reload()
			if err != nil {
				logger.Warn("Schema reload failed, keeping previous schemas", logger.KeyError, err)
			} else {
				logger.Info("Schemas reloaded",
					"directory_schemas", len(r.Names(content.TypeDirectory)),
					"file_schemas", len(r.Names(content.TypeFile)))
			}
			if onReload != nil {
				onReload(err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("Schema watcher error", logger.KeyError, err)
		}
	}
}
