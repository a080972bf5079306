// Package watch reports changes to a single file on disk.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/df07/go-raytracy/pkg/core"
)

// FileWatcher calls back when one file is written, created or replaced.
// The parent directory is watched so editors that save by rename are seen.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	logger   core.Logger
}

// NewFileWatcher starts watching path. Bursts of events closer together than
// debounce are reported once.
func NewFileWatcher(path string, debounce time.Duration, logger core.Logger) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve %s", path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create file watcher")
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "cannot watch %s", filepath.Dir(abs))
	}

	return &FileWatcher{watcher: watcher, path: abs, debounce: debounce, logger: logger}, nil
}

// Run delivers change notifications until ctx is done or the watcher is closed
func (w *FileWatcher) Run(ctx context.Context, onChange func()) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Printf("File watcher error: %v\n", err)
			}
		}
	}
}

// Close stops watching
func (w *FileWatcher) Close() error {
	return w.watcher.Close()
}
