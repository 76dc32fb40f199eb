package loop

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thruflo/rustlings/internal/catalogue"
	"github.com/thruflo/rustlings/internal/logging"
)

// FileWatcher watches the exercises directory and reports edits to
// catalogued exercise files as FileChanged events. Bursts of writes within
// the debounce window collapse into one event for the lowest index.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	index    map[string]int
	debounce time.Duration
	log      *logging.Logger
}

// NewFileWatcher watches dir and its subdirectories. root is the project
// root the exercise paths are relative to.
func NewFileWatcher(root, dir string, exercises []catalogue.Exercise, debounce time.Duration) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:  w,
		dir:      dir,
		index:    make(map[string]int, len(exercises)),
		debounce: debounce,
		log:      logging.With("component", "watcher"),
	}
	for i, ex := range exercises {
		fw.index[filepath.Join(root, filepath.FromSlash(ex.Path))] = i
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return fw, nil
}

// Run forwards changes to out until ctx is done or the watcher fails. A
// failure is reported as WatcherFailed. The underlying watcher is closed on
// return.
func (fw *FileWatcher) Run(ctx context.Context, out chan<- Event) {
	defer fw.watcher.Close()

	timer := time.NewTimer(fw.debounce)
	timer.Stop()
	defer timer.Stop()

	pending := -1
	send := func(ev Event) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				send(WatcherFailed{Err: fmt.Errorf("event channel closed")})
				return
			}
			i, ok := fw.handle(event)
			if !ok {
				continue
			}
			if pending < 0 || i < pending {
				pending = i
			}
			timer.Reset(fw.debounce)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				err = fmt.Errorf("error channel closed")
			}
			send(WatcherFailed{Err: err})
			return

		case <-timer.C:
			if pending < 0 {
				continue
			}
			if !send(FileChanged{Index: pending}) {
				return
			}
			pending = -1
		}
	}
}

// handle maps an event to an exercise index. New directories are added to
// the watch list.
func (fw *FileWatcher) handle(event fsnotify.Event) (int, bool) {
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := fw.watcher.Add(event.Name); err != nil {
				fw.log.Warn("failed to watch new directory", "dir", event.Name, "error", err)
			}
			return 0, false
		}
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return 0, false
	}

	i, ok := fw.index[filepath.Clean(event.Name)]
	if ok {
		fw.log.Debug("exercise file event", "path", event.Name, "op", event.Op.String())
	}
	return i, ok
}

// Close stops watching. Run closes the watcher itself; Close is for a
// FileWatcher that was never run.
func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}
