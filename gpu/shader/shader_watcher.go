package shader

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/fsnotify/fsnotify"
)

// Watcher reloads sources when their files change on disk.
//
// Directories are watched rather than files so that editors which replace a file through a
// rename keep being tracked. Reloads run on the watcher's own goroutine, one at a time; once a
// Source is watched, read it only from the reload callback or after Close returns.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onReload func(*Source)

	mu      sync.Mutex
	sources map[string][]*Source
	dirs    map[string]bool

	done chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherCallback sets a function called after each reload, on the watcher goroutine.
func WithWatcherCallback(fn func(*Source)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// NewWatcher starts a file watcher with no sources registered.
//
// Parameters:
//   - options: functional options to configure the watcher
//
// Returns:
//   - *Watcher: the running watcher
//   - error: an error if the platform watcher could not be created
func NewWatcher(options ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader: create watcher: %w", err)
	}

	w := &Watcher{
		watcher: fw,
		sources: make(map[string][]*Source),
		dirs:    make(map[string]bool),
		done:    make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}

	go w.loop()
	return w, nil
}

// Watch registers src for reloading when its file is written, created, removed or renamed.
//
// Parameters:
//   - src: the source to keep up to date
//
// Returns:
//   - error: an error if the source's directory could not be watched
func (w *Watcher) Watch(src *Source) error {
	path, err := filepath.Abs(src.Metadata().Path)
	if err != nil {
		return fmt.Errorf("shader: watch %s: %w", src.Metadata().Path, err)
	}
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirs[dir] {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("shader: watch %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.sources[path] = append(w.sources[path], src)
	return nil
}

// Close stops the watcher and waits for any in-flight reload to finish.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.reload(filepath.Clean(event.Name))
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			common.Logger().Warn("shader: watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload(path string) {
	w.mu.Lock()
	sources := append([]*Source(nil), w.sources[path]...)
	w.mu.Unlock()

	for _, src := range sources {
		src.Reload()
		common.Logger().Debug("shader: reloaded", "name", src.Name(), "path", path, "fallback", src.IsFallback())
		if w.onReload != nil {
			w.onReload(src)
		}
	}
}
