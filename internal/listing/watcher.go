package listing

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watcher signals when a manifest file changes on disk. It watches the
// parent directory so editors that replace the file by rename are seen.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	target    string
	events    chan struct{}
	stop      chan struct{}
	debounce  *time.Timer
	mu        sync.Mutex
	closed    bool
	stopOnce  sync.Once
}

// NewWatcher starts watching manifestPath.
func NewWatcher(manifestPath string) (*Watcher, error) {
	abs, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		fsWatcher: fsw,
		target:    abs,
		events:    make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer func() {
		w.mu.Lock()
		w.closed = true
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.mu.Unlock()
		close(w.events)
	}()

	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.target || ev.Op == fsnotify.Chmod {
				continue
			}
			w.mu.Lock()
			if w.debounce != nil {
				w.debounce.Stop()
			}
			w.debounce = time.AfterFunc(watchDebounce, w.signal)
			w.mu.Unlock()
		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) signal() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.events <- struct{}{}:
	default:
	}
}

// Events returns a channel that receives one value per settled change. It
// is closed after Stop.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Path returns the absolute manifest path being watched.
func (w *Watcher) Path() string { return w.target }

// Stop shuts down the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		w.fsWatcher.Close()
	})
}
