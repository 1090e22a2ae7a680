package fs

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reports roots whose watched directories changed on disk. Events
// are debounced per root.
type Watcher struct {
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	watching map[string]RootID
	notify   chan RootID
	done     chan struct{}
	debounce time.Duration
	logger   *zap.Logger
}

func NewWatcher(debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	dw := &Watcher{
		watcher:  w,
		watching: make(map[string]RootID),
		notify:   make(chan RootID, 16),
		done:     make(chan struct{}),
		debounce: debounce,
		logger:   logger,
	}
	go dw.run()
	return dw, nil
}

func (w *Watcher) run() {
	lastEvent := make(map[RootID]time.Time)
	tick := w.debounce / 2
	if tick <= 0 {
		tick = w.debounce
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !(event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Write)) {
				continue
			}
			w.mu.Lock()
			root, ok := w.watching[filepath.Dir(event.Name)]
			if !ok {
				root, ok = w.watching[event.Name]
			}
			w.mu.Unlock()
			if ok {
				lastEvent[root] = time.Now()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))

		case now := <-ticker.C:
			for root, at := range lastEvent {
				if now.Sub(at) < w.debounce {
					continue
				}
				select {
				case w.notify <- root:
					delete(lastEvent, root)
				default:
				}
			}
		}
	}
}

// WatchRoot replaces the set of directories watched for root.
func (w *Watcher) WatchRoot(root RootID, dirs []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	want := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		want[dir] = true
	}
	for dir, owner := range w.watching {
		if owner == root && !want[dir] {
			_ = w.watcher.Remove(dir)
			delete(w.watching, dir)
		}
	}
	for dir := range want {
		if _, ok := w.watching[dir]; ok {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Debug("watch failed", zap.String("path", dir), zap.Error(err))
			continue
		}
		w.watching[dir] = root
	}
}

// UnwatchRoot stops watching every directory of root.
func (w *Watcher) UnwatchRoot(root RootID) {
	w.WatchRoot(root, nil)
}

// Notify delivers the ids of roots that need a rescan.
func (w *Watcher) Notify() <-chan RootID {
	return w.notify
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
