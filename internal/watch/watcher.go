// Package watch signals when files matching doublestar patterns are written or
// created. It uses fsnotify and falls back to mtime polling when native
// notifications are unavailable.
package watch

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the stat interval used in polling mode.
const DefaultPollInterval = 2 * time.Second

// ///////////////////////////////////////////////
// Watcher
// ///////////////////////////////////////////////

// Watcher monitors the directories behind a set of glob patterns.
type Watcher struct {
	// patterns are cleaned, slash-separated doublestar patterns.
	patterns []string
	// roots are the static directory prefixes of patterns.
	roots []string
	// events is buffered to 1 so back-to-back writes coalesce.
	events chan struct{}
	done   chan struct{}
	once   sync.Once

	mu  sync.Mutex
	fsw *fsnotify.Watcher

	polling      atomic.Bool
	pollInterval time.Duration
}

// New creates a Watcher for patterns. Directories below each pattern's static
// prefix are watched recursively; directories created later are added as
// they appear. A pollInterval of zero uses [DefaultPollInterval].
func New(patterns []string, pollInterval time.Duration) (*Watcher, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("watch: no patterns")
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	w := &Watcher{
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: pollInterval,
	}
	seenRoot := make(map[string]bool)
	for _, p := range patterns {
		p = path.Clean(filepath.ToSlash(p))
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("watch: invalid pattern %q", p)
		}
		w.patterns = append(w.patterns, p)
		root, _ := doublestar.SplitPattern(p)
		if !seenRoot[root] {
			seenRoot[root] = true
			w.roots = append(w.roots, filepath.FromSlash(root))
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Info("fsnotify unavailable, falling back to polling", "error", err)
		w.startPolling()
		return w, nil
	}
	for _, root := range w.roots {
		if err := addTree(fsw, root); err != nil {
			slog.Info("cannot watch directory, falling back to polling", "path", root, "error", err)
			fsw.Close()
			w.startPolling()
			return w, nil
		}
	}
	w.fsw = fsw
	go w.watch(fsw)
	return w, nil
}

// addTree adds root and every directory below it to fsw.
func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(p)
		}
		return nil
	})
}

// Matches reports whether name matches any watched pattern.
func (w *Watcher) Matches(name string) bool {
	name = path.Clean(filepath.ToSlash(name))
	for _, p := range w.patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Polling reports whether the watcher is using polling instead of fsnotify.
func (w *Watcher) Polling() bool {
	return w.polling.Load()
}

// Events returns a channel that receives a signal after matching files change.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops the watcher and releases resources. It is safe to call more
// than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.fsw != nil {
			if closeErr := w.fsw.Close(); closeErr != nil {
				err = fmt.Errorf("closing fsnotify watcher: %w", closeErr)
			}
			w.fsw = nil
		}
	})
	return err
}

// watch forwards matching write/create events. New directories are added so
// recursive patterns keep working. On an fsnotify error it switches to polling.
func (w *Watcher) watch(fsw *fsnotify.Watcher) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(fsw, event.Name); err != nil {
						slog.Debug("cannot watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if w.Matches(event.Name) {
				w.notify()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Info("fsnotify error, switching to polling", "error", err)
			w.mu.Lock()
			if w.fsw != nil {
				w.fsw.Close()
				w.fsw = nil
			}
			w.mu.Unlock()
			w.startPolling()
			return
		}
	}
}

func (w *Watcher) startPolling() {
	w.polling.Store(true)
	go w.poll()
}

// poll periodically globs the patterns and notifies when a matching file
// appears or its modification time advances.
func (w *Watcher) poll() {
	last := w.snapshot()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			cur := w.snapshot()
			if changed(last, cur) {
				w.notify()
			}
			last = cur
		}
	}
}

// snapshot maps every matching file to its modification time.
func (w *Watcher) snapshot() map[string]time.Time {
	snap := make(map[string]time.Time)
	for _, p := range w.patterns {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			continue
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil {
				snap[m] = info.ModTime()
			}
		}
	}
	return snap
}

// changed reports whether cur contains a file that is new or newer than in prev.
func changed(prev, cur map[string]time.Time) bool {
	for name, mod := range cur {
		if old, ok := prev[name]; !ok || mod.After(old) {
			return true
		}
	}
	return false
}

// notify sends a single signal to the events channel. If a signal is already
// pending the call is a no-op, coalescing rapid successive changes.
func (w *Watcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}
