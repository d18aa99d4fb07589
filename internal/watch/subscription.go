package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"typewatch/internal/project"
)

// Subscription turns raw fsnotify traffic into a stream of changed
// project source paths. It watches every project directory recursively
// and registers new directories as they appear; editors that write via
// rename-into-place still produce events on the parent directory.
type Subscription struct {
	manifest *project.Manifest
	watcher  *fsnotify.Watcher
	paths    chan string
	done     chan struct{}
}

// Subscribe registers watches for all project directories and starts
// the translation loop. Close releases the watcher.
func Subscribe(m *project.Manifest) (*Subscription, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	dirs, err := m.Dirs()
	if err != nil {
		w.Close()
		return nil, err
	}
	for _, dir := range dirs {
		if err := w.Add(filepath.FromSlash(dir)); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	s := &Subscription{
		manifest: m,
		watcher:  w,
		paths:    make(chan string, 1024),
		done:     make(chan struct{}),
	}
	go s.loop()
	return s, nil
}

// Paths is the stream of changed source files, absolute and
// slash-normalized. The channel is buffered; under extreme event storms
// excess events are dropped, which is safe because the reactor rechecks
// whole files, not deltas.
func (s *Subscription) Paths() <-chan string { return s.paths }

func (s *Subscription) Close() error {
	err := s.watcher.Close()
	<-s.done
	return err
}

func (s *Subscription) loop() {
	defer close(s.done)
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handle(ev)
		case _, ok := <-s.watcher.Errors:
			// Watcher errors are transient (overflow, unreadable
			// entries); the stream itself keeps going.
			if !ok {
				return
			}
		}
	}
}

func (s *Subscription) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	if ev.Op&fsnotify.Create != 0 {
		s.maybeWatchDir(ev.Name)
	}

	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}
	if !s.manifest.Owns(abs) {
		return
	}
	select {
	case s.paths <- filepath.ToSlash(abs):
	default:
	}
}

// maybeWatchDir registers a freshly created directory (and anything
// already inside it) so files added there later are seen.
func (s *Subscription) maybeWatchDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if s.manifest.ExcludesDir(filepath.Base(path)) {
		return
	}
	filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && s.manifest.ExcludesDir(d.Name()) {
			return filepath.SkipDir
		}
		s.watcher.Add(p)
		return nil
	})
}
