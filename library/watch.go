package library

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watch queues textures for ApplyPending when their files under dir
// change. dir must be the directory the library's fs.FS is rooted at, e.g.
// for os.DirFS(dir). Directories are watched as textures in them are
// loaded.
func (l *Library) Watch(dir string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		_ = fw.Close()
		return ErrClosed
	}
	if l.watch != nil {
		l.mu.Unlock()
		_ = fw.Close()
		return errors.New("library: already watching")
	}
	w := &watcher{
		lib:     l,
		dir:     dir,
		fw:      fw,
		watched: make(map[string]bool),
		done:    make(chan struct{}),
	}
	l.watch = w
	for name := range l.entries {
		w.add(name)
	}
	l.mu.Unlock()

	w.wg.Add(1)
	go w.run()
	return nil
}

type watcher struct {
	lib *Library
	dir string
	fw  *fsnotify.Watcher

	// watched holds fs.FS directory names; guarded by lib.mu.
	watched map[string]bool

	done chan struct{}
	wg   sync.WaitGroup
}

// add watches the directory of name. Called with lib.mu held.
func (w *watcher) add(name string) {
	dir := path.Dir(name)
	if w.watched[dir] {
		return
	}
	if err := w.fw.Add(filepath.Join(w.dir, filepath.FromSlash(dir))); err != nil {
		w.lib.log().Warn("library: cannot watch directory", "dir", dir, "err", err)
		return
	}
	w.watched[dir] = true
}

func (w *watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			name, ok := w.name(event.Name)
			if !ok {
				continue
			}
			w.lib.markChanged(name)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.lib.log().Warn("library: watcher error", "err", err)
		}
	}
}

// name converts an OS path from an event to an fs.FS name.
func (w *watcher) name(p string) (string, bool) {
	rel, err := filepath.Rel(w.dir, p)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

func (w *watcher) close() error {
	close(w.done)
	err := w.fw.Close()
	w.wg.Wait()
	return err
}
