// Package library keeps named texture resources loaded from a file
// system and shares them between users by reference count. Files that
// change on disk are queued by Watch and reloaded by ApplyPending.
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"sync"

	"github.com/gogpu/texture"
)

// ErrNotFound is returned for names the library does not hold.
var ErrNotFound = errors.New("library: texture not loaded")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("library: closed")

// Library is a registry of texture resources keyed by their path in an
// fs.FS.
//
// Get, Release, Reload, ApplyPending and Close touch device textures and
// must be called from the goroutine that renders with them. The other
// methods and the file watcher may run on any goroutine.
type Library struct {
	sys  *texture.System
	fsys fs.FS

	onReload func(name string, err error)

	mu      sync.Mutex
	entries map[string]*entry
	pending map[string]bool
	closed  bool

	watch   *watcher
	changed chan struct{}
}

type entry struct {
	res  *texture.Resource
	refs int
}

// Option configures a Library.
type Option func(*Library)

// WithReloadHook registers fn to be called after every reload, with the
// reload error if any. fn runs with the library lock released.
func WithReloadHook(fn func(name string, err error)) Option {
	return func(l *Library) {
		l.onReload = fn
	}
}

// New creates a library loading files from fsys into resources of sys.
func New(sys *texture.System, fsys fs.FS, opts ...Option) *Library {
	l := &Library{
		sys:     sys,
		fsys:    fsys,
		entries: make(map[string]*entry),
		pending: make(map[string]bool),
		changed: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Get returns the resource for name, loading it on first use, and takes a
// reference that must be returned with Release.
//
// A file that fails to decode still yields a usable resource aliasing a
// placeholder; its *texture.LoadError is returned alongside and the
// reference is taken. A file that cannot be read yields no resource.
func (l *Library) Get(name string, flags texture.Flags) (*texture.Resource, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrClosed
	}
	if e, ok := l.entries[name]; ok {
		e.refs++
		return e.res, nil
	}

	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("library: read %s: %w", name, err)
	}
	res := texture.NewResource(l.sys, name, flags)
	loadErr := res.Load(data)

	l.entries[name] = &entry{res: res, refs: 1}
	if l.watch != nil {
		l.watch.add(name)
	}
	l.log().Debug("library: texture loaded", "name", name, "state", res.State(), "size", len(data))
	return res, loadErr
}

// Release drops a reference taken by Get and releases the resource when
// the last one is gone.
func (l *Library) Release(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	e.refs--
	if e.refs > 0 {
		return nil
	}
	e.res.Release()
	delete(l.entries, name)
	delete(l.pending, name)
	l.log().Debug("library: texture released", "name", name)
	return nil
}

// Reload reads name again and replaces the resource contents. The
// *texture.Resource stays the same; its handle changes.
func (l *Library) Reload(name string) error {
	err := l.reload(name)
	if l.onReload != nil {
		l.onReload(name, err)
	}
	return err
}

func (l *Library) reload(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return fmt.Errorf("library: read %s: %w", name, err)
	}
	e.res.Unload()
	if err := e.res.Load(data); err != nil {
		return err
	}
	l.log().Info("library: texture reloaded", "name", name)
	return nil
}

// ApplyPending reloads the textures whose files changed since the last
// call and returns how many were reloaded. Renderers call it once per
// frame, or after receiving from Changed.
func (l *Library) ApplyPending() int {
	l.mu.Lock()
	names := make([]string, 0, len(l.pending))
	for name := range l.pending {
		names = append(names, name)
	}
	clear(l.pending)
	l.mu.Unlock()

	slices.Sort(names)
	n := 0
	for _, name := range names {
		if _, ok := l.Lookup(name); !ok {
			continue
		}
		if err := l.Reload(name); err != nil {
			l.log().Warn("library: reload failed", "name", name, "err", err)
		}
		n++
	}
	return n
}

// Changed returns a channel that receives after a watched file changed.
// Several changes may be coalesced into one receive.
func (l *Library) Changed() <-chan struct{} {
	return l.changed
}

// Pending returns the names queued for ApplyPending in sorted order.
func (l *Library) Pending() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0, len(l.pending))
	for name := range l.pending {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// markChanged queues a loaded name for ApplyPending.
func (l *Library) markChanged(name string) {
	l.mu.Lock()
	_, loaded := l.entries[name]
	if loaded {
		l.pending[name] = true
	}
	l.mu.Unlock()
	if !loaded {
		return
	}

	select {
	case l.changed <- struct{}{}:
	default:
	}
	l.log().Debug("library: texture changed", "name", name)
}

// Lookup returns the resource for name without taking a reference.
func (l *Library) Lookup(name string) (*texture.Resource, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[name]
	if !ok {
		return nil, false
	}
	return e.res, true
}

// Refs returns the reference count of name.
func (l *Library) Refs(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[name]; ok {
		return e.refs
	}
	return 0
}

// Names returns the loaded names in sorted order.
func (l *Library) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0, len(l.entries))
	for name := range l.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Close stops watching and releases every resource regardless of its
// reference count.
func (l *Library) Close() error {
	l.mu.Lock()
	w := l.watch
	l.watch = nil
	l.closed = true
	for name, e := range l.entries {
		e.res.Release()
		delete(l.entries, name)
	}
	clear(l.pending)
	l.mu.Unlock()

	if w != nil {
		return w.close()
	}
	return nil
}

func (l *Library) log() *slog.Logger {
	return texture.Logger()
}
