package docfile

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/textnav/internal/engine/document"
	"github.com/dshills/textnav/internal/logging"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Reload reports one attempt to reload a watched fixture.
type Reload struct {
	Path     string
	Revision document.RevisionID
	Err      error
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the settle delay.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithWatchLogger sets the logger.
func WithWatchLogger(l *logging.Logger) WatchOption {
	return func(w *Watcher) {
		w.log = l.WithComponent("docfile")
	}
}

// Watcher resets a document whenever its fixture file changes. Every
// reset makes the document's existing ranges stale.
type Watcher struct {
	path  string
	doc   *document.Document
	delay time.Duration
	log   *logging.Logger

	fsw     *fsnotify.Watcher
	reloads chan Reload

	mu       sync.Mutex
	timer    *time.Timer
	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// Watch starts watching the fixture at path on behalf of doc. The file's
// directory is watched so editors that save by renaming are seen.
func Watch(path string, doc *document.Document, opts ...WatchOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:    abs,
		doc:     doc,
		delay:   DefaultDebounce,
		reloads: make(chan Reload, 16),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}
	w.fsw = fsw

	w.closedWg.Add(1)
	go w.processLoop()
	return w, nil
}

// Reloads delivers the outcome of each reload. Outcomes are dropped when
// nobody reads them.
func (w *Watcher) Reloads() <-chan Reload {
	return w.reloads
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.closedWg.Wait()
	close(w.reloads)
	return err
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename) {
				w.schedule()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watching %s: %v", w.path, err)
		}
	}
}

// schedule coalesces bursts of events into one reload.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.reload)
}

// apply loads the fixture and resets the document from it. Every error
// names the fixture path.
func (w *Watcher) apply() error {
	f, err := Load(w.path)
	if err != nil {
		return withPath(err, w.path)
	}
	opts, err := f.Options()
	if err == nil {
		err = w.doc.Reset(f.Text, opts...)
	}
	return withPath(err, w.path)
}

func (w *Watcher) reload() {
	r := Reload{Path: w.path}
	err := w.apply()
	r.Revision = w.doc.Revision()
	r.Err = err

	if err != nil {
		w.log.Warn("reloading %s: %v", w.path, err)
	} else {
		w.log.Info("reloaded %s at revision %d", w.path, r.Revision)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.reloads <- r:
	default:
	}
}
