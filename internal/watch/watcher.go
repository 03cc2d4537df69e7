package watch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/filesieve/filesieve/internal/debug"
	"github.com/filesieve/filesieve/internal/exclude"
)

// Watcher subscribes to fsnotify's recursive-by-registration notification
// API, maps raw events into the C12 FileEvent taxonomy, filters them
// through an exclude.Filter and a Debouncer, and delivers the survivors
// on an unbounded channel for the incremental indexer to consume (spec
// §4.12). Lifecycle (Start/Stop via ctx + WaitGroup, recursive watch
// registration with symlink-cycle protection) is grounded on the
// teacher's FileWatcher/addWatches.
type Watcher struct {
	fsw       *fsnotify.Watcher
	exclude   *exclude.Filter
	debouncer *Debouncer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	in  chan FileEvent
	out chan FileEvent
}

// New builds a watcher rooted at root. debounceInterval <= 0 uses the
// spec default of 500ms.
func New(root string, filter *exclude.Filter, debounceInterval time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fsw:       fsw,
		exclude:   filter,
		debouncer: NewDebouncer(debounceInterval),
		ctx:       ctx,
		cancel:    cancel,
		in:        make(chan FileEvent),
		out:       make(chan FileEvent),
	}

	if err := w.addWatches(root); err != nil {
		cancel()
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Events returns the channel of debounced, exclusion-filtered file
// events. The relay goroutine started by Start buffers arbitrarily many
// pending events in memory, so a slow consumer never blocks fsnotify's
// own delivery loop.
func (w *Watcher) Events() <-chan FileEvent {
	return w.out
}

// Start begins processing fsnotify events. Safe to call once.
func (w *Watcher) Start() {
	w.wg.Add(2)
	go w.relay()
	go w.processEvents()
}

// Stop cancels the watcher's goroutines, closes the underlying fsnotify
// watcher, and waits for clean shutdown.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// addWatches recursively registers a watch on root and every
// subdirectory not excluded, skipping symlink cycles via a
// real-path-visited set.
func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}

		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visited[real] {
			return filepath.SkipDir
		}
		visited[real] = true

		if w.exclude.IsExcluded(path) {
			return filepath.SkipDir
		}

		if err := w.fsw.Add(path); err != nil {
			log.Printf("watch: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

// processEvents consumes fsnotify's own channels, maps each raw event
// to a FileEvent, and forwards it to the unbounded relay. Newly created
// directories get a watch registered immediately so their own future
// contents are observed.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			close(w.in)
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				close(w.in)
				return
			}
			w.handleEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				continue
			}
			log.Printf("watch: fsnotify error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	kind, ok := mapOp(ev.Op)
	if !ok {
		return
	}
	if w.exclude.IsExcluded(ev.Name) {
		return
	}

	if kind == Created {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			_ = w.addWatches(ev.Name)
		}
	}

	if !w.debouncer.ShouldProcess(ev.Name, kind) {
		debug.LogWatch("debounced %s (kind=%d)", ev.Name, kind)
		return
	}

	select {
	case w.in <- FileEvent{Path: ev.Name, Kind: kind}:
	case <-w.ctx.Done():
	}
}

// mapOp translates an fsnotify.Op bitmask into the C12 taxonomy.
// fsnotify never reports more than one primary bit per event in
// practice; when several are set the most specific wins. Any other
// operation, such as a Chmod-only event, is dropped.
func mapOp(op fsnotify.Op) (EventKind, bool) {
	switch {
	case op&fsnotify.Create != 0:
		return Created, true
	case op&fsnotify.Remove != 0:
		return Deleted, true
	case op&fsnotify.Rename != 0:
		return Renamed, true
	case op&fsnotify.Write != 0:
		return Modified, true
	default:
		return 0, false
	}
}

// relay drains the bounded in channel into an internal unbounded queue
// so a slow consumer of Events() never backpressures fsnotify's
// delivery loop.
func (w *Watcher) relay() {
	defer w.wg.Done()
	defer close(w.out)

	var queue []FileEvent
	for {
		if len(queue) == 0 {
			ev, ok := <-w.in
			if !ok {
				return
			}
			queue = append(queue, ev)
			continue
		}

		select {
		case ev, ok := <-w.in:
			if !ok {
				w.drain(queue)
				return
			}
			queue = append(queue, ev)
		case w.out <- queue[0]:
			queue = queue[1:]
		}
	}
}

func (w *Watcher) drain(queue []FileEvent) {
	for _, ev := range queue {
		w.out <- ev
	}
}
