// Package watch re-runs a sync whenever files in its input directories
// change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"go.dot.industries/workspace-env/internal/fsys"
)

// DefaultDebounce coalesces bursts of file events into a single run.
const DefaultDebounce = 250 * time.Millisecond

// Cycle is what one run reports back to the watcher: the root-relative
// directories to watch next and the root-relative files it wrote. Events on
// written files never trigger a run.
type Cycle struct {
	Watch   []string
	Written []string
}

// RunFunc performs one sync.
type RunFunc func(ctx context.Context) (Cycle, error)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period after the last event before a run.
// Values less than or equal to zero are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher runs a RunFunc once and then again after every relevant change.
type Watcher struct {
	files    *fsys.FS
	run      RunFunc
	debounce time.Duration

	mu      sync.Mutex
	runs    int
	lastErr error
	watched map[string]bool
	written map[string]bool

	// onCycle, when set, is called after each run once watches are updated.
	onCycle func(n int)
}

// New creates a Watcher over a host-backed project filesystem.
func New(files *fsys.FS, run RunFunc, opts ...Option) *Watcher {
	w := &Watcher{
		files:    files,
		run:      run,
		debounce: DefaultDebounce,
		watched:  make(map[string]bool),
		written:  make(map[string]bool),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Runs returns how many runs have completed and the error of the latest.
func (w *Watcher) Runs() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.runs, w.lastErr
}

// Run performs an initial run and then watches until ctx is cancelled. A
// failed run is logged and watching continues. It returns nil on
// cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: creating watcher: %w", err)
	}
	defer fsw.Close()

	w.cycle(ctx, fsw)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			log.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("change detected")
			timer.Reset(w.debounce)
			pending = timer.C
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		case <-pending:
			pending = nil
			w.cycle(ctx, fsw)
		}
	}
}

// cycle runs once and updates the watched directories.
func (w *Watcher) cycle(ctx context.Context, fsw *fsnotify.Watcher) {
	c, err := w.run(ctx)
	if err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("sync failed, waiting for changes")
	}

	w.mu.Lock()
	w.runs++
	n := w.runs
	w.lastErr = err
	w.written = w.resolveAll(c.Written)
	w.mu.Unlock()

	if len(c.Watch) > 0 {
		w.rewatch(fsw, c.Watch)
	}

	if w.onCycle != nil {
		w.onCycle(n)
	}
}

// rewatch adds new directories and removes those no longer needed.
// Directories that do not exist yet are skipped.
func (w *Watcher) rewatch(fsw *fsnotify.Watcher, dirs []string) {
	want := w.resolveAll(dirs)

	for dir := range w.watched {
		if want[dir] {
			continue
		}
		if err := fsw.Remove(dir); err != nil {
			log.Debug().Err(err).Str("path", dir).Msg("unwatch failed")
		}
		delete(w.watched, dir)
	}

	for dir := range want {
		if w.watched[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			log.Debug().Err(err).Str("path", dir).Msg("cannot watch directory")
			continue
		}
		w.watched[dir] = true
		log.Debug().Str("path", dir).Msg("watching")
	}
}

// relevant drops permission-only events and events on files the last run
// wrote.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	return !w.written[filepath.Clean(ev.Name)]
}

func (w *Watcher) resolveAll(rel []string) map[string]bool {
	out := make(map[string]bool, len(rel))
	for _, r := range rel {
		p, err := w.files.OSPath(r)
		if err != nil {
			log.Debug().Err(err).Str("path", r).Msg("cannot resolve path")
			continue
		}
		out[filepath.Clean(p)] = true
	}
	return out
}
