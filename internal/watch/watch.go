// Package watch adapts filesystem change events to the explorer's recompute
// entry point. The core stays event-agnostic: this package only observes the
// root schema and its bound import files, debounces bursts, and invokes the
// callback the host registered. "Latest wins" semantics are enforced by the
// provider's generation counter, not here.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"xsd-navigator/internal/sortutil"
)

// Watcher observes a set of schema files for modification.
type Watcher struct {
	fsw      *fsnotify.Watcher
	paths    map[string]bool
	debounce time.Duration
	log      *log.Logger
}

// New creates a watcher over the given files. Directories containing the
// files are watched (many editors replace files on save, which unwatches a
// direct file watch); events are filtered back to the listed paths.
func New(paths []string, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.Default()
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fsw: fsw, paths: make(map[string]bool), debounce: debounce, log: logger}

	var dirs []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		w.paths[abs] = true
		dirs = append(dirs, filepath.Dir(abs))
	}
	for _, dir := range sortutil.UniqueSorted(dirs) {
		if err := fsw.Add(dir); err != nil {
			logger.Warn("watch failed for directory", "dir", dir, "err", err)
		}
	}
	return w, nil
}

// Run blocks, invoking onChange after each debounced burst of relevant
// events, until the context is canceled or the watcher closes.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	var timer *time.Timer
	fired := make(chan struct{}, 1)

	arm := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			select {
			case fired <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-fired:
			onChange()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("schema change observed", "path", ev.Name, "op", ev.Op.String())
			arm()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "err", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error { return w.fsw.Close() }

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return w.paths[abs]
}
