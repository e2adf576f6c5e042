// Package watch reports batches of file changes under a directory tree.
//
// Events are debounced: a burst of writes produces one callback with every
// path touched during the burst. Callbacks never overlap.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// DefaultDebounce is the quiet period before a batch is delivered.
const DefaultDebounce = 300 * time.Millisecond

// ErrWatch is returned when the underlying file watcher fails.
var ErrWatch = errors.New("watch failed")

// defaultSkipDirs are never descended into.
var defaultSkipDirs = []string{".git", ".hg", ".svn", "node_modules"}

// Watcher watches a directory tree recursively.
type Watcher struct {
	root     string
	debounce time.Duration
	excludes []glob.Glob
	ignore   func(rel string) bool
	logger   *slog.Logger

	fsw *fsnotify.Watcher

	pendingMu sync.Mutex
	pending   map[string]struct{}
	timer     *time.Timer
	batches   chan []string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExcludes drops events whose root-relative slash path matches a glob.
func WithExcludes(globs ...glob.Glob) Option {
	return func(w *Watcher) {
		w.excludes = append(w.excludes, globs...)
	}
}

// WithIgnore drops events for which fn returns true. fn receives the
// root-relative slash path.
func WithIgnore(fn func(rel string) bool) Option {
	return func(w *Watcher) {
		w.ignore = fn
	}
}

// WithLogger sets the logger for watcher diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a Watcher over root and registers every directory below it.
// Close must be called to release the watcher.
func New(root string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatch, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatch, err)
	}

	w := &Watcher{
		root:     abs,
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
		fsw:      fsw,
		pending:  make(map[string]struct{}),
		batches:  make(chan []string, 1),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addRecursive(abs); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("%w: %v", ErrWatch, err)
	}
	return w, nil
}

// Run delivers change batches to onChange until ctx is done or the watcher
// is closed. Paths are root-relative, slash-separated and sorted.
// Events arriving while onChange runs are coalesced into the next batch.
// Run returns only after a running onChange has returned.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, paths []string)) error {
	done := make(chan struct{})
	var wg sync.WaitGroup
	defer func() {
		close(done)
		wg.Wait()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case batch := <-w.batches:
				onChange(ctx, batch)
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// Close stops the watcher. Pending changes are discarded.
func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsw.Close()
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.skipDir(event.Name) {
				return
			}
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	rel, ok := w.relative(event.Name)
	if !ok || w.excluded(rel) {
		return
	}
	w.logger.Debug("file changed", "path", rel, "op", event.Op.String())
	w.schedule(rel)
}

func (w *Watcher) schedule(rel string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[rel] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	sort.Strings(paths)

	// A batch is already queued: merge into it instead of blocking the timer.
	select {
	case w.batches <- paths:
	default:
		select {
		case queued := <-w.batches:
			paths = mergeSorted(queued, paths)
		default:
		}
		select {
		case w.batches <- paths:
		default:
			w.logger.Debug("dropping change batch", "paths", len(paths))
		}
	}
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.skipDir(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) skipDir(path string) bool {
	base := filepath.Base(path)
	for _, name := range defaultSkipDirs {
		if base == name {
			return true
		}
	}
	rel, ok := w.relative(path)
	return !ok || w.excluded(rel)
}

func (w *Watcher) excluded(rel string) bool {
	for _, g := range w.excludes {
		if g.Match(rel) {
			return true
		}
	}
	return w.ignore != nil && w.ignore(rel)
}

// relative returns the root-relative slash path, or false for paths outside
// the root.
func (w *Watcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == ".." || (len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func mergeSorted(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, p := range list {
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				out = append(out, p)
			}
		}
	}
	sort.Strings(out)
	return out
}
