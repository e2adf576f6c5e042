package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/alnah/go-mdmerge"
	"github.com/alnah/go-mdmerge/internal/crawl"
	"github.com/alnah/go-mdmerge/internal/watch"
)

// outputSet holds the files the last merge wrote, so that writing them does
// not trigger another merge.
type outputSet struct {
	mu    sync.Mutex
	paths map[string]bool
}

func newOutputSet(paths []string) *outputSet {
	s := &outputSet{}
	s.replace(paths)
	return s
}

func (s *outputSet) replace(paths []string) {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	s.mu.Lock()
	s.paths = set
	s.mu.Unlock()
}

func (s *outputSet) contains(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paths[path]
}

// watchAndMerge merges again after every batch of changes under the
// repository root, until ctx is canceled. A failed merge is reported and
// watching goes on.
func watchAndMerge(ctx context.Context, m *mdmerge.Merger, p *runParams, written []string, logger *slog.Logger, env *Environment) error {
	root, err := filepath.Abs(p.input.RepoRoot)
	if err != nil {
		return err
	}
	excludes, err := crawl.CompileExcludes(p.excludes)
	if err != nil {
		return fmt.Errorf("%w: %v", mdmerge.ErrInvalidExclude, err)
	}

	outputs := newOutputSet(written)
	w, err := watch.New(root,
		watch.WithExcludes(excludes...),
		watch.WithIgnore(func(rel string) bool {
			return outputs.contains(filepath.Join(root, filepath.FromSlash(rel)))
		}),
		watch.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if !p.quiet {
		fmt.Fprintf(env.Stderr, "Watching %s (Ctrl+C to stop)\n", root)
	}

	err = w.Run(ctx, func(ctx context.Context, paths []string) {
		logger.Info("change detected", "files", len(paths), "first", paths[0])
		written, err := mergeOnce(ctx, m, p, env)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, p.opts.Renderer.Credentials != nil))
			return
		}
		outputs.replace(written)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
