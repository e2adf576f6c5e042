package crawl

import (
	"context"
	"log/slog"
)

// State is the lifecycle stage of a Crawler.
type State int

// Crawler states.
const (
	StateIdle State = iota
	StateRunning
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Stats counts what a run did.
type Stats struct {
	Pages     int // pages assembled
	CacheHits int // pages served from the render cache
	Renders   int // pages sent to the Markdown renderer
}

// Crawler walks the page-link graph breadth-first from an entry page.
// A Crawler runs once.
type Crawler struct {
	renderer  FragmentRenderer
	assembler *Assembler
	logger    *slog.Logger
	state     State
	stats     Stats
}

// NewCrawler creates a Crawler. A nil logger discards output.
func NewCrawler(renderer FragmentRenderer, assembler *Assembler, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Crawler{renderer: renderer, assembler: assembler, logger: logger}
}

// State returns the current lifecycle stage.
func (c *Crawler) State() State {
	return c.state
}

// Stats returns the counters of the run so far.
func (c *Crawler) Stats() Stats {
	return c.stats
}

// Run renders and assembles every page reachable from entry, returning the
// merged document and the sorted asset paths. The first error aborts the
// run; nothing partial is returned.
func (c *Crawler) Run(ctx context.Context, entry string) (*Document, []string, error) {
	if c.state != StateIdle {
		return nil, nil, ErrAlreadyRun
	}
	id, err := Normalize(entry)
	if err != nil {
		return nil, nil, err
	}

	c.state = StateRunning
	defer func() { c.state = StateDone }()

	c.assembler.Seed(id)
	queue := NewQueue()
	queue.Add(id)

	var assets []string
	for queue.HasNext() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		page := queue.Next()

		frag, err := c.renderer.Render(ctx, page)
		if err != nil {
			return nil, nil, &PageError{Page: page, Err: err}
		}
		if frag.Cached {
			c.stats.CacheHits++
			c.logger.Debug("page cached", "page", page)
		} else {
			c.stats.Renders++
			c.logger.Debug("page rendered", "page", page)
		}

		found, err := c.assembler.Ingest(page, frag)
		if err != nil {
			return nil, nil, &PageError{Page: page, Err: err}
		}
		for _, next := range found {
			queue.Add(next)
		}
		assets = append(assets, frag.Images...)
		c.stats.Pages++
	}

	doc, set := c.assembler.Finalize(assets)
	c.logger.Info("merge complete",
		"pages", c.stats.Pages,
		"cache_hits", c.stats.CacheHits,
		"renders", c.stats.Renders,
		"assets", len(set),
	)
	return doc, set, nil
}
