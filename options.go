package mdmerge

import (
	"log/slog"
	"time"

	"github.com/alnah/go-mdmerge/internal/pipeline"
)

// defaultTimeout bounds a whole merge, PDF export included.
const defaultTimeout = 2 * time.Minute

// Option configures a Merger.
type Option func(*Merger)

// mergerConfig holds internal configuration for Merger.
type mergerConfig struct {
	timeout       time.Duration
	cacheDir      string
	assetPath     string
	githubURL     string
	githubContext string
	excludes      []string
}

// WithTimeout sets the merge timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mdmerge: WithTimeout duration must be positive")
	}
	return func(m *Merger) {
		m.cfg.timeout = d
	}
}

// WithCacheDir sets the base directory of the render cache.
// Empty means the user cache directory.
func WithCacheDir(dir string) Option {
	return func(m *Merger) {
		m.cfg.cacheDir = dir
	}
}

// WithLogger sets the logger. By default the Merger logs nothing.
func WithLogger(l *slog.Logger) Option {
	return func(m *Merger) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMarkdownRenderer replaces both built-in Markdown renderers.
// RenderOptions.Renderer.Offline is still part of the cache fingerprint.
func WithMarkdownRenderer(r pipeline.MarkdownRenderer) Option {
	return func(m *Merger) {
		m.markdown = r
	}
}

// WithPDFExporter replaces the headless Chrome exporter.
func WithPDFExporter(e PDFExporter) Option {
	return func(m *Merger) {
		m.exporter = e
	}
}

// WithGitHubAPI sets the GitHub API base URL (GitHub Enterprise) and the
// "owner/repository" context used to resolve issue and mention links.
// Empty values keep the defaults.
func WithGitHubAPI(baseURL, repoContext string) Option {
	return func(m *Merger) {
		m.cfg.githubURL = baseURL
		m.cfg.githubContext = repoContext
	}
}

// WithAssetPath loads styles and templates from dir, falling back to the
// embedded assets for anything missing.
func WithAssetPath(dir string) Option {
	return func(m *Merger) {
		m.cfg.assetPath = dir
	}
}

// WithExcludes sets glob patterns over page ids. Links to matching pages are
// left as written and the pages are not merged.
func WithExcludes(patterns ...string) Option {
	return func(m *Merger) {
		m.cfg.excludes = append(m.cfg.excludes, patterns...)
	}
}
