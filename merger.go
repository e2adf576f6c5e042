package mdmerge

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/alnah/go-mdmerge/internal/assets"
	"github.com/alnah/go-mdmerge/internal/cache"
	"github.com/alnah/go-mdmerge/internal/crawl"
	"github.com/alnah/go-mdmerge/internal/pipeline"
	"github.com/alnah/go-mdmerge/internal/yamlutil"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownRenderer = (*pipeline.GoldmarkRenderer)(nil)
	_ pipeline.MarkdownRenderer = (*pipeline.GitHubRenderer)(nil)
	_ pipeline.CSSInjector      = (*pipeline.CSSInjection)(nil)
	_ pipeline.CoverInjector    = (*pipeline.CoverInjection)(nil)
	_ crawl.FragmentRenderer    = (*crawl.PageRenderer)(nil)
)

// Merger merges a tree of cross-linked Markdown pages into one document.
// Create with NewMerger, call Merge for each run, and Close when done.
// A Merger runs one merge at a time.
type Merger struct {
	cfg      mergerConfig
	logger   *slog.Logger
	excludes []glob.Glob

	markdown pipeline.MarkdownRenderer // replaces offline and online renderers when set
	offline  pipeline.MarkdownRenderer
	online   *pipeline.GitHubRenderer

	assetLoader   assets.AssetLoader
	cssInjector   pipeline.CSSInjector
	coverInjector pipeline.CoverInjector
	exporter      PDFExporter
}

// NewMerger creates a Merger with default configuration.
// Returns an error if the asset path or an exclude pattern is invalid.
func NewMerger(opts ...Option) (*Merger, error) {
	m := &Merger{
		cfg:         mergerConfig{timeout: defaultTimeout},
		logger:      slog.New(slog.DiscardHandler),
		offline:     pipeline.NewGoldmarkRenderer(),
		cssInjector: &pipeline.CSSInjection{},
	}

	for _, opt := range opts {
		opt(m)
	}

	var ghOpts []pipeline.GitHubOption
	if m.cfg.githubURL != "" {
		ghOpts = append(ghOpts, pipeline.WithBaseURL(m.cfg.githubURL))
	}
	if m.cfg.githubContext != "" {
		ghOpts = append(ghOpts, pipeline.WithRepoContext(m.cfg.githubContext))
	}
	m.online = pipeline.NewGitHubRenderer(ghOpts...)

	resolver, err := assets.NewAssetResolver(m.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	m.assetLoader = resolver

	m.excludes, err = crawl.CompileExcludes(m.cfg.excludes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExclude, err)
	}

	coverTmpl, err := m.assetLoader.LoadTemplate(assets.CoverTemplateName)
	if err != nil {
		return nil, fmt.Errorf("loading cover template: %w", err)
	}
	m.coverInjector, err = pipeline.NewCoverInjection(coverTmpl)
	if err != nil {
		return nil, fmt.Errorf("initializing cover injector: %w", err)
	}

	// Create PDF exporter if not injected (e.g., by tests)
	if m.exporter == nil {
		m.exporter = newRodExporter(m.cfg.timeout)
	}

	return m, nil
}

// Merge crawls input from its entry page and returns the merged document.
// Pages whose source is older than their cache entry are not re-rendered,
// unless opts differ from the previous run on the same repository.
func (m *Merger) Merge(ctx context.Context, input Input, opts RenderOptions) (*MergeResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.timeout)
	defer cancel()

	repoRoot, err := filepath.Abs(input.RepoRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving repository root: %w", err)
	}
	entry := input.Entry
	if entry == "" {
		entry = DefaultEntry
	}

	store, err := m.openCache(repoRoot, opts)
	if err != nil {
		return nil, err
	}

	css := normalizeStyles(opts.Output.CSS)
	asmOpts := []crawl.AssemblerOption{crawl.WithExcludes(m.excludes...)}
	if slices.Contains(css, BuiltinStyle) {
		style, err := m.assetLoader.LoadStyle(assets.DefaultStyleName)
		if err != nil {
			return nil, fmt.Errorf("loading default style: %w", err)
		}
		asmOpts = append(asmOpts, crawl.WithInlineStyle(BuiltinStyle, style))
	}
	asm, err := crawl.NewAssembler(repoRoot, css, asmOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}
	renderer := crawl.NewPageRenderer(crawl.PageRendererConfig{
		RepoRoot: repoRoot,
		Cache:    store,
		Markdown: m.rendererFor(opts),
		Options: pipeline.RendererOptions{
			Offline:     opts.Renderer.Offline,
			Credentials: opts.Renderer.Credentials,
		},
		EmbedImages: opts.Post.EmbedImages,
	})

	crawler := crawl.NewCrawler(renderer, asm, m.logger)
	doc, assetPaths, err := crawler.Run(ctx, entry)
	if err != nil {
		return nil, err
	}

	htmlContent, err := doc.HTML()
	if err != nil {
		return nil, fmt.Errorf("serializing document: %w", err)
	}

	stats := crawler.Stats()
	result := &MergeResult{
		HTML:   []byte(htmlContent),
		Title:  doc.Title(),
		Pages:  doc.Pages(),
		Assets: assetPaths,
		Stats:  Stats(stats),
	}

	if opts.exportsPDF() {
		printHTML, err := m.preparePrint(ctx, htmlContent, repoRoot, doc.Title(), opts)
		if err != nil {
			return nil, err
		}
		result.PDF, err = m.exporter.ExportPDF(ctx, printHTML, opts.Output.Page)
		if err != nil {
			return nil, fmt.Errorf("exporting PDF: %w", err)
		}
		m.logger.Debug("pdf exported", "bytes", len(result.PDF))
	}

	return result, nil
}

// Close releases resources (headless Chrome browser).
func (m *Merger) Close() error {
	if m.exporter != nil {
		return m.exporter.Close()
	}
	return nil
}

// openCache opens the render cache of repoRoot and invalidates it when opts
// changed since the previous run.
func (m *Merger) openCache(repoRoot string, opts RenderOptions) (*cache.Store, error) {
	store, err := cache.Open(repoRoot, m.cfg.cacheDir)
	if err != nil {
		return nil, err
	}

	fp, err := yamlutil.Marshal(opts.fingerprint(m.online))
	if err != nil {
		return nil, fmt.Errorf("encoding options fingerprint: %w", err)
	}
	valid, err := store.CheckFingerprint(fp)
	if err != nil {
		return nil, err
	}
	if !valid {
		m.logger.Info("options changed, rebuilding every page", "cache", store.Root())
	}
	return store, nil
}

// rendererFor picks the Markdown renderer for opts.
func (m *Merger) rendererFor(opts RenderOptions) pipeline.MarkdownRenderer {
	switch {
	case m.markdown != nil:
		return m.markdown
	case opts.Renderer.Offline:
		return m.offline
	default:
		return m.online
	}
}

// normalizeStyles trims stylesheet references, spells the builtin marker
// canonically and drops duplicates, keeping the first occurrence.
func normalizeStyles(css []string) []string {
	out := make([]string, 0, len(css))
	for _, ref := range css {
		ref = strings.TrimSpace(ref)
		if strings.EqualFold(ref, BuiltinStyle) {
			ref = BuiltinStyle
		}
		if ref != "" && !slices.Contains(out, ref) {
			out = append(out, ref)
		}
	}
	return out
}
