package crawl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-mdmerge/internal/cache"
	"github.com/alnah/go-mdmerge/internal/fileutil"
	"github.com/alnah/go-mdmerge/internal/pipeline"
)

// PageFragment is one rendered page, ready for assembly.
type PageFragment struct {
	Heading *goquery.Selection // first h1 of the article
	Content *goquery.Selection // the article container
	Links   *goquery.Selection // every <a> within the article, in order
	Images  []string           // absolute paths of non-embedded local images
	Cached  bool               // served from the render cache
}

// FragmentRenderer materializes a page by id.
type FragmentRenderer interface {
	Render(ctx context.Context, pageID string) (*PageFragment, error)
}

// PageRendererConfig wires a PageRenderer.
type PageRendererConfig struct {
	RepoRoot    string
	Cache       *cache.Store
	Markdown    pipeline.MarkdownRenderer
	Options     pipeline.RendererOptions
	EmbedImages bool
}

// PageRenderer renders pages through the render cache.
type PageRenderer struct {
	cfg PageRendererConfig
}

// Compile-time interface check.
var _ FragmentRenderer = (*PageRenderer)(nil)

// NewPageRenderer creates a PageRenderer.
func NewPageRenderer(cfg PageRendererConfig) *PageRenderer {
	return &PageRenderer{cfg: cfg}
}

// Render returns the fragment of pageID, rendering it on a cache miss and
// reading it back from the cache otherwise.
func (r *PageRenderer) Render(ctx context.Context, pageID string) (*PageFragment, error) {
	src := SourcePath(r.cfg.RepoRoot, pageID)
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, pageID)
		}
		return nil, fmt.Errorf("stat %s: %w", src, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, pageID)
	}

	var text string
	cached := !r.cfg.Cache.IsStale(pageID, info.ModTime())
	if cached {
		text, err = r.cfg.Cache.Read(pageID)
	} else {
		text, err = r.renderFresh(ctx, pageID, src)
	}
	if err != nil {
		return nil, err
	}

	frag, err := r.extract(pageID, text)
	if err != nil {
		return nil, err
	}
	frag.Cached = cached
	return frag, nil
}

// renderFresh calls the Markdown renderer, embeds images when enabled and
// stores the article in the cache.
func (r *PageRenderer) renderFresh(ctx context.Context, pageID, src string) (string, error) {
	rendered, err := r.cfg.Markdown.RenderPage(ctx, src, r.cfg.Options)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, pipeline.ErrRenderFailure) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", pipeline.ErrRenderFailure, err)
	}

	article, err := parseArticle(rendered)
	if err != nil {
		return "", err
	}

	if r.cfg.EmbedImages {
		if err := r.embedImages(pageID, article); err != nil {
			return "", err
		}
	}

	text, err := goquery.OuterHtml(article)
	if err != nil {
		return "", fmt.Errorf("serializing %s: %w", pageID, err)
	}
	if err := r.cfg.Cache.Write(pageID, text); err != nil {
		return "", err
	}
	return text, nil
}

// parseArticle returns the article container of rendered HTML. Output
// without one is the renderer's error page; its h1 carries the message.
func parseArticle(rendered string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing output: %v", pipeline.ErrRenderFailure, err)
	}
	article := doc.Find("article").First()
	if article.Length() == 0 {
		msg := strings.TrimSpace(doc.Find("h1").First().Text())
		if msg == "" {
			msg = "no article in renderer output"
		}
		return nil, fmt.Errorf("%w: %s", pipeline.ErrRenderFailure, msg)
	}
	return article, nil
}

// embedImages inlines every local image of the article as a data URI and
// records the original reference as its alt text.
func (r *PageRenderer) embedImages(pageID string, article *goquery.Selection) error {
	pageDir := filepath.Dir(SourcePath(r.cfg.RepoRoot, pageID))

	var embedErr error
	article.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, ok := img.Attr("src")
		if !ok || !pipeline.IsLocalReference(src) {
			return true
		}
		ref := pipeline.Unescape(src)
		if !fileutil.IsUnder(pipeline.ResolveImage(pageDir, ref), r.cfg.RepoRoot) {
			embedErr = fmt.Errorf("%w: image %q in %s", ErrOutsideRepo, src, pageID)
			return false
		}
		embedded, err := pipeline.EmbedImage(pageDir, ref)
		if err != nil {
			if errors.Is(err, pipeline.ErrImageNotFound) {
				err = fmt.Errorf("%w: %w", ErrSourceNotFound, err)
			}
			embedErr = err
			return false
		}
		img.SetAttr("src", embedded.Src)
		img.SetAttr("alt", embedded.Alt)
		return true
	})
	return embedErr
}

// extract parses the article text and collects heading, links and, when
// images are not embedded, their absolute paths.
func (r *PageRenderer) extract(pageID, text string) (*PageFragment, error) {
	article, err := parseArticle(text)
	if err != nil {
		return nil, err
	}

	heading := article.Find("h1").First()
	if heading.Length() == 0 {
		return nil, fmt.Errorf("%w: %s has no level-1 heading", pipeline.ErrRenderFailure, pageID)
	}

	frag := &PageFragment{
		Heading: heading,
		Content: article,
		Links:   article.Find("a"),
	}
	if r.cfg.EmbedImages {
		return frag, nil
	}

	images, err := r.collectImages(pageID, article)
	if err != nil {
		return nil, err
	}
	frag.Images = images
	return frag, nil
}

// collectImages resolves local image references. For pages below the root,
// references are rewritten relative to the repository root so they match
// the layout of copied assets.
func (r *PageRenderer) collectImages(pageID string, article *goquery.Selection) ([]string, error) {
	pageDir := filepath.Dir(SourcePath(r.cfg.RepoRoot, pageID))
	nested := path.Dir(pageID) != "."

	var (
		images  []string
		walkErr error
	)
	article.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, ok := img.Attr("src")
		if !ok || !pipeline.IsLocalReference(src) {
			return true
		}
		abs, err := pipeline.LocateImage(pageDir, pipeline.Unescape(src))
		if err != nil {
			if errors.Is(err, pipeline.ErrImageNotFound) {
				err = fmt.Errorf("%w: image %q in %s", ErrSourceNotFound, src, pageID)
			}
			walkErr = err
			return false
		}
		if !fileutil.IsUnder(abs, r.cfg.RepoRoot) {
			walkErr = fmt.Errorf("%w: image %q in %s", ErrOutsideRepo, src, pageID)
			return false
		}
		images = append(images, abs)

		if nested {
			rel, err := filepath.Rel(r.cfg.RepoRoot, abs)
			if err != nil {
				walkErr = fmt.Errorf("relativizing %s: %w", abs, err)
				return false
			}
			img.SetAttr("src", (&url.URL{Path: filepath.ToSlash(rel)}).EscapedPath())
		}
		return true
	})
	return images, walkErr
}
