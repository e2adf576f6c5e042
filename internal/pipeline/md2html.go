package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// GoldmarkRenderer renders Markdown files locally with Goldmark (offline mode).
type GoldmarkRenderer struct {
	md           goldmark.Markdown
	preprocessor MarkdownPreprocessor
}

// Compile-time interface check.
var _ MarkdownRenderer = (*GoldmarkRenderer)(nil)

// NewGoldmarkRenderer creates a GoldmarkRenderer with GFM extensions,
// footnotes and syntax highlighting.
func NewGoldmarkRenderer() *GoldmarkRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(), // in-page #heading links keep working
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)
	return &GoldmarkRenderer{md: md, preprocessor: &CommonMarkPreprocessor{}}
}

// RenderPage reads the Markdown file at path and returns an article fragment.
// Goldmark has no context support, so conversion runs in a goroutine and
// the call returns early on cancellation.
func (r *GoldmarkRenderer) RenderPage(ctx context.Context, path string, _ RendererOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	source, err := os.ReadFile(path) // #nosec G304 -- path resolved under the repo root
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	content := r.preprocessor.PreprocessMarkdown(ctx, string(source))

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %s: %v", ErrRenderFailure, path, err)}
			return
		}
		fragment := ConvertMarkPlaceholders(buf.String())
		done <- result{html: wrapArticle(fragment, path)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
