package pipeline

import (
	"context"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrRenderFailure indicates the Markdown renderer rejected or failed on a page.
var ErrRenderFailure = errors.New("render failed")

// Credentials authenticate against an online renderer.
// Token takes precedence over Username/Password.
type Credentials struct {
	Username string
	Password string
	Token    string
}

// CredentialProvider supplies credentials on demand.
// Implementations are expected to memoize: the renderer may call it for
// every page.
type CredentialProvider interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// RendererOptions are the options handed to a MarkdownRenderer.
// Image embedding is post-processing and is not part of these options.
type RendererOptions struct {
	Offline     bool
	Credentials CredentialProvider // nil = anonymous
}

// MarkdownRenderer converts one Markdown file into an HTML fragment holding
// an <article> container with a level-1 heading.
type MarkdownRenderer interface {
	RenderPage(ctx context.Context, path string, opts RendererOptions) (string, error)
}

// articleTemplate wraps a rendered fragment the way GitHub presents a file.
const articleTemplate = `<article class="markdown-body entry-content">
%s
</article>`

// wrapArticle ensures the fragment has a level-1 heading, synthesizing one
// from the file name when the document has none, and wraps it in an article.
func wrapArticle(fragment, path string) string {
	if !hasLevelOneHeading(fragment) {
		fragment = "<h1>" + html.EscapeString(pageTitle(path)) + "</h1>\n" + fragment
	}
	return fmt.Sprintf(articleTemplate, fragment)
}

// hasLevelOneHeading reports whether the fragment contains an <h1> element.
func hasLevelOneHeading(fragment string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return false
	}
	return doc.Find("h1").Length() > 0
}

// pageTitle derives a heading from a file name: "getting-started.md" -> "getting-started".
func pageTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
