package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// ErrCoverRender indicates the cover template could not be executed.
var ErrCoverRender = errors.New("cover template rendering failed")

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent string, sheets ...string) string
}

// CSSInjection injects stylesheets as <style> blocks into HTML content.
type CSSInjection struct{}

// InjectCSS inserts one <style> block per non-empty sheet, in order.
// Tries </head> first, then <body>, then prepends to the HTML.
// CSS content is sanitized so it cannot close the style element.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent string, sheets ...string) string {
	if ctx.Err() != nil {
		return htmlContent
	}

	var block strings.Builder
	for _, css := range sheets {
		if strings.TrimSpace(css) == "" {
			continue
		}
		block.WriteString("<style>")
		block.WriteString(SanitizeCSS(css))
		block.WriteString("</style>")
	}
	if block.Len() == 0 {
		return htmlContent
	}
	styles := block.String()
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styles + htmlContent[idx:]
	}
	if pos := afterBodyOpen(htmlContent, lowerHTML); pos != -1 {
		return htmlContent[:pos] + styles + htmlContent[pos:]
	}
	return styles + htmlContent
}

// SanitizeCSS escapes sequences that could break out of a <style> block.
func SanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// afterBodyOpen returns the offset just past the <body ...> tag, or -1.
func afterBodyOpen(htmlContent, lowerHTML string) int {
	idx := strings.Index(lowerHTML, "<body")
	if idx == -1 {
		return -1
	}
	closeIdx := strings.Index(htmlContent[idx:], ">")
	if closeIdx == -1 {
		return -1
	}
	return idx + closeIdx + 1
}

// CoverData holds the cover page of a PDF export.
type CoverData struct {
	Title string
	Image template.URL // data URI of the cover image
}

// CoverInjector defines the contract for cover injection into HTML.
type CoverInjector interface {
	InjectCover(ctx context.Context, htmlContent string, data *CoverData) (string, error)
}

// CoverInjection renders and injects a cover page into HTML content.
type CoverInjection struct {
	tmpl *template.Template
}

// NewCoverInjection creates a CoverInjection from template content.
func NewCoverInjection(tmplContent string) (*CoverInjection, error) {
	tmpl, err := template.New("cover").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing cover template: %w", err)
	}
	return &CoverInjection{tmpl: tmpl}, nil
}

// InjectCover renders the cover template and injects it right after <body>.
// A nil data leaves htmlContent unchanged.
func (c *CoverInjection) InjectCover(ctx context.Context, htmlContent string, data *CoverData) (string, error) {
	if data == nil {
		return htmlContent, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCoverRender, err)
	}
	cover := buf.String()

	if pos := afterBodyOpen(htmlContent, strings.ToLower(htmlContent)); pos != -1 {
		return htmlContent[:pos] + cover + htmlContent[pos:], nil
	}
	return cover + htmlContent, nil
}
