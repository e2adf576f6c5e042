package mdmerge

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-mdmerge/internal/assets"
	"github.com/alnah/go-mdmerge/internal/fileutil"
	"github.com/alnah/go-mdmerge/internal/pipeline"
)

// preparePrint turns the merged document into a self-contained page for
// headless Chrome: local stylesheets are inlined, the print style and the
// optional cover are added, and relative resources point at the repository.
func (m *Merger) preparePrint(ctx context.Context, htmlContent, repoRoot, title string, opts RenderOptions) (string, error) {
	htmlContent, sheets, err := inlineLocalStyles(htmlContent)
	if err != nil {
		return "", err
	}

	printStyle, err := m.assetLoader.LoadStyle(assets.PrintStyleName)
	if err != nil {
		return "", fmt.Errorf("loading print style: %w", err)
	}
	htmlContent = m.cssInjector.InjectCSS(ctx, htmlContent, append(sheets, printStyle)...)

	if opts.Output.Cover != "" {
		cover, err := coverData(opts.Output.Cover, title)
		if err != nil {
			return "", err
		}
		htmlContent, err = m.coverInjector.InjectCover(ctx, htmlContent, cover)
		if err != nil {
			return "", fmt.Errorf("injecting cover: %w", err)
		}
	}

	htmlContent, err = pipeline.RewriteRelativePaths(htmlContent, repoRoot)
	if err != nil {
		return "", fmt.Errorf("rewriting relative paths: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return htmlContent, nil
}

// inlineLocalStyles removes stylesheet links to local files and returns their
// contents in document order. Remote stylesheets stay linked.
func inlineLocalStyles(htmlContent string) (string, []string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", nil, fmt.Errorf("parsing document: %w", err)
	}

	var sheets []string
	var readErr error
	doc.Find(`link[rel="stylesheet"]`).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if href == "" || fileutil.IsURL(href) {
			return true
		}
		data, err := os.ReadFile(filepath.Clean(href)) // #nosec G304 -- stylesheet chosen by the caller
		if err != nil {
			readErr = fmt.Errorf("reading stylesheet %s: %w", href, err)
			return false
		}
		sheets = append(sheets, string(data))
		link.Remove()
		return true
	})
	if readErr != nil {
		return "", nil, readErr
	}
	if len(sheets) == 0 {
		return htmlContent, nil, nil
	}

	out, err := doc.Html()
	if err != nil {
		return "", nil, fmt.Errorf("serializing document: %w", err)
	}
	return out, sheets, nil
}

// coverData embeds the cover image as a data URI.
func coverData(imagePath, title string) (*pipeline.CoverData, error) {
	abs, err := filepath.Abs(imagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCoverNotFound, err)
	}
	img, err := pipeline.EmbedImage(filepath.Dir(abs), filepath.Base(abs))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCoverNotFound, err)
	}
	return &pipeline.CoverData{
		Title: title,
		Image: template.URL(img.Src), // #nosec G203 -- data URI built from a local image
	}, nil
}
