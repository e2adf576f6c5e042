package crawl

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gobwas/glob"

	"github.com/alnah/go-mdmerge/internal/pipeline"
)

// documentShell is the empty merged document. The inline style centers the
// content the way GitHub lays out a rendered file.
const documentShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title></title>
<style>
body { box-sizing: border-box; min-width: 200px; max-width: 980px; margin: 0 auto; padding: 45px; }
@media (max-width: 767px) { body { padding: 15px; } }
</style>
</head>
<body>
</body>
</html>`

// Assembler stitches page fragments into one document.
type Assembler struct {
	repoRoot   string
	entry      string
	doc        *goquery.Document
	body       *goquery.Selection
	title      string
	discovered map[string]bool
	pages      []string
	excludes   []glob.Glob
	inline     map[string]string
	articles   map[string]*goquery.Selection
	sections   []sectionLink
}

// sectionLink is a page link carrying a "#fragment", retargeted at the
// section heading once every page is in the document.
type sectionLink struct {
	link     *goquery.Selection
	target   string
	fragment string
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithExcludes leaves links to PageIds matching any glob untouched: they are
// neither rewritten nor followed.
func WithExcludes(globs ...glob.Glob) AssemblerOption {
	return func(a *Assembler) {
		a.excludes = append(a.excludes, globs...)
	}
}

// WithInlineStyle embeds css as a <style> block wherever ref appears in the
// stylesheet list, instead of linking ref.
func WithInlineStyle(ref, css string) AssemblerOption {
	return func(a *Assembler) {
		a.inline[ref] = css
	}
}

// NewAssembler creates the document shell and adds one stylesheet per css
// entry, in order.
func NewAssembler(repoRoot string, css []string, opts ...AssemblerOption) (*Assembler, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(documentShell))
	if err != nil {
		return nil, fmt.Errorf("parsing document shell: %w", err)
	}

	a := &Assembler{
		repoRoot:   repoRoot,
		doc:        doc,
		body:       doc.Find("body"),
		discovered: make(map[string]bool),
		inline:     make(map[string]string),
		articles:   make(map[string]*goquery.Selection),
	}
	for _, opt := range opts {
		opt(a)
	}

	head := doc.Find("head")
	for _, ref := range css {
		if style, ok := a.inline[ref]; ok {
			head.AppendHtml("<style>" + pipeline.SanitizeCSS(style) + "</style>")
			continue
		}
		head.AppendHtml(`<link rel="stylesheet" href="` + html.EscapeString(ref) + `">`)
	}
	return a, nil
}

// Seed registers the entry page: it is discovered without a link and its
// heading provides the document title.
func (a *Assembler) Seed(entry string) {
	a.entry = entry
	a.discovered[entry] = true
}

// Ingest anchors the page heading, rewrites intra-repo Markdown links to
// document anchors, appends the article and returns the PageIds discovered
// for the first time, in link order.
func (a *Assembler) Ingest(pageID string, frag *PageFragment) ([]string, error) {
	anchor := frag.Heading.ChildrenFiltered("a.anchor").First()
	if anchor.Length() == 0 {
		frag.Heading.PrependHtml("<a></a>")
		anchor = frag.Heading.Children().First()
	}
	anchor.SetAttr("id", AnchorID(pageID))

	if pageID == a.entry {
		a.title = strings.TrimSpace(frag.Heading.Text())
		a.doc.Find("title").SetText(a.title)
	}

	var (
		found   []string
		linkErr error
	)
	frag.Links.EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		target, fragment, follow, err := a.classify(pageID, href)
		if err != nil {
			linkErr = err
			return false
		}
		if !follow {
			return true
		}
		link.SetAttr("href", "#"+AnchorID(target))
		if fragment != "" {
			a.sections = append(a.sections, sectionLink{link: link, target: target, fragment: fragment})
		}

		if a.discovered[target] {
			return true
		}
		if !a.exists(target) {
			linkErr = fmt.Errorf("%w: %q linked from %s", ErrBrokenLink, href, pageID)
			return false
		}
		a.discovered[target] = true
		found = append(found, target)
		return true
	})
	if linkErr != nil {
		return nil, linkErr
	}

	a.body.AppendSelection(frag.Content)
	a.articles[pageID] = frag.Content
	a.pages = append(a.pages, pageID)
	return found, nil
}

// classify decides whether href is an intra-repo page link and, if so,
// returns the PageId it targets and its section fragment. Targets are
// relative to the repository root.
func (a *Assembler) classify(pageID, href string) (string, string, bool, error) {
	decoded := pipeline.Unescape(href)
	if strings.HasPrefix(decoded, "#") {
		return "", "", false, nil
	}
	target, fragment := splitTarget(decoded)
	if !IsMarkdown(target) {
		return "", "", false, nil
	}
	if u, err := url.Parse(href); err == nil && (u.Scheme != "" || u.Host != "") {
		return "", "", false, nil
	}

	id, err := Normalize(target)
	if err != nil {
		if errors.Is(err, ErrOutsideRepo) {
			return "", "", false, fmt.Errorf("%w: %q linked from %s leaves the repository", ErrBrokenLink, href, pageID)
		}
		return "", "", false, err
	}
	for _, g := range a.excludes {
		if g.Match(id) {
			return "", "", false, nil
		}
	}
	return id, fragment, true, nil
}

// resolveSections points section links at the heading they name inside the
// target page. Links whose section is missing, or whose id is not unique in
// the document, keep the page anchor.
func (a *Assembler) resolveSections() {
	for _, s := range a.sections {
		article, ok := a.articles[s.target]
		if !ok {
			continue
		}
		id := sectionID(article, s.fragment)
		if id == "" || countIDs(a.doc.Selection, id) != 1 {
			continue
		}
		s.link.SetAttr("href", "#"+id)
	}
	a.sections = nil
}

// sectionID returns the id of the element named by fragment within article.
// GitHub output prefixes heading ids with "user-content-".
func sectionID(article *goquery.Selection, fragment string) string {
	for _, id := range []string{fragment, "user-content-" + fragment} {
		if countIDs(article, id) > 0 {
			return id
		}
	}
	return ""
}

func countIDs(sel *goquery.Selection, id string) int {
	return sel.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("id")
		return v == id
	}).Length()
}

// exists reports whether pageID is a regular file under the repository root.
func (a *Assembler) exists(pageID string) bool {
	info, err := os.Stat(SourcePath(a.repoRoot, pageID))
	return err == nil && info.Mode().IsRegular()
}

// Finalize retargets section links and returns the document and the
// sorted, deduplicated asset set.
func (a *Assembler) Finalize(assets []string) (*Document, []string) {
	a.resolveSections()

	seen := make(map[string]bool, len(assets))
	set := make([]string, 0, len(assets))
	for _, p := range assets {
		if seen[p] {
			continue
		}
		seen[p] = true
		set = append(set, p)
	}
	sort.Strings(set)

	pages := make([]string, len(a.pages))
	copy(pages, a.pages)
	return &Document{doc: a.doc, title: a.title, pages: pages}, set
}

// Document is the merged output.
type Document struct {
	doc   *goquery.Document
	title string
	pages []string
}

// Title returns the text of the entry page heading.
func (d *Document) Title() string {
	return d.title
}

// Pages returns the PageIds in document order.
func (d *Document) Pages() []string {
	return d.pages
}

// HTML serializes the document, doctype included.
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}

