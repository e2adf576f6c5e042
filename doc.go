// Package mdmerge merges a tree of cross-linked Markdown files into a single
// HTML document, optionally printed to PDF with headless Chrome.
//
// # Quick Start
//
// Create a merger, merge a repository, and close when done:
//
//	m, err := mdmerge.NewMerger()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Close()
//
//	result, err := m.Merge(ctx, mdmerge.Input{RepoRoot: "./docs"}, mdmerge.RenderOptions{
//	    Renderer: mdmerge.RendererSettings{Offline: true},
//	    Output:   mdmerge.OutputSettings{CSS: []string{mdmerge.BuiltinStyle}},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("docs.html", result.HTML, 0644)
//
// # How a Merge Works
//
// Starting from the entry page (README.md by default), every page is visited
// breadth-first. Each page is rendered to HTML by GitHub's Markdown API, or by
// goldmark when offline, and appended to the document. Its level-1 heading is
// anchored as "page-<path>" and links to other Markdown pages of the
// repository are rewritten to those anchors. Links to pages that do not exist
// fail the merge with ErrBrokenLink.
//
// Local images are either embedded as data URIs (PostSettings.EmbedImages) or
// listed in MergeResult.Assets so the caller can ship them next to the HTML.
//
// # Render Cache
//
// Rendered pages are cached per repository under the user cache directory
// (see WithCacheDir). A page is rendered again only when its source is newer
// than its cache entry, or when the RenderOptions fingerprint changed since
// the previous merge of the same repository. Credentials never take part in
// the fingerprint.
//
// # Configuration
//
// Use functional options to customize the merger:
//
//	m, err := mdmerge.NewMerger(
//	    mdmerge.WithTimeout(5 * time.Minute),
//	    mdmerge.WithCacheDir("/var/cache/mdmerge"),
//	    mdmerge.WithExcludes("drafts/*"),
//	    mdmerge.WithLogger(slog.Default()),
//	)
//
// # Errors
//
// Errors wrap the sentinels of this package; test them with errors.Is.
// Failures on a given page carry the page id in their message.
package mdmerge
