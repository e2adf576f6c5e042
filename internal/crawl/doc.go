// Package crawl merges a tree of cross-linked Markdown pages into one HTML
// document.
//
// The Crawler walks the link graph breadth-first from an entry page. Each
// page is materialized by a PageRenderer, which serves fragments from the
// render cache when the source is unchanged and calls the Markdown renderer
// otherwise. The Assembler appends every fragment in visitation order,
// anchors each page heading as "page-<PageId>", rewrites links between pages
// to those anchors and reports newly discovered pages back to the crawler.
//
// A PageId is the slash-separated path of a page relative to the repository
// root. Page links name PageIds too, whichever directory the linking page
// lives in. A link's "#section" is pointed at the matching heading once
// every page is in the document.
package crawl
