// Package pipeline implements the per-page rendering collaborators and the
// HTML post-processing stages used around the merge engine:
//   - Markdown to HTML rendering, offline via Goldmark or online via the
//     GitHub Markdown API (MarkdownRenderer)
//   - Markdown preprocessing (line normalization, highlight syntax)
//   - Image embedding as data URIs
//   - CSS and cover page injection for PDF export
//   - Relative path rewriting to file:// URLs for PDF export
//
// Page traversal, caching and document assembly live in internal/crawl and
// internal/cache; PDF rendering lives in the root mdmerge package.
package pipeline
