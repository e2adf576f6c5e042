package crawl

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// anchorPrefix namespaces page anchors away from heading ids.
const anchorPrefix = "page-"

// markdownExts are the extensions treated as navigable pages.
var markdownExts = map[string]bool{".md": true, ".markdown": true}

// Normalize turns a repo-relative path into a PageId: slash-separated,
// cleaned, without a leading "./" or "/". Page links are repo-relative
// wherever the linking page lives, so link targets go through Normalize
// as well. Paths escaping the repository return ErrOutsideRepo.
func Normalize(p string) (string, error) {
	id := path.Clean(strings.TrimLeft(filepath.ToSlash(p), "/"))
	switch {
	case id == ".":
		return "", fmt.Errorf("%w: empty page path", ErrOutsideRepo)
	case id == ".." || strings.HasPrefix(id, "../"):
		return "", fmt.Errorf("%w: %s", ErrOutsideRepo, p)
	}
	return id, nil
}

// AnchorID returns the document-unique anchor id of a page.
func AnchorID(pageID string) string {
	return anchorPrefix + pageID
}

// IsMarkdown reports whether p names a Markdown page.
func IsMarkdown(p string) bool {
	return markdownExts[strings.ToLower(path.Ext(p))]
}

// SourcePath returns the filesystem path of a page under repoRoot.
func SourcePath(repoRoot, pageID string) string {
	return filepath.Join(repoRoot, filepath.FromSlash(pageID))
}

// CompileExcludes compiles glob patterns matched against PageIds, with '/'
// as separator so "drafts/*" does not cross directories.
func CompileExcludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// splitTarget separates a link target from its "#fragment", dropping any
// "?query".
func splitTarget(ref string) (target, fragment string) {
	if i := strings.IndexByte(ref, '#'); i != -1 {
		ref, fragment = ref[:i], ref[i+1:]
	}
	if i := strings.IndexByte(ref, '?'); i != -1 {
		ref = ref[:i]
	}
	return ref, fragment
}
