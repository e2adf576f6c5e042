package pipeline

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for image embedding.
var (
	ErrImageNotFound    = fmt.Errorf("image not found: %w", fs.ErrNotExist)
	ErrUnknownImageType = errors.New("unknown image type")
)

// imageTypes maps common image extensions to MIME types independently of the
// host's mime database.
var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".avif": "image/avif",
	".bmp":  "image/bmp",
	".ico":  "image/x-icon",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// EmbeddedImage is the inline replacement for an image reference.
type EmbeddedImage struct {
	Src string // data:<mime>;base64,<payload>
	Alt string // the original reference
}

// EmbedImage reads dir/src and returns it as a data URI.
// src is a reference as written in the page (already URL-unescaped).
func EmbedImage(dir, src string) (EmbeddedImage, error) {
	mimeType, err := ImageMIMEType(src)
	if err != nil {
		return EmbeddedImage{}, err
	}

	path := ResolveImage(dir, src)
	data, err := os.ReadFile(path) // #nosec G304 -- image referenced by a repo page
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return EmbeddedImage{}, fmt.Errorf("%w: %s", ErrImageNotFound, path)
		}
		return EmbeddedImage{}, fmt.Errorf("reading image %s: %w", path, err)
	}

	return EmbeddedImage{
		Src: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
		Alt: src,
	}, nil
}

// ResolveImage returns the absolute, cleaned filesystem path of src relative
// to dir, dropping any query or fragment.
func ResolveImage(dir, src string) string {
	if i := strings.IndexAny(src, "?#"); i != -1 {
		src = src[:i]
	}
	return filepath.Clean(filepath.Join(dir, filepath.FromSlash(src)))
}

// ImageMIMEType infers the MIME type of an image from its extension.
func ImageMIMEType(src string) (string, error) {
	if i := strings.IndexAny(src, "?#"); i != -1 {
		src = src[:i]
	}
	ext := strings.ToLower(filepath.Ext(src))
	if t, ok := imageTypes[ext]; ok {
		return t, nil
	}
	if t := mime.TypeByExtension(ext); strings.HasPrefix(t, "image/") {
		if i := strings.IndexByte(t, ';'); i != -1 {
			t = t[:i]
		}
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownImageType, src)
}

// IsLocalReference reports whether src points at a file in the repository:
// not empty, not a data URI, not an absolute URL or protocol-relative URL,
// not a bare fragment, not an absolute filesystem path.
func IsLocalReference(src string) bool {
	if src == "" || strings.HasPrefix(src, "#") || strings.HasPrefix(src, "//") {
		return false
	}
	if strings.HasPrefix(strings.ToLower(src), "data:") {
		return false
	}
	if u, err := url.Parse(src); err == nil && (u.Scheme != "" || u.Host != "") {
		return false
	}
	return !filepath.IsAbs(src) && !strings.HasPrefix(src, "/")
}

// Unescape decodes percent-escapes in a reference, returning it unchanged
// when it is not valid escaping.
func Unescape(ref string) string {
	if s, err := url.PathUnescape(ref); err == nil {
		return s
	}
	return ref
}

// LocateImage returns the absolute path of the image src relative to dir,
// for callers that copy assets instead of inlining them.
func LocateImage(dir, src string) (string, error) {
	path := ResolveImage(dir, src)
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving image %s: %w", src, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrImageNotFound, abs)
		}
		return "", fmt.Errorf("stat image %s: %w", abs, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrImageNotFound, abs)
	}
	return abs, nil
}
