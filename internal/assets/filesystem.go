package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var _ AssetLoader = (*FilesystemLoader)(nil)

// FilesystemLoader serves assets from a user directory laid out like the
// embedded tree: {base}/styles/{name}.css and {base}/templates/{name}.html.
type FilesystemLoader struct {
	base string // absolute, symlinks resolved
	fsys fs.FS
}

// NewFilesystemLoader creates a FilesystemLoader rooted at basePath, which
// must be a readable directory.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	base, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if resolved, err := filepath.EvalSymlinks(base); err == nil {
		base = resolved
	}

	if _, err := os.ReadDir(base); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBasePath, base, err)
	}

	return &FilesystemLoader{base: base, fsys: os.DirFS(base)}, nil
}

func (f *FilesystemLoader) LoadStyle(name string) (string, error) {
	return f.load(styleKind, name)
}

func (f *FilesystemLoader) LoadTemplate(name string) (string, error) {
	return f.load(templateKind, name)
}

func (f *FilesystemLoader) load(k kind, name string) (string, error) {
	p, err := k.path(name)
	if err != nil {
		return "", err
	}
	if err := f.contain(p); err != nil {
		return "", err
	}
	return readAsset(f.fsys, k, name)
}

// contain fails when rel resolves, through symlinks, outside the base
// directory. os.DirFS follows symlinks, so names alone are not enough.
func (f *FilesystemLoader) contain(rel string) error {
	target, err := filepath.EvalSymlinks(filepath.Join(f.base, filepath.FromSlash(rel)))
	if err != nil {
		// Missing files fail in readAsset with the right sentinel.
		return nil
	}
	if !strings.HasPrefix(target, f.base+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s leaves %s", ErrPathTraversal, rel, f.base)
	}
	return nil
}
