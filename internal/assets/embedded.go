package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
)

//go:embed styles templates
var builtin embed.FS

var _ AssetLoader = (*EmbeddedLoader)(nil)

// EmbeddedLoader serves the assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return readAsset(builtin, styleKind, name)
}

func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return readAsset(builtin, templateKind, name)
}

// readAsset reads name of kind k from fsys. A missing file is reported with
// the kind's not-found sentinel, any other failure as ErrAssetRead.
func readAsset(fsys fs.FS, k kind, name string) (string, error) {
	p, err := k.path(name)
	if err != nil {
		return "", err
	}
	data, err := fs.ReadFile(fsys, p)
	switch {
	case err == nil:
		return string(data), nil
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %q", k.notFound, name)
	default:
		return "", fmt.Errorf("%w: %s: %v", ErrAssetRead, p, err)
	}
}
