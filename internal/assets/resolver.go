package assets

import "errors"

var _ AssetLoader = (*AssetResolver)(nil)

// AssetResolver looks an asset up in each loader in turn. Only a missing
// asset moves on to the next loader; other failures are returned as is.
type AssetResolver struct {
	chain []AssetLoader
}

// NewAssetResolver returns a resolver over the embedded assets, preceded by
// the directory customBasePath when it is set.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	r := &AssetResolver{}
	if customBasePath != "" {
		custom, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.chain = append(r.chain, custom)
	}
	r.chain = append(r.chain, NewEmbeddedLoader())
	return r, nil
}

func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadStyle(name) })
}

func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadTemplate(name) })
}

func (r *AssetResolver) first(load func(AssetLoader) (string, error)) (string, error) {
	var err error
	for _, l := range r.chain {
		var content string
		content, err = load(l)
		if err == nil {
			return content, nil
		}
		if !errors.Is(err, ErrStyleNotFound) && !errors.Is(err, ErrTemplateNotFound) {
			return "", err
		}
	}
	return "", err
}

// HasCustomLoader reports whether a user directory precedes the embedded
// assets.
func (r *AssetResolver) HasCustomLoader() bool {
	return len(r.chain) > 1
}
