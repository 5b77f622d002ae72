package assets

import "errors"

// AssetResolver looks assets up in the user's asset directory first and
// falls back to the built-in ones only when the asset is missing there.
// A bad name or an unreadable file is reported, not masked.
type AssetResolver struct {
	custom   AssetLoader // nil without an asset directory
	embedded AssetLoader
}

// NewAssetResolver uses only built-in assets when dir is empty.
func NewAssetResolver(dir string) (*AssetResolver, error) {
	r := &AssetResolver{embedded: NewEmbeddedLoader()}
	if dir == "" {
		return r, nil
	}

	custom, err := NewFilesystemLoader(dir)
	if err != nil {
		return nil, err
	}
	r.custom = custom
	return r, nil
}

func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.first(AssetLoader.LoadStyle, name)
}

func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.first(AssetLoader.LoadTemplate, name)
}

// HasCustomLoader reports whether a user asset directory is in use.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

func (r *AssetResolver) first(load func(AssetLoader, string) (string, error), name string) (string, error) {
	if r.custom != nil {
		content, err := load(r.custom, name)
		if !errors.Is(err, ErrStyleNotFound) && !errors.Is(err, ErrTemplateNotFound) {
			return content, err
		}
	}
	return load(r.embedded, name)
}

var _ AssetLoader = (*AssetResolver)(nil)
