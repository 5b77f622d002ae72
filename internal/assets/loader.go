package assets

import "errors"

// Built-in asset names.
const (
	DefaultStyleName    = "default"
	DefaultTemplateName = "page"
)

var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidTemplate  = errors.New("invalid page template")
	ErrInvalidAssetName = errors.New("invalid asset name")
	ErrInvalidBasePath  = errors.New("invalid asset directory")
	ErrAssetRead        = errors.New("failed to read asset")
	ErrPathTraversal    = errors.New("asset path escapes asset directory")
)

// AssetLoader returns stylesheets and page templates by bare name, without
// extension. A missing asset is ErrStyleNotFound or ErrTemplateNotFound; a
// name that is not a plain identifier is ErrInvalidAssetName.
type AssetLoader interface {
	LoadStyle(name string) (string, error)
	LoadTemplate(name string) (string, error)
}

// assetKind ties a subdirectory to its extension and not-found error.
type assetKind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind    = assetKind{dir: stylesDir, ext: ".css", notFound: ErrStyleNotFound}
	templateKind = assetKind{dir: templatesDir, ext: ".html", notFound: ErrTemplateNotFound}
)
