package main

import (
	"fmt"

	"github.com/alnah/go-mdcards/internal/assets"
	"github.com/alnah/go-mdcards/internal/config"
	"github.com/alnah/go-mdcards/internal/hints"
	"github.com/alnah/go-mdcards/internal/markdown"
)

// newPageRenderer builds the standalone page wrapper from preview config.
// Custom assets under preview.assetPath shadow the built-in ones.
func newPageRenderer(cfg *config.Config) (*assets.PageRenderer, error) {
	resolver, err := assets.NewAssetResolver(cfg.Preview.AssetPath)
	if err != nil {
		return nil, withHint(err, hints.ForPageAssets(cfg.Preview.AssetPath))
	}

	opts := assets.PageOptions{
		Template: cfg.Preview.Template,
		Style:    cfg.Preview.Style,
		Language: cfg.Packager.Language,
	}
	if cfg.Renderer.HighlightingEnabled() {
		css, err := markdown.HighlightCSS(cfg.Renderer.HighlightStyle)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUsage, err)
		}
		opts.HighlightCSS = css
	}
	page, err := assets.NewPageRenderer(resolver, opts)
	if err != nil {
		return nil, withHint(err, hints.ForPageAssets(cfg.Preview.AssetPath))
	}
	return page, nil
}
