package markdown

import (
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// HighlightCSS returns the stylesheet matching the class-based markup that
// highlighted code blocks carry. An unknown style name is an error rather
// than the silent fallback styles.Get would apply.
func HighlightCSS(style string) (string, error) {
	if style == "" {
		style = DefaultHighlightStyle
	}
	if _, ok := styles.Registry[style]; !ok {
		return "", fmt.Errorf("unknown highlight style %q", style)
	}

	var b strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&b, styles.Get(style)); err != nil {
		return "", fmt.Errorf("writing highlight css: %w", err)
	}
	return b.String(), nil
}
