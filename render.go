package mdcards

import (
	"context"
	"sync"

	"github.com/alnah/go-mdcards/internal/markdown"
	"github.com/alnah/go-mdcards/internal/pipeline"
)

// PluginFilePrefix starts every embed token.
const PluginFilePrefix = pipeline.PluginFilePrefix

var defaultBuilder = sync.OnceValue(func() *Builder {
	// The default engine name is always known.
	b, _ := NewBuilder(WithTimeout(0))
	return b
})

// Render converts markdown to a sanitized HTML fragment with the default
// Builder. It never fails; render("") is "".
func Render(md string) string {
	out, _ := defaultBuilder().Render(context.Background(), md)
	return out
}

// ExtractTitle returns the text of the first heading of any level, or "".
func ExtractTitle(md string) string {
	return markdown.ExtractTitle(md)
}

// BuildPackage packages cards under title with the default Builder, which
// trusts that DialogCards is installed.
func BuildPackage(ctx context.Context, cards Deck, title string) (*Package, error) {
	return defaultBuilder().Package(ctx, cards, title)
}

// EmbedToken returns the placeholder token that references filename.
func EmbedToken(filename string) string {
	return pipeline.EmbedToken(filename)
}

// FindEmbed returns the package filename a fragment embeds, if any.
func FindEmbed(fragment string) (string, bool) {
	return pipeline.FindEmbed(fragment)
}

// ResolveEmbeds replaces embed placeholders with iframes pointing under
// baseURL. Display layers call it; Build never does.
func ResolveEmbeds(fragment, baseURL string) (string, error) {
	return pipeline.ResolveEmbeds(fragment, baseURL)
}
