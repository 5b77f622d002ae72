package pipeline

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	nethtml "golang.org/x/net/html"
)

// Attribute value patterns accepted by the sanitizer.
var (
	targetBlankPattern = regexp.MustCompile(`^_blank$`)
	relPattern         = regexp.MustCompile(`^(?:noopener|noreferrer|nofollow)(?: (?:noopener|noreferrer|nofollow))*$`)
)

// SanitizerConfig is the HTML allow-list applied to every rendered fragment.
type SanitizerConfig struct {
	// Elements allowed without attributes.
	Elements []string

	// URLSchemes allowed in href and src. Relative URLs are always accepted.
	URLSchemes []string

	// AllowImages keeps <img> with src, alt and title.
	AllowImages bool

	// AllowClasses keeps class attributes on span, pre and code, which
	// class-based syntax highlighting relies on.
	AllowClasses bool
}

// DefaultSanitizerConfig returns the allow-list covering everything the
// engines emit.
func DefaultSanitizerConfig() SanitizerConfig {
	return SanitizerConfig{
		Elements: []string{
			"p", "br", "hr",
			"h1", "h2", "h3", "h4", "h5", "h6",
			"blockquote", "ul", "ol", "li",
			"pre", "code", "span",
			"strong", "em", "del",
		},
		URLSchemes:   []string{"http", "https", "mailto"},
		AllowImages:  true,
		AllowClasses: true,
	}
}

// Sanitizer strips everything outside its allow-list. It is safe for
// concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds a Sanitizer from cfg.
func NewSanitizer(cfg SanitizerConfig) *Sanitizer {
	p := bluemonday.NewPolicy()

	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes(cfg.URLSchemes...)

	p.AllowElements(cfg.Elements...)
	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")

	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("target").Matching(targetBlankPattern).OnElements("a")
	p.AllowAttrs("rel").Matching(relPattern).OnElements("a")

	if cfg.AllowImages {
		p.AllowAttrs("src", "alt", "title").OnElements("img")
	}
	if cfg.AllowClasses {
		p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("span", "pre", "code")
	}

	return &Sanitizer{policy: p}
}

// Sanitize returns fragment reduced to the allow-list. Text keeps literal
// quotes; attribute values stay escaped.
func (s *Sanitizer) Sanitize(fragment string) string {
	return unescapeTextQuotes(s.policy.Sanitize(fragment))
}

// escapeText escapes character data the way the native renderer does.
var escapeText = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace

// unescapeTextQuotes rewrites the text nodes of sanitized HTML so quotes
// appear literally. The sanitizer escapes them everywhere, which changes
// ordinary prose. Tags are copied byte for byte.
func unescapeTextQuotes(fragment string) string {
	if !strings.Contains(fragment, "&#34;") && !strings.Contains(fragment, "&#39;") {
		return fragment
	}

	z := nethtml.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	b.Grow(len(fragment))
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			// Reading from a string only ends with io.EOF.
			return b.String()
		case nethtml.TextToken:
			b.WriteString(escapeText(string(z.Text())))
		default:
			b.Write(z.Raw())
		}
	}
}
