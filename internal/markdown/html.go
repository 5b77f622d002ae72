package markdown

import (
	"context"
	"html"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultHighlightStyle is the chroma style used when none is configured.
// With class-based output the style only matters for CSS generation.
const DefaultHighlightStyle = "github"

// escapeText escapes character data. Quotes only need escaping inside
// attribute values, so prose keeps its apostrophes and quotation marks.
var escapeText = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace

// linkAttrs opens every link in a new browsing context without leaking the
// opener or the referrer.
const linkAttrs = ` target="_blank" rel="noopener noreferrer"`

// Option configures a Renderer.
type Option func(*Renderer)

// WithHighlighting toggles chroma highlighting of fenced code with a known language.
func WithHighlighting(enabled bool) Option {
	return func(r *Renderer) {
		r.highlight = enabled
	}
}

// WithHighlightStyle selects the chroma style name.
func WithHighlightStyle(name string) Option {
	return func(r *Renderer) {
		if name != "" {
			r.style = name
		}
	}
}

// WithHardWraps turns line breaks inside paragraphs into <br>.
func WithHardWraps(enabled bool) Option {
	return func(r *Renderer) {
		r.hardWraps = enabled
	}
}

// Renderer converts Markdown to an HTML fragment. It holds no per-call state
// and is safe for concurrent use.
type Renderer struct {
	highlight bool
	hardWraps bool
	style     string
	formatter *chromahtml.Formatter
}

// New creates a Renderer. Highlighting is on by default.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		highlight: true,
		style:     DefaultHighlightStyle,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.formatter = chromahtml.New(chromahtml.WithClasses(true))
	return r
}

var defaultRenderer = New()

// Render converts src with the default Renderer.
func Render(src string) string {
	return defaultRenderer.Render(src)
}

// Render converts src to an HTML fragment. Blocks are separated by newlines;
// empty or blank input yields "".
func (r *Renderer) Render(src string) string {
	out, _ := r.RenderContext(context.Background(), src)
	return out
}

// RenderContext is Render that stops between blocks once ctx is done.
func (r *Renderer) RenderContext(ctx context.Context, src string) (string, error) {
	src = strings.ReplaceAll(strings.ReplaceAll(src, "\r\n", "\n"), "\r", "\n")

	var b strings.Builder
	for i, blk := range Parse(src) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		r.writeBlock(&b, blk)
	}
	return b.String(), nil
}

func (r *Renderer) writeBlock(b *strings.Builder, blk Block) {
	switch n := blk.(type) {
	case *Heading:
		tag := "h" + strconv.Itoa(n.Level)
		b.WriteString("<" + tag + ">")
		r.writeInlines(b, n.Inlines)
		b.WriteString("</" + tag + ">")

	case *Paragraph:
		b.WriteString("<p>")
		r.writeInlines(b, n.Inlines)
		b.WriteString("</p>")

	case *CodeBlock:
		r.writeCode(b, n)

	case *Rule:
		b.WriteString("<hr>")

	case *Blockquote:
		b.WriteString("<blockquote>\n")
		for _, line := range n.Lines {
			b.WriteString("<p>")
			r.writeInlines(b, line)
			b.WriteString("</p>\n")
		}
		b.WriteString("</blockquote>")

	case *List:
		switch {
		case !n.Ordered:
			b.WriteString("<ul>\n")
		case n.Start != 1:
			b.WriteString(`<ol start="` + strconv.Itoa(n.Start) + `">` + "\n")
		default:
			b.WriteString("<ol>\n")
		}
		for _, item := range n.Items {
			b.WriteString("<li>")
			r.writeInlines(b, item)
			b.WriteString("</li>\n")
		}
		if n.Ordered {
			b.WriteString("</ol>")
		} else {
			b.WriteString("</ul>")
		}
	}
}

// writeCode emits a fenced block, highlighted when the language is known.
func (r *Renderer) writeCode(b *strings.Builder, n *CodeBlock) {
	if r.highlight && n.Lang != "" {
		if out, ok := r.highlightCode(n.Lang, n.Text); ok {
			b.WriteString(out)
			return
		}
	}

	if n.Lang != "" {
		b.WriteString(`<pre><code class="language-` + html.EscapeString(n.Lang) + `">`)
	} else {
		b.WriteString("<pre><code>")
	}
	b.WriteString(escapeText(n.Text))
	if n.Text != "" {
		b.WriteByte('\n')
	}
	b.WriteString("</code></pre>")
}

// highlightCode returns chroma's class-based markup, or false when the
// language is unknown or tokenizing fails.
func (r *Renderer) highlightCode(lang, code string) (string, bool) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		return "", false
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, code+"\n")
	if err != nil {
		return "", false
	}

	var out strings.Builder
	if err := r.formatter.Format(&out, styles.Get(r.style), it); err != nil {
		return "", false
	}
	return strings.TrimRight(out.String(), "\n"), true
}

func (r *Renderer) writeInlines(b *strings.Builder, nodes []Inline) {
	for _, node := range nodes {
		switch n := node.(type) {
		case *Text:
			text := escapeText(n.Value)
			if r.hardWraps {
				text = strings.ReplaceAll(text, "\n", "<br>\n")
			}
			b.WriteString(text)

		case *CodeSpan:
			b.WriteString("<code>" + escapeText(n.Value) + "</code>")

		case *Emphasis:
			tag := emphasisTag(n.Kind)
			b.WriteString("<" + tag + ">")
			r.writeInlines(b, n.Children)
			b.WriteString("</" + tag + ">")

		case *Link:
			b.WriteString(`<a href="` + html.EscapeString(n.URL) + `"` + linkAttrs + ">")
			r.writeInlines(b, n.Children)
			b.WriteString("</a>")

		case *Image:
			b.WriteString(`<img src="` + html.EscapeString(n.Src) + `" alt="` + html.EscapeString(n.Alt) + `">`)
		}
	}
}

func emphasisTag(kind EmphasisKind) string {
	switch kind {
	case Strong:
		return "strong"
	case Strike:
		return "del"
	default:
		return "em"
	}
}
