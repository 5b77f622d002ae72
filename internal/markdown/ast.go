package markdown

// Block is a block-level element of a parsed document.
type Block interface {
	block()
}

// Heading is an ATX heading (# to ######).
type Heading struct {
	Level   int
	Inlines []Inline
}

// Paragraph holds a run of consecutive text lines. Line breaks survive as
// newlines inside Text values.
type Paragraph struct {
	Inlines []Inline
}

// CodeBlock is a fenced code block. Text is kept verbatim.
type CodeBlock struct {
	Lang string
	Text string
}

// Rule is a thematic break.
type Rule struct{}

// Blockquote groups consecutive quoted lines, one paragraph per line.
type Blockquote struct {
	Lines [][]Inline
}

// List is a run of same-type list items.
type List struct {
	Ordered bool
	Start   int
	Items   [][]Inline
}

func (*Heading) block()    {}
func (*Paragraph) block()  {}
func (*CodeBlock) block()  {}
func (*Rule) block()       {}
func (*Blockquote) block() {}
func (*List) block()       {}

// Inline is an inline-level element.
type Inline interface {
	inline()
}

// Text is literal text; it is escaped on output.
type Text struct {
	Value string
}

// CodeSpan is inline code.
type CodeSpan struct {
	Value string
}

// EmphasisKind distinguishes the emphasis flavors.
type EmphasisKind int

// Emphasis flavors.
const (
	Emph EmphasisKind = iota
	Strong
	Strike
)

// Emphasis wraps children in em, strong or del.
type Emphasis struct {
	Kind     EmphasisKind
	Children []Inline
}

// Link is an inline link.
type Link struct {
	URL      string
	Children []Inline
}

// Image is an inline image.
type Image struct {
	Src string
	Alt string
}

func (*Text) inline()     {}
func (*CodeSpan) inline() {}
func (*Emphasis) inline() {}
func (*Link) inline()     {}
func (*Image) inline()    {}
