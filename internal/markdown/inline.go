package markdown

import "strings"

// escapable lists the characters a backslash turns into literals.
const escapable = "\\`*_{}[]()#+-.!~>|"

// inlineParser tokenizes the text of one block. It remembers searches that
// found no closer, so a run of unmatched delimiters is scanned once instead
// of once per opener.
type inlineParser struct {
	s string

	// brackets and parens map each opener offset to its closer, or -1.
	// Both are built on first use.
	brackets []int
	parens   []int

	// codeFailFrom maps a backtick run length to the earliest offset from
	// which no closing run of that length exists.
	codeFailFrom map[int]int

	// emphFailed holds delimiters whose closer search failed. Closer
	// acceptance depends only on the closer, so later openers fail too.
	emphFailed map[string]bool
}

// parseInlines tokenizes block text into inline nodes. Delimiters without a
// valid partner are kept as literal text.
func parseInlines(s string) []Inline {
	p := &inlineParser{s: s}
	return p.parse()
}

func (p *inlineParser) parse() []Inline {
	s := p.s
	var out []Inline
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			out = append(out, &Text{Value: text.String()})
			text.Reset()
		}
	}
	emit := func(n Inline) {
		flush()
		out = append(out, n)
	}

	for i := 0; i < len(s); {
		c := s[i]

		switch c {
		case '\\':
			if i+1 < len(s) && strings.IndexByte(escapable, s[i+1]) >= 0 {
				text.WriteByte(s[i+1])
				i += 2
				continue
			}

		case '`':
			node, n := p.codeSpan(i)
			if node != nil {
				emit(node)
				i += n
				continue
			}
			// An unmatched run is literal as a whole, so a shorter run
			// inside it cannot open a span.
			text.WriteString(s[i : i+n])
			i += n
			continue

		case '!':
			if i+1 < len(s) && s[i+1] == '[' {
				if node, n := p.image(i); node != nil {
					emit(node)
					i += n
					continue
				}
			}

		case '[':
			if node, n := p.link(i); node != nil {
				emit(node)
				i += n
				continue
			}

		case '*', '_', '~':
			if node, n := p.emphasis(i); node != nil {
				emit(node)
				i += n
				continue
			}
		}

		text.WriteByte(c)
		i++
	}

	flush()
	return out
}

// codeSpan parses a code span opening at s[i]. When no closing run of the
// same length exists it returns nil and the length of the opening run.
func (p *inlineParser) codeSpan(i int) (Inline, int) {
	s := p.s
	open := runLength(s, i, '`')
	if from, ok := p.codeFailFrom[open]; ok && i >= from {
		return nil, open
	}

	for pos := i + open; pos < len(s); {
		idx := strings.IndexByte(s[pos:], '`')
		if idx < 0 {
			break
		}
		k := pos + idx
		closeLen := runLength(s, k, '`')
		if closeLen == open {
			content := strings.ReplaceAll(s[i+open:k], "\n", " ")
			if len(content) > 2 && content[0] == ' ' && content[len(content)-1] == ' ' &&
				strings.TrimSpace(content) != "" {
				content = content[1 : len(content)-1]
			}
			return &CodeSpan{Value: content}, k + closeLen - i
		}
		pos = k + closeLen
	}

	if p.codeFailFrom == nil {
		p.codeFailFrom = make(map[int]int)
	}
	if from, ok := p.codeFailFrom[open]; !ok || i < from {
		p.codeFailFrom[open] = i
	}
	return nil, open
}

// link parses [label](dest) at s[i].
func (p *inlineParser) link(i int) (Inline, int) {
	label, dest, end, ok := p.scanLink(i)
	if !ok {
		return nil, 0
	}
	return &Link{URL: dest, Children: parseInlines(label)}, end - i
}

// image parses ![alt](src) at s[i].
func (p *inlineParser) image(i int) (Inline, int) {
	alt, src, end, ok := p.scanLink(i + 1)
	if !ok {
		return nil, 0
	}
	return &Image{Src: src, Alt: alt}, end - i
}

// scanLink finds the bracketed label and parenthesized destination of a link
// whose label opens at s[i]. It returns the offset just past the link. An
// optional quoted title after the destination is accepted and dropped.
func (p *inlineParser) scanLink(i int) (label, dest string, end int, ok bool) {
	s := p.s
	if p.brackets == nil {
		p.brackets = matchPairs(s, '[', ']')
	}
	closeLabel := p.brackets[i]
	if closeLabel < 0 || closeLabel+1 >= len(s) || s[closeLabel+1] != '(' {
		return "", "", 0, false
	}

	openParen := closeLabel + 1
	if p.parens == nil {
		p.parens = matchPairs(s, '(', ')')
	}
	closeParen := p.parens[openParen]
	if closeParen < 0 {
		return "", "", 0, false
	}

	inner := strings.TrimSpace(s[openParen+1 : closeParen])
	if inner == "" {
		return "", "", 0, false
	}
	if sp := strings.IndexAny(inner, " \t\n"); sp >= 0 {
		title := strings.TrimSpace(inner[sp:])
		if !isQuoted(title) {
			return "", "", 0, false
		}
		inner = inner[:sp]
	}
	inner = strings.TrimSuffix(strings.TrimPrefix(inner, "<"), ">")

	return s[i+1 : closeLabel], inner, closeParen + 1, true
}

// matchPairs maps each open byte of s to the offset of the close byte that
// balances it, honoring nesting and backslash escapes. Every other offset,
// and every unbalanced opener, holds -1.
func matchPairs(s string, open, close byte) []int {
	match := make([]int, len(s))
	for i := range match {
		match[i] = -1
	}

	var stack []int
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case open:
			stack = append(stack, i)
		case close:
			if n := len(stack); n > 0 {
				match[stack[n-1]] = i
				stack = stack[:n-1]
			}
		}
	}
	return match
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return (first == '"' && last == '"') || (first == '\'' && last == '\'')
}

// emphasis parses emphasis opening at s[i]. Matching is greedy: the first
// acceptable closer wins and nesting of the same marker is not tracked.
func (p *inlineParser) emphasis(i int) (Inline, int) {
	s := p.s
	c := s[i]
	run := runLength(s, i, c)

	var delim string
	var kind EmphasisKind
	switch {
	case c == '~':
		if run < 2 {
			return nil, 0
		}
		delim, kind = "~~", Strike
	case run >= 2:
		delim, kind = string([]byte{c, c}), Strong
	default:
		delim, kind = string(c), Emph
	}

	start := i + len(delim)
	if start >= len(s) || isSpace(s[start]) {
		return nil, 0
	}
	if c == '_' && i > 0 && isAlnum(s[i-1]) {
		return nil, 0
	}
	if p.emphFailed[delim] {
		return nil, 0
	}

	for pos := start + 1; pos < len(s); {
		k := p.nextDelim(pos, delim)
		if k < 0 {
			break
		}
		closeRun := runLength(s, k, c)

		switch {
		case isSpace(s[k-1]):
			pos = k + closeRun
			continue
		case kind == Emph && closeRun > 1 && !endsRunAt(s, k, closeRun, c):
			// "*a **b** c*": skip the inner strong run.
			pos = k + closeRun
			continue
		}

		// Use the tail of a longer closing run so ***x*** nests.
		if closeRun > len(delim) {
			k += closeRun - len(delim)
		}
		after := k + len(delim)
		if c == '_' && after < len(s) && isAlnum(s[after]) {
			pos = after
			continue
		}

		return &Emphasis{Kind: kind, Children: parseInlines(s[start:k])}, after - i
	}

	if p.emphFailed == nil {
		p.emphFailed = make(map[string]bool)
	}
	p.emphFailed[delim] = true
	return nil, 0
}

// nextDelim returns the index of the next delim at or after pos, skipping code
// spans and escaped characters, or -1.
func (p *inlineParser) nextDelim(pos int, delim string) int {
	s := p.s
	for pos < len(s) {
		switch {
		case s[pos] == '\\':
			pos += 2
			continue
		case s[pos] == '`':
			_, n := p.codeSpan(pos)
			pos += n
			continue
		case strings.HasPrefix(s[pos:], delim):
			return pos
		}
		pos++
	}
	return -1
}

// endsRunAt reports whether a closing run at k is the last delimiter run in
// s, in which case an emphasis closer may take its tail.
func endsRunAt(s string, k, run int, c byte) bool {
	return strings.IndexByte(s[k+run:], c) < 0
}

// runLength counts consecutive c bytes starting at s[i].
func runLength(s string, i int, c byte) int {
	n := 0
	for i+n < len(s) && s[i+n] == c {
		n++
	}
	return n
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n'
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
