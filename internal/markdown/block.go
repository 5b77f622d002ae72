package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

// Precompiled block patterns. Up to three leading spaces are tolerated.
var (
	fenceOpenPattern     = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})[ \t]*([^ \t`]*)")
	headingPattern       = regexp.MustCompile(`^ {0,3}(#{1,6})[ \t]+(.*)$`)
	closingHashesPattern = regexp.MustCompile(`(^|[ \t]+)#+[ \t]*$`)
	rulePattern          = regexp.MustCompile(`^ {0,3}(?:(?:-[ \t]*){3,}|(?:\*[ \t]*){3,}|(?:_[ \t]*){3,})$`)
	quotePattern         = regexp.MustCompile(`^ {0,3}> ?(.*)$`)
	unorderedItemPattern = regexp.MustCompile(`^ {0,3}[-*+][ \t]+(.*)$`)
	orderedItemPattern   = regexp.MustCompile(`^ {0,3}(\d{1,9})\.[ \t]+(.*)$`)
)

// Parse splits src into blocks. src must already use \n line endings.
func Parse(src string) []Block {
	lines := strings.Split(src, "\n")
	var blocks []Block

	for i := 0; i < len(lines); {
		line := lines[i]

		switch {
		case isBlank(line):
			i++

		case isFenceOpen(line):
			var b *CodeBlock
			b, i = parseFence(lines, i)
			blocks = append(blocks, b)

		case headingPattern.MatchString(line):
			blocks = append(blocks, parseHeading(line))
			i++

		case rulePattern.MatchString(line):
			blocks = append(blocks, &Rule{})
			i++

		case quotePattern.MatchString(line):
			var b *Blockquote
			b, i = parseQuote(lines, i)
			blocks = append(blocks, b)

		case unorderedItemPattern.MatchString(line), orderedItemPattern.MatchString(line):
			var b *List
			b, i = parseList(lines, i)
			blocks = append(blocks, b)

		default:
			var b *Paragraph
			b, i = parseParagraph(lines, i)
			if b != nil {
				blocks = append(blocks, b)
			}
		}
	}

	return blocks
}

// parseFence consumes a fenced code block starting at lines[start].
// A missing closing fence extends the block to the end of input.
func parseFence(lines []string, start int) (*CodeBlock, int) {
	m := fenceOpenPattern.FindStringSubmatch(lines[start])
	marker := m[1]
	block := &CodeBlock{Lang: m[2]}

	var body []string
	i := start + 1
	for ; i < len(lines); i++ {
		if isClosingFence(lines[i], marker) {
			i++
			break
		}
		body = append(body, lines[i])
	}

	block.Text = strings.Join(body, "\n")
	return block, i
}

// isFenceOpen reports whether line opens a fenced code block. Backtick fences
// cannot carry backticks in their info string, so ```a``` stays inline code.
func isFenceOpen(line string) bool {
	m := fenceOpenPattern.FindStringSubmatchIndex(line)
	if m == nil {
		return false
	}
	marker := line[m[2]:m[3]]
	return marker[0] != '`' || !strings.Contains(line[m[3]:], "`")
}

// isClosingFence reports whether line closes a fence opened with marker:
// same character, at least as long, nothing else on the line.
func isClosingFence(line, marker string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < len(marker) {
		return false
	}
	return strings.Trim(trimmed, marker[:1]) == ""
}

func parseHeading(line string) *Heading {
	m := headingPattern.FindStringSubmatch(line)
	return &Heading{
		Level:   len(m[1]),
		Inlines: parseInlines(headingText(m[2])),
	}
}

// headingText strips the optional closing sequence of #s.
func headingText(raw string) string {
	return strings.TrimSpace(closingHashesPattern.ReplaceAllString(raw, ""))
}

// parseQuote consumes consecutive quoted lines. Blank quoted lines are dropped.
func parseQuote(lines []string, start int) (*Blockquote, int) {
	quote := &Blockquote{}
	i := start
	for ; i < len(lines); i++ {
		m := quotePattern.FindStringSubmatch(lines[i])
		if m == nil {
			break
		}
		text := strings.TrimSpace(m[1])
		if text == "" {
			continue
		}
		quote.Lines = append(quote.Lines, parseInlines(text))
	}
	return quote, i
}

// parseList consumes consecutive items of the same list type as lines[start].
// A marker of the other type ends the list; the caller starts a new one.
func parseList(lines []string, start int) (*List, int) {
	list := &List{Ordered: !unorderedItemPattern.MatchString(lines[start])}
	if list.Ordered {
		m := orderedItemPattern.FindStringSubmatch(lines[start])
		list.Start, _ = strconv.Atoi(m[1])
	}

	i := start
	for ; i < len(lines); i++ {
		line := lines[i]
		// A rule such as "* * *" is not an item.
		if rulePattern.MatchString(line) {
			break
		}
		var text string
		if list.Ordered {
			m := orderedItemPattern.FindStringSubmatch(line)
			if m == nil {
				break
			}
			text = m[2]
		} else {
			m := unorderedItemPattern.FindStringSubmatch(line)
			if m == nil {
				break
			}
			text = m[1]
		}
		list.Items = append(list.Items, parseInlines(strings.TrimSpace(text)))
	}
	return list, i
}

// parseParagraph consumes text lines until a blank line or another block start.
func parseParagraph(lines []string, start int) (*Paragraph, int) {
	var text []string
	i := start
	for ; i < len(lines); i++ {
		line := lines[i]
		if isBlank(line) || (i > start && startsBlock(line)) {
			break
		}
		text = append(text, strings.TrimSpace(line))
	}

	joined := strings.Join(text, "\n")
	if joined == "" {
		return nil, i
	}
	return &Paragraph{Inlines: parseInlines(joined)}, i
}

// startsBlock reports whether line opens a non-paragraph block.
func startsBlock(line string) bool {
	return isFenceOpen(line) ||
		headingPattern.MatchString(line) ||
		rulePattern.MatchString(line) ||
		quotePattern.MatchString(line) ||
		unorderedItemPattern.MatchString(line) ||
		orderedItemPattern.MatchString(line)
}

// isBlank returns true if the line is empty or contains only whitespace.
func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
