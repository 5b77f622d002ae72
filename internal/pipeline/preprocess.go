package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// bom is the UTF-8 byte order mark some editors prepend to files.
const bom = "\uFEFF"

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Runs of blank lines, including whitespace-only ones
	multipleBlankLines = regexp.MustCompile(`\n(?:[ \t]*\n){2,}`)
)

// Preprocessor prepares Markdown before it reaches an Engine.
type Preprocessor interface {
	Preprocess(ctx context.Context, content string) string
}

// MarkdownPreprocessor normalizes raw Markdown input.
type MarkdownPreprocessor struct{}

var _ Preprocessor = (*MarkdownPreprocessor)(nil)

// Preprocess applies all normalizations. A cancelled context returns content
// unchanged; the caller observes the cancellation at the next stage.
func (p *MarkdownPreprocessor) Preprocess(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = strings.TrimPrefix(content, bom)
	content = normalizeLineEndings(content)
	content = compressBlankLines(content)
	return content
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines collapses consecutive blank lines into a single one.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}
