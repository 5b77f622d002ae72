// Package markdown renders the Markdown subset used by session summaries.
//
// Rendering happens in two stages. The block parser splits the source into
// headings, paragraphs, fenced code, rules, blockquotes and lists; each block's
// text is then tokenized into inline nodes (code spans, emphasis, links,
// images). The emitter walks the resulting tree and writes an HTML fragment.
//
// Emphasis matching is greedy: an opener takes the first acceptable closer of
// its own marker, so overlapping runs such as "**a *b** c*" leave the inner
// marker as text.
//
// Unmatched syntax is never an error: it is emitted as literal, escaped text.
// The output is not sanitized here; callers pass it through the allow-list
// sanitizer in internal/pipeline.
package markdown
