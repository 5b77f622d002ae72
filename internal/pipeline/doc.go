// Package pipeline implements the stages around Markdown rendering.
//
// A page fragment goes through:
//   - Markdown preprocessing (line normalization, BOM removal, blank-line compression)
//   - Markdown to HTML conversion by an Engine (native tokenizer or goldmark)
//   - Sanitization against an explicit allow-list (bluemonday)
//   - Embed placeholder handling for packaged card decks
//
// Packaging itself lives in internal/h5p. The root mdcards package wires the
// stages together.
package pipeline
