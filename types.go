package mdcards

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-mdcards/internal/h5p"
	"github.com/alnah/go-mdcards/internal/pipeline"
)

// Engine names accepted by WithEngine.
const (
	EngineNative   = pipeline.EngineNative
	EngineGoldmark = pipeline.EngineGoldmark
)

// DefaultTitle is used when neither the input nor the markdown names one.
const DefaultTitle = h5p.DefaultTitle

// Card is one question/answer pair.
type Card = h5p.Card

// Deck is an ordered list of cards; presentation order is slice order.
type Deck []Card

// Package is a built card-deck archive.
type Package = h5p.Package

// Library identifies a content library at major.minor granularity.
type Library = h5p.Library

// LibraryRegistry reports which content libraries are installed.
type LibraryRegistry = h5p.LibraryRegistry

// SanitizerConfig is the HTML allow-list applied to rendered fragments.
type SanitizerConfig = pipeline.SanitizerConfig

// DialogCards is the library packages depend on by default.
var DialogCards = h5p.DialogCards

// DefaultSanitizerConfig returns the allow-list covering all engine output.
func DefaultSanitizerConfig() SanitizerConfig {
	return pipeline.DefaultSanitizerConfig()
}

// Input is the material for one course page.
type Input struct {
	Markdown string // Summary text; required
	Title    string // Optional: falls back to the first heading, then DefaultTitle
	Cards    Deck   // Optional: an empty deck produces a page without embed
}

// Validate checks that the page has text and every card has both sides.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Markdown) == "" {
		return &ValidationError{Field: "markdown", Err: ErrEmptyMarkdown}
	}
	if len(in.Cards) == 0 {
		return nil
	}
	return validateDeck(in.Cards)
}

// Result is a built page.
type Result struct {
	Title   string
	HTML    string   // Sanitized fragment, with the embed placeholder when Package is set
	Package *Package // Nil when the input deck was empty
}

// HasEmbed reports whether the page embeds a card deck.
func (r *Result) HasEmbed() bool {
	return r != nil && r.Package != nil
}

// validateDeck turns packager validation failures into ValidationErrors.
func validateDeck(cards []Card) error {
	err := h5p.ValidateCards(cards)
	if err == nil {
		return nil
	}

	var cardErr *h5p.CardError
	if errors.As(err, &cardErr) {
		return &ValidationError{
			Field: fmt.Sprintf("cards[%d].%s", cardErr.Index, cardErr.Field),
			Err:   err,
		}
	}
	return &ValidationError{Field: "cards", Err: err}
}
