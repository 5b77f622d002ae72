package mdcards

import (
	"errors"

	"github.com/alnah/go-mdcards/internal/h5p"
	"github.com/alnah/go-mdcards/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown  = errors.New("markdown content cannot be empty")
	ErrHTMLConversion = pipeline.ErrHTMLConversion
	ErrUnknownEngine  = pipeline.ErrUnknownEngine

	// Deck validation errors.
	ErrEmptyDeck      = h5p.ErrEmptyDeck
	ErrEmptyCardField = h5p.ErrEmptyCardField

	// Packaging errors, carried by *PackagingError.
	ErrMissingDependency = h5p.ErrMissingDependency
	ErrArchive           = h5p.ErrArchive
	ErrInvalidLibrary    = h5p.ErrInvalidLibrary
)

// PackagingError reports a packaging failure after validation passed.
// Kind is MissingDependency or ArchiveFailure.
type PackagingError = h5p.PackagingError

// PackagingErrorKind classifies a PackagingError.
type PackagingErrorKind = h5p.ErrorKind

// Packaging error kinds.
const (
	MissingDependency = h5p.MissingDependency
	ArchiveFailure    = h5p.ArchiveFailure
)

// ValidationError rejects input before any rendering or packaging starts.
// Field names the offending input, e.g. "markdown" or "cards[2].answer".
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
