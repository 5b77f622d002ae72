package h5p

import (
	"errors"
	"fmt"
)

// Sentinel errors for packaging.
var (
	ErrEmptyDeck         = errors.New("deck has no cards")
	ErrEmptyCardField    = errors.New("card question and answer must not be blank")
	ErrMissingDependency = errors.New("required content library is not installed")
	ErrArchive           = errors.New("package archive could not be built")
	ErrInvalidLibrary    = errors.New("invalid library reference")
)

// ErrorKind classifies a PackagingError.
type ErrorKind int

const (
	// MissingDependency means the registry does not report the pinned library.
	MissingDependency ErrorKind = iota + 1
	// ArchiveFailure covers scratch staging, zip writing and readback.
	ArchiveFailure
)

func (k ErrorKind) String() string {
	switch k {
	case MissingDependency:
		return "missing dependency"
	case ArchiveFailure:
		return "archive failure"
	default:
		return "unknown"
	}
}

// PackagingError reports a failure after input validation passed.
type PackagingError struct {
	Kind    ErrorKind
	Library Library // set for MissingDependency
	Err     error
}

func (e *PackagingError) Error() string {
	switch {
	case e.Kind == MissingDependency && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", ErrMissingDependency, e.Library, e.Err)
	case e.Kind == MissingDependency:
		return fmt.Sprintf("%s: %s", ErrMissingDependency, e.Library)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", ErrArchive, e.Err)
	default:
		return ErrArchive.Error()
	}
}

// Unwrap exposes the kind's sentinel and the underlying cause.
func (e *PackagingError) Unwrap() []error {
	sentinel := ErrArchive
	if e.Kind == MissingDependency {
		sentinel = ErrMissingDependency
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// CardError identifies the first card with a blank field.
type CardError struct {
	Index int // zero-based
	Field string
}

func (e *CardError) Error() string {
	return fmt.Sprintf("card %d: %s is blank", e.Index+1, e.Field)
}

func (e *CardError) Unwrap() error {
	return ErrEmptyCardField
}
