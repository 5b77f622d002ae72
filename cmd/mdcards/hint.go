package main

import (
	"context"
	"errors"

	"github.com/alnah/go-mdcards"
	"github.com/alnah/go-mdcards/internal/config"
	"github.com/alnah/go-mdcards/internal/dateutil"
	"github.com/alnah/go-mdcards/internal/hints"
	"github.com/alnah/go-mdcards/internal/session"
)

// hintError carries the data a hint needs that the error chain does not.
type hintError struct {
	err  error
	hint string
}

func (e *hintError) Error() string { return e.err.Error() }
func (e *hintError) Unwrap() error { return e.err }

// withHint attaches a precomputed hint to err.
func withHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return &hintError{err: err, hint: hint}
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	var he *hintError
	if errors.As(err, &he) && he.hint != "" {
		return he.hint
	}

	var perr *mdcards.PackagingError
	switch {
	case errors.As(err, &perr) && perr.Kind == mdcards.MissingDependency:
		return hints.ForMissingLibrary(perr.Library.String())
	case errors.Is(err, session.ErrUnauthorized):
		return hints.ForSessionAuth(false)
	case errors.Is(err, session.ErrMissingBaseURL):
		return hints.ForSessionURL()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, dateutil.ErrInvalidDateFormat):
		return hints.ForDateFormat()
	}
	return ""
}
