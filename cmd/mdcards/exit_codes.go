package main

import (
	"errors"
	"os"

	"github.com/alnah/go-mdcards"
	"github.com/alnah/go-mdcards/internal/assets"
	"github.com/alnah/go-mdcards/internal/config"
	"github.com/alnah/go-mdcards/internal/contentbank"
	"github.com/alnah/go-mdcards/internal/dateutil"
	"github.com/alnah/go-mdcards/internal/session"
	"github.com/alnah/go-mdcards/internal/yamlutil"
)

// Exit codes for the mdcards CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0 // Successful run
	ExitGeneral   = 1 // General/unexpected error
	ExitUsage     = 2 // Invalid flags, config, or validation
	ExitIO        = 3 // File not found, permission denied
	ExitRemote    = 4 // Session API errors
	ExitPackaging = 5 // Missing content library or archive failure
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Remote API errors (exit 4)
	if errors.Is(err, session.ErrUnauthorized) ||
		errors.Is(err, session.ErrSessionNotFound) ||
		errors.Is(err, session.ErrUnexpectedStatus) ||
		errors.Is(err, session.ErrDecode) ||
		errors.Is(err, session.ErrInvalidSession) ||
		errors.Is(err, session.ErrRetriesExhausted) {
		return ExitRemote
	}

	// Packaging errors (exit 5), checked before I/O: archive failures wrap os errors.
	var perr *mdcards.PackagingError
	if errors.As(err, &perr) ||
		errors.Is(err, mdcards.ErrMissingDependency) ||
		errors.Is(err, mdcards.ErrArchive) {
		return ExitPackaging
	}

	// Usage/config/validation errors (exit 2)
	var verr *mdcards.ValidationError
	if errors.As(err, &verr) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, mdcards.ErrEmptyMarkdown) ||
		errors.Is(err, mdcards.ErrEmptyDeck) ||
		errors.Is(err, mdcards.ErrEmptyCardField) ||
		errors.Is(err, mdcards.ErrUnknownEngine) ||
		errors.Is(err, mdcards.ErrInvalidLibrary) ||
		errors.Is(err, session.ErrMissingBaseURL) ||
		errors.Is(err, session.ErrInvalidBaseURL) ||
		errors.Is(err, session.ErrEmptySessionID) ||
		errors.Is(err, yamlutil.ErrInputTooLarge) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrTemplateNotFound) ||
		errors.Is(err, assets.ErrInvalidTemplate) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrReadDeck) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, assets.ErrAssetRead) ||
		errors.Is(err, assets.ErrPathTraversal) ||
		errors.Is(err, contentbank.ErrNotFound) {
		return ExitIO
	}

	return ExitGeneral
}
