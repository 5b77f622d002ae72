package h5p

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Defaults applied by NewPackager.
const (
	DefaultTitle    = "Flashcards"
	DefaultLanguage = "und"
)

// Package is a built card-deck archive. It is immutable once returned.
type Package struct {
	Filename string
	Title    string
	Manifest Manifest
	Content  Content
	Data     []byte
}

// Size returns the archive length in bytes.
func (p *Package) Size() int {
	return len(p.Data)
}

// Option configures a Packager.
type Option func(*Packager)

// WithRegistry sets the registry consulted for the pinned library.
func WithRegistry(r LibraryRegistry) Option {
	return func(p *Packager) {
		if r != nil {
			p.registry = r
		}
	}
}

// WithLibrary pins the library packages depend on.
func WithLibrary(lib Library) Option {
	return func(p *Packager) {
		p.library = lib
	}
}

// WithLanguage sets the manifest language code.
func WithLanguage(lang string) Option {
	return func(p *Packager) {
		if lang != "" {
			p.language = lang
		}
	}
}

// WithDescription sets the deck description shown above the cards.
func WithDescription(desc string) Option {
	return func(p *Packager) {
		p.description = desc
	}
}

// WithScratchRoot sets where per-call scratch directories are created.
// Empty means the system temp dir.
func WithScratchRoot(dir string) Option {
	return func(p *Packager) {
		p.scratchRoot = dir
	}
}

// WithLogger sets the logger for packaging events.
func WithLogger(l *slog.Logger) Option {
	return func(p *Packager) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides the time source used for filenames and entry times.
func WithClock(now func() time.Time) Option {
	return func(p *Packager) {
		if now != nil {
			p.now = now
		}
	}
}

// Packager turns a card deck into a Package. It holds no per-call state and
// is safe for concurrent use; every Build owns its scratch directory.
type Packager struct {
	registry    LibraryRegistry
	library     Library
	language    string
	description string
	scratchRoot string
	logger      *slog.Logger
	now         func() time.Time
}

// NewPackager creates a Packager pinned to DialogCards. Without a registry
// option it trusts that the pinned library is installed.
func NewPackager(opts ...Option) *Packager {
	p := &Packager{
		library:  DialogCards,
		language: DefaultLanguage,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = NewStaticRegistry(p.library)
	}
	return p
}

// Library returns the pinned library.
func (p *Packager) Library() Library {
	return p.library
}

// Build validates cards, checks the pinned library and returns the archive.
// A blank title falls back to DefaultTitle. Build never writes outside its
// scratch directory.
func (p *Packager) Build(ctx context.Context, cards []Card, title string) (*Package, error) {
	if err := ValidateCards(cards); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}

	ok, err := p.registry.HasLibrary(ctx, p.library)
	if err != nil {
		// A lookup cut short says nothing about the library.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &PackagingError{Kind: MissingDependency, Library: p.library, Err: err}
	}
	if !ok {
		return nil, &PackagingError{Kind: MissingDependency, Library: p.library}
	}

	now := p.now()
	manifest := newManifest(title, p.language, p.library)
	content := newContent(title, p.description, cards)

	data, err := buildArchive(p.scratchRoot, now, []archiveEntry{
		{name: ManifestEntry, doc: manifest},
		{name: ContentEntry, doc: content},
	})
	if err != nil {
		return nil, &PackagingError{Kind: ArchiveFailure, Err: err}
	}

	pkg := &Package{
		Filename: newFilename(title, now),
		Title:    title,
		Manifest: manifest,
		Content:  content,
		Data:     data,
	}

	p.logger.Debug("package built",
		slog.String("filename", pkg.Filename),
		slog.Int("cards", len(cards)),
		slog.Int("bytes", pkg.Size()),
	)
	return pkg, nil
}
