package mdcards

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/alnah/go-mdcards/internal/h5p"
	"github.com/alnah/go-mdcards/internal/markdown"
	"github.com/alnah/go-mdcards/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.Preprocessor = (*pipeline.MarkdownPreprocessor)(nil)
	_ pipeline.Engine       = (*pipeline.NativeEngine)(nil)
	_ pipeline.Engine       = (*pipeline.GoldmarkEngine)(nil)
)

const defaultTimeout = 30 * time.Second

// Option configures a Builder.
type Option func(*Builder)

type builderConfig struct {
	timeout     time.Duration
	engine      string
	engineOpts  pipeline.EngineOptions
	sanitizer   pipeline.SanitizerConfig
	registry    h5p.LibraryRegistry
	library     h5p.Library
	language    string
	description string
	scratchDir  string
}

// WithTimeout bounds each Build call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(b *Builder) {
		if d >= 0 {
			b.cfg.timeout = d
		}
	}
}

// WithEngine selects the markdown engine: EngineNative (default) or
// EngineGoldmark.
func WithEngine(name string) Option {
	return func(b *Builder) {
		b.cfg.engine = name
	}
}

// WithHighlighting toggles class-based syntax highlighting of fenced code.
func WithHighlighting(enabled bool) Option {
	return func(b *Builder) {
		b.cfg.engineOpts.Highlighting = enabled
	}
}

// WithHighlightStyle sets the chroma style name used by the highlighter.
func WithHighlightStyle(name string) Option {
	return func(b *Builder) {
		if name != "" {
			b.cfg.engineOpts.HighlightStyle = name
		}
	}
}

// WithHardWraps renders single newlines inside paragraphs as <br>.
func WithHardWraps(enabled bool) Option {
	return func(b *Builder) {
		b.cfg.engineOpts.HardWraps = enabled
	}
}

// WithSanitizer replaces the HTML allow-list. The sanitizer always runs.
func WithSanitizer(cfg SanitizerConfig) Option {
	return func(b *Builder) {
		b.cfg.sanitizer = cfg
	}
}

// WithLibraryRegistry sets the registry consulted before packaging.
func WithLibraryRegistry(r LibraryRegistry) Option {
	return func(b *Builder) {
		b.cfg.registry = r
	}
}

// WithLibrary pins the content library packages depend on.
func WithLibrary(lib Library) Option {
	return func(b *Builder) {
		b.cfg.library = lib
	}
}

// WithLanguage sets the package manifest language.
func WithLanguage(lang string) Option {
	return func(b *Builder) {
		b.cfg.language = lang
	}
}

// WithDescription sets the text shown above the cards.
func WithDescription(desc string) Option {
	return func(b *Builder) {
		b.cfg.description = desc
	}
}

// WithScratchDir sets where packaging scratch directories are created.
func WithScratchDir(dir string) Option {
	return func(b *Builder) {
		b.cfg.scratchDir = dir
	}
}

// WithLogger sets the logger for pipeline events.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// Builder runs the page pipeline: validate, preprocess, convert, sanitize,
// package and embed. It holds no per-call state and is safe for concurrent use.
type Builder struct {
	cfg          builderConfig
	preprocessor pipeline.Preprocessor
	engine       pipeline.Engine
	sanitizer    *pipeline.Sanitizer
	packager     *h5p.Packager
	logger       *slog.Logger
}

// NewBuilder creates a Builder with the native engine, highlighting on and
// the default allow-list. It fails only for an unknown engine name.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{
		cfg: builderConfig{
			timeout: defaultTimeout,
			engineOpts: pipeline.EngineOptions{
				Highlighting:   true,
				HighlightStyle: markdown.DefaultHighlightStyle,
			},
			sanitizer: pipeline.DefaultSanitizerConfig(),
			library:   h5p.DialogCards,
		},
		preprocessor: &pipeline.MarkdownPreprocessor{},
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(b)
	}

	// Tests may inject an engine.
	if b.engine == nil {
		engine, err := pipeline.NewEngine(b.cfg.engine, b.cfg.engineOpts)
		if err != nil {
			return nil, err
		}
		b.engine = engine
	}
	b.sanitizer = pipeline.NewSanitizer(b.cfg.sanitizer)

	pkgOpts := []h5p.Option{
		h5p.WithLibrary(b.cfg.library),
		h5p.WithLanguage(b.cfg.language),
		h5p.WithDescription(b.cfg.description),
		h5p.WithScratchRoot(b.cfg.scratchDir),
		h5p.WithLogger(b.logger),
	}
	if b.cfg.registry != nil {
		pkgOpts = append(pkgOpts, h5p.WithRegistry(b.cfg.registry))
	}
	b.packager = h5p.NewPackager(pkgOpts...)

	return b, nil
}

// Library returns the pinned content library.
func (b *Builder) Library() Library {
	return b.packager.Library()
}

// Render converts markdown to a sanitized HTML fragment. Empty input yields
// "". Only a cancelled context returns an error.
func (b *Builder) Render(ctx context.Context, md string) (string, error) {
	md = b.preprocessor.Preprocess(ctx, md)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	htmlContent, err := b.engine.ToHTML(ctx, md)
	if err != nil {
		return "", err
	}

	return b.sanitizer.Sanitize(htmlContent), nil
}

// Package validates cards and builds the deck archive. Unlike Build, an empty
// deck is a ValidationError here.
func (b *Builder) Package(ctx context.Context, cards Deck, title string) (*Package, error) {
	if len(cards) == 0 {
		return nil, &ValidationError{Field: "cards", Err: ErrEmptyDeck}
	}
	if err := validateDeck(cards); err != nil {
		return nil, err
	}
	return b.packager.Build(ctx, cards, title)
}

// Build runs the full pipeline for one page. Validation happens before any
// stage runs. An empty deck skips packaging and the page carries no embed.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (b *Builder) Build(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := input.Validate(); err != nil {
		return nil, err
	}

	if b.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.timeout)
		defer cancel()
	}

	htmlContent, err := b.Render(ctx, input.Markdown)
	if err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}

	title := resolveTitle(input)
	res := &Result{Title: title, HTML: htmlContent}

	if len(input.Cards) == 0 {
		b.logger.Debug("empty deck, packaging skipped", slog.String("title", title))
		return res, nil
	}

	pkg, err := b.packager.Build(ctx, input.Cards, title)
	if err != nil {
		return nil, err
	}

	res.Package = pkg
	res.HTML = pipeline.AppendEmbed(htmlContent, pkg.Filename)

	b.logger.Debug("page built",
		slog.String("title", title),
		slog.String("package", pkg.Filename),
		slog.Int("html_bytes", len(res.HTML)),
	)
	return res, nil
}

// resolveTitle picks the explicit title, then the first heading, then
// DefaultTitle.
func resolveTitle(input Input) string {
	if t := strings.TrimSpace(input.Title); t != "" {
		return t
	}
	if t := markdown.ExtractTitle(input.Markdown); t != "" {
		return t
	}
	return DefaultTitle
}
