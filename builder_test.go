package mdcards

// Notes:
// - Tests Builder with real pipeline components; mockEngine replaces the engine
//   only where a failure or panic has to be forced.
// - Archive contents are checked in the h5p package; here only the wiring
//   (title, embed placeholder, skipped packaging) is asserted.

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-mdcards/internal/h5p"
	"github.com/alnah/go-mdcards/internal/pipeline"
)

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

type mockEngine struct {
	output string
	err    error
	panics bool
}

func (m *mockEngine) ToHTML(_ context.Context, content string) (string, error) {
	if m.panics {
		panic("engine exploded")
	}
	if m.err != nil {
		return "", m.err
	}
	if m.output != "" {
		return m.output, nil
	}
	return "<p>" + content + "</p>", nil
}

func withMockEngine(e pipeline.Engine) Option {
	return func(b *Builder) {
		b.engine = e
	}
}

type registryFunc func(ctx context.Context, lib h5p.Library) (bool, error)

func (f registryFunc) HasLibrary(ctx context.Context, lib h5p.Library) (bool, error) {
	return f(ctx, lib)
}

func newTestBuilder(t *testing.T, opts ...Option) *Builder {
	t.Helper()
	opts = append([]Option{WithScratchDir(t.TempDir())}, opts...)
	b, err := NewBuilder(opts...)
	if err != nil {
		t.Fatalf("NewBuilder() error: %v", err)
	}
	return b
}

func parseHTML(t *testing.T, fragment string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		t.Fatalf("parse HTML: %v", err)
	}
	return doc
}

var testDeck = Deck{
	{Question: "What is a cell?", Answer: "The unit of life."},
	{Question: "Nucleus?", Answer: "Holds DNA."},
}

// ---------------------------------------------------------------------------
// TestNewBuilder - Construction and options
// ---------------------------------------------------------------------------

func TestNewBuilder(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		b := newTestBuilder(t)
		if _, ok := b.engine.(*pipeline.NativeEngine); !ok {
			t.Errorf("engine = %T, want *pipeline.NativeEngine", b.engine)
		}
		if !b.cfg.engineOpts.Highlighting {
			t.Error("highlighting disabled by default")
		}
		if b.Library() != DialogCards {
			t.Errorf("Library() = %v, want %v", b.Library(), DialogCards)
		}
		if b.cfg.timeout != defaultTimeout {
			t.Errorf("timeout = %v, want %v", b.cfg.timeout, defaultTimeout)
		}
	})

	t.Run("goldmark engine", func(t *testing.T) {
		t.Parallel()

		b := newTestBuilder(t, WithEngine(EngineGoldmark))
		if _, ok := b.engine.(*pipeline.GoldmarkEngine); !ok {
			t.Errorf("engine = %T, want *pipeline.GoldmarkEngine", b.engine)
		}
	})

	t.Run("unknown engine", func(t *testing.T) {
		t.Parallel()

		_, err := NewBuilder(WithEngine("pandoc"))
		if !errors.Is(err, ErrUnknownEngine) {
			t.Errorf("NewBuilder() error = %v, want ErrUnknownEngine", err)
		}
	})

	t.Run("custom library", func(t *testing.T) {
		t.Parallel()

		lib := Library{MachineName: "H5P.Dialogcards", MajorVersion: 1, MinorVersion: 8}
		b := newTestBuilder(t, WithLibrary(lib))
		if b.Library() != lib {
			t.Errorf("Library() = %v, want %v", b.Library(), lib)
		}
	})

	t.Run("negative timeout ignored", func(t *testing.T) {
		t.Parallel()

		b := newTestBuilder(t, WithTimeout(-time.Second))
		if b.cfg.timeout != defaultTimeout {
			t.Errorf("timeout = %v", b.cfg.timeout)
		}
	})
}

// ---------------------------------------------------------------------------
// TestBuilder_Render - Markdown to sanitized HTML
// ---------------------------------------------------------------------------

func TestBuilder_Render(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		want         string
		wantContains []string
		wantNot      []string
	}{
		{name: "empty input", input: "", want: ""},
		{name: "plain text", input: "hello world", want: "<p>hello world</p>"},
		{name: "crlf normalized", input: "a\r\nb", want: "<p>a\nb</p>"},
		{name: "bom stripped", input: "\ufeff# T", want: "<h1>T</h1>"},
		{
			name:         "raw html escaped",
			input:        "<script>alert(1)</script>",
			wantContains: []string{"&lt;script&gt;"},
			wantNot:      []string{"<script"},
		},
		{
			name:    "javascript link dropped",
			input:   "[x](javascript:alert(1))",
			wantNot: []string{"javascript:"},
		},
	}

	b := newTestBuilder(t, WithHighlighting(false))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := b.Render(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if tt.want != "" || tt.input == "" {
				if got != tt.want {
					t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.want)
				}
			}
			for _, s := range tt.wantContains {
				if !strings.Contains(got, s) {
					t.Errorf("Render(%q) = %q, want containing %q", tt.input, got, s)
				}
			}
			for _, s := range tt.wantNot {
				if strings.Contains(got, s) {
					t.Errorf("Render(%q) = %q, should not contain %q", tt.input, got, s)
				}
			}
		})
	}
}

func TestBuilder_Render_CancelledContext(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := b.Render(ctx, "# x"); !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

func TestBuilder_Render_SanitizesEngineOutput(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t, withMockEngine(&mockEngine{
		output: `<p onclick="x()">ok</p><iframe src="http://evil.test"></iframe>`,
	}))

	got, err := b.Render(context.Background(), "ignored")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got != "<p>ok</p>" {
		t.Errorf("Render() = %q, want %q", got, "<p>ok</p>")
	}
}

// ---------------------------------------------------------------------------
// TestBuilder_Build - Full pipeline
// ---------------------------------------------------------------------------

func TestBuilder_Build_WithDeck(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t)
	res, err := b.Build(context.Background(), Input{
		Markdown: "# Cells\n\nThe **unit** of life.",
		Cards:    testDeck,
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if res.Title != "Cells" {
		t.Errorf("Title = %q, want heading text", res.Title)
	}
	if !res.HasEmbed() {
		t.Fatal("HasEmbed() = false")
	}
	if !strings.HasPrefix(res.Package.Filename, "Cells_") {
		t.Errorf("Filename = %q", res.Package.Filename)
	}

	file, ok := FindEmbed(res.HTML)
	if !ok || file != res.Package.Filename {
		t.Errorf("FindEmbed() = %q, %v, want %q", file, ok, res.Package.Filename)
	}
	if !strings.HasSuffix(res.HTML, pipeline.EmbedPlaceholder(res.Package.Filename)) {
		t.Errorf("HTML does not end with the placeholder: %q", res.HTML)
	}

	doc := parseHTML(t, res.HTML)
	if n := doc.Find("h1").Length(); n != 1 {
		t.Errorf("h1 count = %d, want 1", n)
	}
	if n := doc.Find("div.h5p-placeholder").Length(); n != 1 {
		t.Errorf("placeholder count = %d, want 1", n)
	}
	if len(res.Package.Content.Dialogs) != len(testDeck) {
		t.Errorf("dialogs = %d, want %d", len(res.Package.Content.Dialogs), len(testDeck))
	}
}

func TestBuilder_Build_EmptyDeckSkipsPackaging(t *testing.T) {
	t.Parallel()

	var lookups int
	b := newTestBuilder(t, WithLibraryRegistry(registryFunc(func(context.Context, h5p.Library) (bool, error) {
		lookups++
		return false, nil
	})))

	res, err := b.Build(context.Background(), Input{Markdown: "text only"})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if res.HasEmbed() {
		t.Error("HasEmbed() = true for empty deck")
	}
	if _, ok := FindEmbed(res.HTML); ok {
		t.Errorf("HTML has a placeholder: %q", res.HTML)
	}
	if res.HTML != "<p>text only</p>" {
		t.Errorf("HTML = %q", res.HTML)
	}
	if lookups != 0 {
		t.Errorf("registry consulted %d times for empty deck", lookups)
	}
}

func TestBuilder_Build_Title(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input Input
		want  string
	}{
		{"explicit title wins", Input{Markdown: "# Heading", Title: "  Given  "}, "Given"},
		{"first heading", Input{Markdown: "intro\n\n## Second level"}, "Second level"},
		{"fallback", Input{Markdown: "no heading"}, DefaultTitle},
		{"fallback with deck", Input{Markdown: "no heading", Cards: testDeck}, DefaultTitle},
	}

	b := newTestBuilder(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := b.Build(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Build() error: %v", err)
			}
			if res.Title != tt.want {
				t.Errorf("Title = %q, want %q", res.Title, tt.want)
			}
			if res.Package != nil && res.Package.Title != tt.want {
				t.Errorf("Package.Title = %q, want %q", res.Package.Title, tt.want)
			}
		})
	}
}

func TestBuilder_Build_ValidationBeforeStages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     Input
		wantField string
		wantErr   error
	}{
		{"empty markdown", Input{Markdown: ""}, "markdown", ErrEmptyMarkdown},
		{"blank markdown", Input{Markdown: " \n\t"}, "markdown", ErrEmptyMarkdown},
		{
			"blank answer",
			Input{Markdown: "x", Cards: Deck{{Question: "q", Answer: "a"}, {Question: "q", Answer: " "}}},
			"cards[1].answer",
			ErrEmptyCardField,
		},
		{
			"blank question",
			Input{Markdown: "x", Cards: Deck{{Question: "", Answer: "a"}}},
			"cards[0].question",
			ErrEmptyCardField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := &mockEngine{panics: true}
			b := newTestBuilder(t, withMockEngine(engine))

			_, err := b.Build(context.Background(), tt.input)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Build() error = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("errors.Is(err, %v) = false", tt.wantErr)
			}
		})
	}
}

func TestBuilder_Build_MissingDependency(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t, WithLibraryRegistry(h5p.NewStaticRegistry()))

	_, err := b.Build(context.Background(), Input{Markdown: "x", Cards: testDeck})
	var perr *PackagingError
	if !errors.As(err, &perr) {
		t.Fatalf("Build() error = %v, want *PackagingError", err)
	}
	if perr.Kind != MissingDependency {
		t.Errorf("Kind = %v, want MissingDependency", perr.Kind)
	}
	if !errors.Is(err, ErrMissingDependency) {
		t.Error("errors.Is(err, ErrMissingDependency) = false")
	}
}

func TestBuilder_Build_EngineFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	b := newTestBuilder(t, withMockEngine(&mockEngine{err: boom}))

	_, err := b.Build(context.Background(), Input{Markdown: "x"})
	if !errors.Is(err, boom) {
		t.Errorf("Build() error = %v, want wrapping boom", err)
	}
}

func TestBuilder_Build_RecoversPanic(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t, withMockEngine(&mockEngine{panics: true}))

	_, err := b.Build(context.Background(), Input{Markdown: "x"})
	if err == nil || !strings.Contains(err.Error(), "internal error") {
		t.Errorf("Build() error = %v, want internal error", err)
	}
}

func TestBuilder_Build_Timeout(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t, WithTimeout(time.Nanosecond))

	_, err := b.Build(context.Background(), Input{Markdown: "x"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Build() error = %v, want deadline exceeded", err)
	}
}

// ---------------------------------------------------------------------------
// TestBuilder_Package - Direct packaging
// ---------------------------------------------------------------------------

func TestBuilder_Package(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t, WithLanguage("fr"), WithDescription("Revise"))

	t.Run("empty deck rejected", func(t *testing.T) {
		t.Parallel()

		_, err := b.Package(context.Background(), nil, "T")
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != "cards" || !errors.Is(err, ErrEmptyDeck) {
			t.Errorf("Package(nil) error = %v", err)
		}
	})

	t.Run("options reach the package", func(t *testing.T) {
		t.Parallel()

		pkg, err := b.Package(context.Background(), testDeck, "My Title!!")
		if err != nil {
			t.Fatalf("Package() error: %v", err)
		}
		if pkg.Manifest.Language != "fr" || pkg.Content.Description != "Revise" {
			t.Errorf("manifest language %q, description %q", pkg.Manifest.Language, pkg.Content.Description)
		}
		if !strings.HasPrefix(pkg.Filename, "My_Title_") || !strings.HasSuffix(pkg.Filename, ".h5p") {
			t.Errorf("Filename = %q", pkg.Filename)
		}
	})
}
