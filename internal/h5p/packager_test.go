package h5p

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
)

var filenamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+\.h5p$`)

func sampleCards() []Card {
	return []Card{
		{Question: "What is mitosis?", Answer: "Cell division"},
		{Question: "Unit of heredity?", Answer: "Gene"},
	}
}

// readEntries returns the archive entries in stored order.
func readEntries(t *testing.T, data []byte) ([]string, map[string]string) {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	names := make([]string, 0, len(zr.File))
	bodies := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		names = append(names, f.Name)
		bodies[f.Name] = string(body)
	}
	return names, bodies
}

func TestPackager_Build(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewPackager(WithClock(func() time.Time { return fixed }), WithScratchRoot(t.TempDir()))

	pkg, err := p.Build(context.Background(), []Card{{Question: "Q1", Answer: "A1"}}, "T")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	names, bodies := readEntries(t, pkg.Data)
	if len(names) != 2 || names[0] != ManifestEntry || names[1] != ContentEntry {
		t.Fatalf("entries = %v, want [%s %s]", names, ManifestEntry, ContentEntry)
	}

	wantManifest := `{"title":"T","language":"und","mainLibrary":"H5P.Dialogcards","embedTypes":["iframe"],` +
		`"license":"U","preloadedDependencies":[{"machineName":"H5P.Dialogcards","majorVersion":1,"minorVersion":9}]}`
	if bodies[ManifestEntry] != wantManifest {
		t.Errorf("manifest =\n%s\nwant\n%s", bodies[ManifestEntry], wantManifest)
	}

	wantContent := `{"title":"T","mode":"normal","description":"","dialogs":[{"text":"Q1","answer":"A1"}],` +
		`"behaviour":{"enableRetry":true,"disableBackwardsNavigation":false,"scaleTextNotCards":false,` +
		`"randomCards":false,"maxProficiency":5,"quickProgression":false,"enableSolutionsButton":true,` +
		`"autoAdvance":false,"caseSensitive":true}}`
	if bodies[ContentEntry] != wantContent {
		t.Errorf("content =\n%s\nwant\n%s", bodies[ContentEntry], wantContent)
	}

	if pkg.Title != "T" {
		t.Errorf("Title = %q, want T", pkg.Title)
	}
	if pkg.Size() != len(pkg.Data) || pkg.Size() == 0 {
		t.Errorf("Size() = %d", pkg.Size())
	}
}

func TestPackager_Build_DialogsMirrorCards(t *testing.T) {
	t.Parallel()

	cards := sampleCards()
	pkg, err := NewPackager().Build(context.Background(), cards, "Biology")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if len(pkg.Content.Dialogs) != len(cards) {
		t.Fatalf("dialogs = %d, want %d", len(pkg.Content.Dialogs), len(cards))
	}
	for i, c := range cards {
		d := pkg.Content.Dialogs[i]
		if d.Text != c.Question || d.Answer != c.Answer {
			t.Errorf("dialog %d = %+v, want %+v", i, d, c)
		}
	}
}

func TestPackager_Build_TitleAndFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		title      string
		wantTitle  string
		wantPrefix string
	}{
		{"plain", "Biology", "Biology", "Biology_"},
		{"punctuation", "My Title!!", "My Title!!", "My_Title_"},
		{"empty falls back", "", DefaultTitle, "Flashcards_"},
		{"blank falls back", "  \t", DefaultTitle, "Flashcards_"},
		{"symbols only", "???", "???", "flashcards_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pkg, err := NewPackager().Build(context.Background(), sampleCards(), tt.title)
			if err != nil {
				t.Fatalf("Build() error: %v", err)
			}
			if pkg.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", pkg.Title, tt.wantTitle)
			}
			if pkg.Manifest.Title != tt.wantTitle || pkg.Content.Title != tt.wantTitle {
				t.Errorf("documents carry %q/%q, want %q", pkg.Manifest.Title, pkg.Content.Title, tt.wantTitle)
			}
			if !filenamePattern.MatchString(pkg.Filename) {
				t.Errorf("Filename %q has unsafe characters", pkg.Filename)
			}
			if len(pkg.Filename) <= len(tt.wantPrefix) || pkg.Filename[:len(tt.wantPrefix)] != tt.wantPrefix {
				t.Errorf("Filename %q, want prefix %q", pkg.Filename, tt.wantPrefix)
			}
		})
	}
}

func TestPackager_Build_UniqueFilenames(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewPackager(WithClock(func() time.Time { return fixed }))

	a, err := p.Build(context.Background(), sampleCards(), "My Title!!")
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Build(context.Background(), sampleCards(), "My Title!!")
	if err != nil {
		t.Fatal(err)
	}
	if a.Filename == b.Filename {
		t.Errorf("identical builds produced the same filename %q", a.Filename)
	}
}

func TestPackager_Build_Concurrent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	p := NewPackager(WithScratchRoot(root))

	const n = 32
	var wg sync.WaitGroup
	names := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pkg, err := p.Build(context.Background(), sampleCards(), "Deck")
			errs[i] = err
			if pkg != nil {
				names[i] = pkg.Filename
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("Build() #%d error: %v", i, errs[i])
		}
		if seen[names[i]] {
			t.Errorf("duplicate filename %q", names[i])
		}
		seen[names[i]] = true
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch root holds %d leftover entries", len(entries))
	}
}

func TestPackager_Build_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cards     []Card
		wantErr   error
		wantField string
		wantIndex int
	}{
		{"nil deck", nil, ErrEmptyDeck, "", 0},
		{"empty deck", []Card{}, ErrEmptyDeck, "", 0},
		{"blank question", []Card{{Question: " ", Answer: "a"}}, ErrEmptyCardField, "question", 0},
		{"blank answer second card", []Card{{Question: "q", Answer: "a"}, {Question: "q", Answer: ""}}, ErrEmptyCardField, "answer", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			pkg, err := NewPackager(WithScratchRoot(root)).Build(context.Background(), tt.cards, "T")
			if pkg != nil {
				t.Errorf("Build() returned a package on invalid input")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Build() error = %v, want %v", err, tt.wantErr)
			}

			if tt.wantField != "" {
				var cardErr *CardError
				if !errors.As(err, &cardErr) {
					t.Fatalf("error %T is not *CardError", err)
				}
				if cardErr.Field != tt.wantField || cardErr.Index != tt.wantIndex {
					t.Errorf("CardError = %+v, want field %q index %d", cardErr, tt.wantField, tt.wantIndex)
				}
			}

			if entries, _ := os.ReadDir(root); len(entries) != 0 {
				t.Errorf("validation failure touched the scratch root")
			}
		})
	}
}

type failingRegistry struct{ err error }

func (r failingRegistry) HasLibrary(context.Context, Library) (bool, error) {
	return false, r.err
}

func TestPackager_Build_MissingDependency(t *testing.T) {
	t.Parallel()

	lookupErr := errors.New("registry offline")

	tests := []struct {
		name      string
		registry  LibraryRegistry
		wantCause error
	}{
		{"empty registry", NewStaticRegistry(), nil},
		{"other minor version", NewStaticRegistry(Library{MachineName: "H5P.Dialogcards", MajorVersion: 1, MinorVersion: 8}), nil},
		{"other major version", NewStaticRegistry(Library{MachineName: "H5P.Dialogcards", MajorVersion: 2, MinorVersion: 9}), nil},
		{"lookup failure", failingRegistry{err: lookupErr}, lookupErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pkg, err := NewPackager(WithRegistry(tt.registry)).Build(context.Background(), sampleCards(), "T")
			if pkg != nil {
				t.Error("Build() returned a package without its dependency")
			}
			if !errors.Is(err, ErrMissingDependency) {
				t.Fatalf("Build() error = %v, want ErrMissingDependency", err)
			}

			var pkgErr *PackagingError
			if !errors.As(err, &pkgErr) || pkgErr.Kind != MissingDependency {
				t.Fatalf("error = %#v, want *PackagingError{Kind: MissingDependency}", err)
			}
			if pkgErr.Library != DialogCards {
				t.Errorf("Library = %v, want %v", pkgErr.Library, DialogCards)
			}
			if tt.wantCause != nil && !errors.Is(err, tt.wantCause) {
				t.Errorf("error %v does not wrap cause %v", err, tt.wantCause)
			}
		})
	}
}

func TestPackager_Build_ArchiveFailure(t *testing.T) {
	t.Parallel()

	// A regular file where the scratch root should be.
	root := t.TempDir() + "/not-a-dir"
	if err := os.WriteFile(root, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewPackager(WithScratchRoot(root)).Build(context.Background(), sampleCards(), "T")
	if !errors.Is(err, ErrArchive) {
		t.Fatalf("Build() error = %v, want ErrArchive", err)
	}
	var pkgErr *PackagingError
	if !errors.As(err, &pkgErr) || pkgErr.Kind != ArchiveFailure {
		t.Errorf("error = %#v, want ArchiveFailure", err)
	}
}

func TestPackager_Build_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPackager().Build(ctx, sampleCards(), "T")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
}

// cancelingRegistry cancels the build context while the lookup runs.
type cancelingRegistry struct{ cancel context.CancelFunc }

func (r cancelingRegistry) HasLibrary(ctx context.Context, _ Library) (bool, error) {
	r.cancel()
	return false, ctx.Err()
}

func TestPackager_Build_LookupInterrupted(t *testing.T) {
	t.Parallel()

	t.Run("cancelled during lookup", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		_, err := NewPackager(WithRegistry(cancelingRegistry{cancel: cancel})).Build(ctx, sampleCards(), "T")
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Build() error = %v, want context.Canceled", err)
		}
		if errors.Is(err, ErrMissingDependency) {
			t.Errorf("Build() error = %v, reported as a missing dependency", err)
		}
	})

	t.Run("lookup deadline", func(t *testing.T) {
		t.Parallel()

		lookupErr := fmt.Errorf("querying libraries: %w", context.DeadlineExceeded)
		_, err := NewPackager(WithRegistry(failingRegistry{err: lookupErr})).Build(context.Background(), sampleCards(), "T")
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("Build() error = %v, want context.DeadlineExceeded", err)
		}
		var pkgErr *PackagingError
		if errors.As(err, &pkgErr) {
			t.Errorf("Build() error = %#v, want the lookup error unwrapped", err)
		}
	})
}

func TestPackager_Options(t *testing.T) {
	t.Parallel()

	lib := Library{MachineName: "H5P.Dialogcards", MajorVersion: 1, MinorVersion: 8}
	p := NewPackager(
		WithLibrary(lib),
		WithLanguage("fr"),
		WithDescription("Révisez"),
		WithRegistry(NewStaticRegistry(lib)),
	)

	pkg, err := p.Build(context.Background(), sampleCards(), "Cours")
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if p.Library() != lib {
		t.Errorf("Library() = %v", p.Library())
	}
	if pkg.Manifest.Language != "fr" {
		t.Errorf("Language = %q", pkg.Manifest.Language)
	}
	if pkg.Content.Description != "Révisez" {
		t.Errorf("Description = %q", pkg.Content.Description)
	}
	if got := pkg.Manifest.PreloadedDependencies; len(got) != 1 || got[0] != lib {
		t.Errorf("PreloadedDependencies = %v", got)
	}
}

func TestPackagingError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *PackagingError
		want string
	}{
		{
			name: "missing",
			err:  &PackagingError{Kind: MissingDependency, Library: DialogCards},
			want: "required content library is not installed: H5P.Dialogcards 1.9",
		},
		{
			name: "missing with cause",
			err:  &PackagingError{Kind: MissingDependency, Library: DialogCards, Err: errors.New("db locked")},
			want: "required content library is not installed: H5P.Dialogcards 1.9: db locked",
		},
		{
			name: "archive",
			err:  &PackagingError{Kind: ArchiveFailure, Err: errors.New("disk full")},
			want: "package archive could not be built: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
