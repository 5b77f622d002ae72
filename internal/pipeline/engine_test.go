package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestNewEngine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		engine  string
		wantErr error
	}{
		{"empty selects native", "", nil},
		{"native", EngineNative, nil},
		{"goldmark", EngineGoldmark, nil},
		{"unknown", "pandoc", ErrUnknownEngine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine, err := NewEngine(tt.engine, EngineOptions{})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewEngine(%q) error = %v, want %v", tt.engine, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewEngine(%q) unexpected error: %v", tt.engine, err)
			}
			if engine == nil {
				t.Fatal("NewEngine() returned nil engine")
			}
		})
	}
}

// TestEngines_SameElements checks that both engines produce the same element
// structure for the shared Markdown subset.
func TestEngines_SameElements(t *testing.T) {
	t.Parallel()

	input := "# Title\n\nSome **bold**, *em* and ~~gone~~ text with [a link](http://x.test).\n\n" +
		"- one\n- two\n\n3. three\n\n> quoted\n\n---\n\n`code`"

	engines := map[string]Engine{
		EngineNative:   NewNativeEngine(EngineOptions{}),
		EngineGoldmark: NewGoldmarkEngine(EngineOptions{}),
	}

	counts := map[string]int{
		"h1":         1,
		"strong":     1,
		"em":         1,
		"del":        1,
		"a":          1,
		"ul":         1,
		"ol":         1,
		"li":         3,
		"blockquote": 1,
		"hr":         1,
		"code":       1,
	}

	for name, engine := range engines {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, err := engine.ToHTML(context.Background(), input)
			if err != nil {
				t.Fatalf("ToHTML() error: %v", err)
			}

			doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
			if err != nil {
				t.Fatalf("parse output: %v", err)
			}

			for sel, want := range counts {
				if got := doc.Find(sel).Length(); got != want {
					t.Errorf("%s: %d <%s>, want %d\n%s", name, got, sel, want, out)
				}
			}

			link := doc.Find("a").First()
			if href := link.AttrOr("href", ""); href != "http://x.test" {
				t.Errorf("href = %q, want http://x.test", href)
			}
			if target := link.AttrOr("target", ""); target != "_blank" {
				t.Errorf("target = %q, want _blank", target)
			}
			if rel := link.AttrOr("rel", ""); rel != "noopener noreferrer" {
				t.Errorf("rel = %q, want noopener noreferrer", rel)
			}
			if start := doc.Find("ol").AttrOr("start", ""); start != "3" {
				t.Errorf("ol start = %q, want 3", start)
			}
		})
	}
}

func TestEngines_RawHTMLNeverPassesThrough(t *testing.T) {
	t.Parallel()

	input := "<script>alert(1)</script>\n\ntext <b onclick=\"x()\">bold</b>"

	for _, engine := range []Engine{NewNativeEngine(EngineOptions{}), NewGoldmarkEngine(EngineOptions{})} {
		out, err := engine.ToHTML(context.Background(), input)
		if err != nil {
			t.Fatalf("ToHTML() error: %v", err)
		}
		for _, bad := range []string{"<script", "<b "} {
			if strings.Contains(out, bad) {
				t.Errorf("%T output contains %q:\n%s", engine, bad, out)
			}
		}
	}
}

func TestEngines_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, engine := range []Engine{NewNativeEngine(EngineOptions{}), NewGoldmarkEngine(EngineOptions{})} {
		if _, err := engine.ToHTML(ctx, "# Title"); !errors.Is(err, context.Canceled) {
			t.Errorf("%T.ToHTML() error = %v, want context.Canceled", engine, err)
		}
	}
}

func TestGoldmarkEngine_Highlighting(t *testing.T) {
	t.Parallel()

	engine := NewGoldmarkEngine(EngineOptions{Highlighting: true})
	out, err := engine.ToHTML(context.Background(), "```go\nfunc main() {}\n```")
	if err != nil {
		t.Fatalf("ToHTML() error: %v", err)
	}
	if !strings.Contains(out, `class="chroma"`) {
		t.Errorf("expected chroma classes, got:\n%s", out)
	}
}

func TestGoldmarkEngine_HardWraps(t *testing.T) {
	t.Parallel()

	soft, _ := NewGoldmarkEngine(EngineOptions{}).ToHTML(context.Background(), "a\nb")
	hard, _ := NewGoldmarkEngine(EngineOptions{HardWraps: true}).ToHTML(context.Background(), "a\nb")

	if strings.Contains(soft, "<br") {
		t.Errorf("soft wraps produced <br>: %s", soft)
	}
	if !strings.Contains(hard, "<br") {
		t.Errorf("hard wraps missing <br>: %s", hard)
	}
}
