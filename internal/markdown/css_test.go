package markdown

import (
	"strings"
	"testing"
)

func TestHighlightCSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		style   string
		wantErr bool
	}{
		{"default when empty", "", false},
		{"named style", "monokai", false},
		{"unknown style", "no-such-style", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			css, err := HighlightCSS(tt.style)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("HighlightCSS(%q) expected error", tt.style)
				}
				return
			}
			if err != nil {
				t.Fatalf("HighlightCSS(%q) error = %v", tt.style, err)
			}
			// Rules target the classes the renderer emits.
			if !strings.Contains(css, ".chroma") {
				t.Errorf("HighlightCSS(%q) missing .chroma rules", tt.style)
			}
		})
	}
}
