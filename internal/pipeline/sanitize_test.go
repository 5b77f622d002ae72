package pipeline

import (
	"context"
	"strings"
	"testing"
)

func TestSanitizer_Sanitize(t *testing.T) {
	t.Parallel()

	s := NewSanitizer(DefaultSanitizerConfig())

	tests := []struct {
		name         string
		input        string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "script removed with content",
			input:        "<script>alert(1)</script><p>ok</p>",
			wantContains: []string{"<p>ok</p>"},
			wantExcludes: []string{"<script", "alert"},
		},
		{
			name:         "event handler removed",
			input:        `<p onclick="steal()">text</p>`,
			wantContains: []string{"<p>text</p>"},
			wantExcludes: []string{"onclick"},
		},
		{
			name:         "javascript URL removed",
			input:        `<a href="javascript:alert(1)">click</a>`,
			wantContains: []string{"click"},
			wantExcludes: []string{"javascript"},
		},
		{
			name:         "safe link kept",
			input:        `<a href="http://x.test" target="_blank" rel="noopener noreferrer">x</a>`,
			wantContains: []string{`<a href="http://x.test" target="_blank" rel="noopener noreferrer">x</a>`},
		},
		{
			name:         "relative link kept",
			input:        `<a href="/notes/1">n</a>`,
			wantContains: []string{`href="/notes/1"`},
		},
		{
			name:         "other target dropped",
			input:        `<a href="http://x.test" target="_top">x</a>`,
			wantContains: []string{`href="http://x.test"`},
			wantExcludes: []string{"_top"},
		},
		{
			name:         "ordered list start kept",
			input:        `<ol start="3"><li>a</li></ol>`,
			wantContains: []string{`<ol start="3"><li>a</li></ol>`},
		},
		{
			name:         "non-numeric start dropped",
			input:        `<ol start="x"><li>a</li></ol>`,
			wantExcludes: []string{"start="},
		},
		{
			name:         "highlight classes kept",
			input:        `<pre class="chroma"><code><span class="kd">func</span></code></pre>`,
			wantContains: []string{`<pre class="chroma">`, `<span class="kd">func</span>`},
		},
		{
			name:         "image kept",
			input:        `<img src="https://x.test/a.png" alt="pic">`,
			wantContains: []string{`src="https://x.test/a.png"`, `alt="pic"`},
		},
		{
			name:         "iframe removed",
			input:        `<iframe src="https://evil.test"></iframe><p>after</p>`,
			wantContains: []string{"<p>after</p>"},
			wantExcludes: []string{"iframe"},
		},
		{
			name:         "style removed",
			input:        `<style>p{}</style><p style="color:red">x</p>`,
			wantContains: []string{"<p>x</p>"},
			wantExcludes: []string{"style"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := s.Sanitize(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q\ngot: %s", want, got)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("output should not contain %q\ngot: %s", exclude, got)
				}
			}
		})
	}
}

func TestSanitizer_TextQuotes(t *testing.T) {
	t.Parallel()

	s := NewSanitizer(DefaultSanitizerConfig())

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "quotes in text stay literal",
			input:    `<p>it's "quoted"</p>`,
			expected: `<p>it's "quoted"</p>`,
		},
		{
			name:     "entity quotes in text become literal",
			input:    `<p>it&#39;s &quot;quoted&quot;</p>`,
			expected: `<p>it's "quoted"</p>`,
		},
		{
			name:     "markup characters stay escaped",
			input:    `<p>"a" &amp; &lt;b&gt;</p>`,
			expected: `<p>"a" &amp; &lt;b&gt;</p>`,
		},
		{
			name:     "attribute quotes stay escaped",
			input:    `<img src="a.png" alt="say &quot;hi&quot;"><p>'x'</p>`,
			expected: `<img src="a.png" alt="say &#34;hi&#34;"><p>'x'</p>`,
		},
		{
			name:     "no quotes is untouched",
			input:    `<p>plain</p>`,
			expected: `<p>plain</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := s.Sanitize(tt.input); got != tt.expected {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizer_ConfigSwitches(t *testing.T) {
	t.Parallel()

	cfg := DefaultSanitizerConfig()
	cfg.AllowImages = false
	cfg.AllowClasses = false
	s := NewSanitizer(cfg)

	got := s.Sanitize(`<p><img src="a.png" alt="x"><span class="kd">f</span></p>`)
	if strings.Contains(got, "<img") {
		t.Errorf("images disabled but kept: %s", got)
	}
	if strings.Contains(got, "class=") {
		t.Errorf("classes disabled but kept: %s", got)
	}
}

// TestSanitizer_NativeOutputUnchanged checks that the allow-list covers every
// element and attribute the native engine emits.
func TestSanitizer_NativeOutputUnchanged(t *testing.T) {
	t.Parallel()

	engine := NewNativeEngine(EngineOptions{})
	s := NewSanitizer(DefaultSanitizerConfig())

	inputs := []string{
		"# Title",
		"Some **bold**, *em*, ~~del~~ and `code`.",
		"[a link](http://x.test)",
		"![pic](https://x.test/a.png)",
		"- one\n- two",
		"5. five\n6. six",
		"> quote",
		"---",
		"```go\nx := 1 < 2\n```",
		"line one\nline two",
		`it's "quoted" & <escaped>`,
		"`say \"hi\"`",
	}

	for _, in := range inputs {
		out, err := engine.ToHTML(context.Background(), in)
		if err != nil {
			t.Fatalf("ToHTML(%q) error: %v", in, err)
		}
		if got := s.Sanitize(out); got != out {
			t.Errorf("Sanitize changed native output for %q\nbefore: %s\nafter:  %s", in, out, got)
		}
	}
}
