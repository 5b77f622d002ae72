//go:build bench

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// BenchmarkEngineToHTML compares both engines on the same inputs.
func BenchmarkEngineToHTML(b *testing.B) {
	ctx := context.Background()
	opts := EngineOptions{Highlighting: true}

	engines := []struct {
		name   string
		engine Engine
	}{
		{EngineNative, NewNativeEngine(opts)},
		{EngineGoldmark, NewGoldmarkEngine(opts)},
	}

	inputs := []struct {
		name    string
		content string
	}{
		{"minimal", "# Hello\n\nWorld"},
		{"paragraph", strings.Repeat("This is a paragraph with some text.\n\n", 10)},
		{"headings", generateHeadingsMarkdown(20)},
		{"code_blocks", generateCodeBlocksMarkdown(10)},
		{"mixed_small", generateMixedMarkdown(10)},
		{"mixed_large", generateMixedMarkdown(200)},
	}

	for _, e := range engines {
		for _, input := range inputs {
			b.Run(e.name+"/"+input.name, func(b *testing.B) {
				b.ReportAllocs()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					if _, err := e.engine.ToHTML(ctx, input.content); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// BenchmarkNativeToHTMLParallel benchmarks concurrent rendering with one engine.
func BenchmarkNativeToHTMLParallel(b *testing.B) {
	engine := NewNativeEngine(EngineOptions{Highlighting: true})
	ctx := context.Background()
	content := generateMixedMarkdown(20)

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := engine.ToHTML(ctx, content); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkSanitize measures the allow-list pass on rendered output.
func BenchmarkSanitize(b *testing.B) {
	engine := NewNativeEngine(EngineOptions{Highlighting: true})
	sanitizer := NewSanitizer(DefaultSanitizerConfig())

	for _, size := range []int{1, 10, 100} {
		html, err := engine.ToHTML(context.Background(), generateMixedMarkdown(size))
		if err != nil {
			b.Fatal(err)
		}
		b.Run(fmt.Sprintf("sections_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = sanitizer.Sanitize(html)
			}
		})
	}
}

// Helper functions for generating benchmark input

func generateHeadingsMarkdown(count int) string {
	var sb strings.Builder
	for i := 0; i < count; i++ {
		level := (i % 6) + 1
		sb.WriteString(strings.Repeat("#", level))
		sb.WriteString(fmt.Sprintf(" Heading %d\n\n", i+1))
		sb.WriteString("Some content under this heading.\n\n")
	}
	return sb.String()
}

func generateCodeBlocksMarkdown(count int) string {
	var sb strings.Builder
	code := `func example() {
    fmt.Println("Hello, World!")
    for i := 0; i < 10; i++ {
        process(i)
    }
}`
	for i := 0; i < count; i++ {
		sb.WriteString("## Code Example\n\n```go\n")
		sb.WriteString(code)
		sb.WriteString("\n```\n\n")
	}
	return sb.String()
}

func generateMixedMarkdown(sections int) string {
	var sb strings.Builder
	sb.WriteString("# Session Summary\n\n")
	sb.WriteString("Introduction paragraph with **bold** and *italic* text.\n\n")

	for i := 0; i < sections; i++ {
		sb.WriteString(fmt.Sprintf("## Topic %d\n\n", i+1))
		sb.WriteString("This is a paragraph with some content. ")
		sb.WriteString("It includes [links](https://example.com) and `inline code`.\n\n")
		sb.WriteString("- Item one\n- Item two\n- Item three\n\n")
		sb.WriteString("> A quoted remark\n\n")

		if i%3 == 0 {
			sb.WriteString("```go\nfunc main() {\n    fmt.Println(\"Hello\")\n}\n```\n\n")
		}
	}

	return sb.String()
}
