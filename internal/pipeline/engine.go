package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/alnah/go-mdcards/internal/markdown"
)

// Engine names accepted by NewEngine.
const (
	EngineNative   = "native"
	EngineGoldmark = "goldmark"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// ErrUnknownEngine indicates an engine name NewEngine does not know.
var ErrUnknownEngine = errors.New("unknown markdown engine")

// Engine converts Markdown to an HTML fragment.
type Engine interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// EngineOptions are the rendering switches shared by all engines.
type EngineOptions struct {
	Highlighting   bool
	HighlightStyle string
	HardWraps      bool
}

// NewEngine returns the engine registered under name. An empty name selects
// the native engine.
func NewEngine(name string, opts EngineOptions) (Engine, error) {
	switch name {
	case "", EngineNative:
		return NewNativeEngine(opts), nil
	case EngineGoldmark:
		return NewGoldmarkEngine(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownEngine, name, EngineNative, EngineGoldmark)
	}
}

// NativeEngine renders with the in-tree tokenizer.
type NativeEngine struct {
	renderer *markdown.Renderer
}

var _ Engine = (*NativeEngine)(nil)

// NewNativeEngine creates a NativeEngine.
func NewNativeEngine(opts EngineOptions) *NativeEngine {
	return &NativeEngine{
		renderer: markdown.New(
			markdown.WithHighlighting(opts.Highlighting),
			markdown.WithHighlightStyle(opts.HighlightStyle),
			markdown.WithHardWraps(opts.HardWraps),
		),
	}
}

// ToHTML renders content. Rendering itself cannot fail; only a cancelled
// context returns an error, checked between blocks.
func (e *NativeEngine) ToHTML(ctx context.Context, content string) (string, error) {
	return e.renderer.RenderContext(ctx, content)
}
