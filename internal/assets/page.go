package assets

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// PageOptions selects the assets of a PageRenderer. Empty names pick the
// built-in assets.
type PageOptions struct {
	Template     string
	Style        string
	HighlightCSS string // appended after Style, e.g. chroma class rules
	Language     string
}

// PageData is what page templates are executed with.
type PageData struct {
	Title        string
	Language     string
	Style        template.CSS
	HighlightCSS template.CSS
	Body         template.HTML
}

// PageRenderer wraps sanitized fragments in a standalone HTML document.
// Assets are loaded once; it is safe for concurrent use.
type PageRenderer struct {
	tmpl      *template.Template
	style     template.CSS
	highlight template.CSS
	language  string
}

// NewPageRenderer loads the template and stylesheet named in opts.
func NewPageRenderer(loader AssetLoader, opts PageOptions) (*PageRenderer, error) {
	tmplName := opts.Template
	if tmplName == "" {
		tmplName = DefaultTemplateName
	}
	styleName := opts.Style
	if styleName == "" {
		styleName = DefaultStyleName
	}

	src, err := loader.LoadTemplate(tmplName)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(tmplName).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTemplate, tmplName, err)
	}

	css, err := loader.LoadStyle(styleName)
	if err != nil {
		return nil, err
	}

	lang := strings.TrimSpace(opts.Language)
	if lang == "" {
		lang = "en"
	}

	return &PageRenderer{
		tmpl: tmpl,
		// #nosec G203 -- stylesheets come from the binary or the user's asset dir
		style:     template.CSS(css),
		highlight: template.CSS(opts.HighlightCSS), // #nosec G203 -- generated by chroma
		language:  lang,
	}, nil
}

// Render returns a complete HTML document with body as its main content.
// body must already be sanitized; it is inserted unescaped.
func (p *PageRenderer) Render(title, body string) (string, error) {
	var buf bytes.Buffer
	err := p.tmpl.Execute(&buf, PageData{
		Title:        title,
		Language:     p.language,
		Style:        p.style,
		HighlightCSS: p.highlight,
		Body:         template.HTML(body), // #nosec G203 -- sanitized by the pipeline
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	return buf.String(), nil
}
