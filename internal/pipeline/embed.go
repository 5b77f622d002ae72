package pipeline

import (
	"html"
	"net/url"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PluginFilePrefix is the host-resolved prefix of embedded package references.
const PluginFilePrefix = "@@PLUGINFILE@@/"

// Class names used on the placeholder and on the resolved frame.
const (
	placeholderClass = "h5p-placeholder"
	iframeClass      = "h5p-iframe"
)

// EmbedToken returns the reference string for a stored package file.
func EmbedToken(filename string) string {
	return PluginFilePrefix + filename
}

// EmbedPlaceholder returns the non-editable block a host replaces with the
// interactive deck.
func EmbedPlaceholder(filename string) string {
	return `<div class="` + placeholderClass + `" contenteditable="false">` +
		html.EscapeString(EmbedToken(filename)) + `</div>`
}

// AppendEmbed appends the placeholder for filename to a page fragment.
func AppendEmbed(fragment, filename string) string {
	if strings.TrimSpace(fragment) == "" {
		return EmbedPlaceholder(filename)
	}
	return fragment + "\n" + EmbedPlaceholder(filename)
}

// FindEmbed returns the package filename referenced by the first placeholder
// in fragment.
func FindEmbed(fragment string) (string, bool) {
	doc, err := parseFragment(fragment)
	if err != nil {
		return "", false
	}

	var found string
	walk(doc, func(n *nethtml.Node) bool {
		if name, ok := placeholderFile(n); ok {
			found = name
			return false
		}
		return true
	})
	return found, found != ""
}

// ResolveEmbeds replaces every placeholder with an iframe loading the package
// from baseURL. Fragments without placeholders are returned unchanged.
func ResolveEmbeds(fragment, baseURL string) (string, error) {
	if !strings.Contains(fragment, PluginFilePrefix) {
		return fragment, nil
	}

	doc, err := parseFragment(fragment)
	if err != nil {
		return "", err
	}

	base := strings.TrimRight(baseURL, "/")
	var placeholders []*nethtml.Node
	walk(doc, func(n *nethtml.Node) bool {
		if _, ok := placeholderFile(n); ok {
			placeholders = append(placeholders, n)
			return false
		}
		return true
	})

	for _, n := range placeholders {
		name, _ := placeholderFile(n)
		frame := &nethtml.Node{
			Type:     nethtml.ElementNode,
			DataAtom: atom.Iframe,
			Data:     "iframe",
			Attr: []nethtml.Attribute{
				{Key: "src", Val: base + "/" + url.PathEscape(name)},
				{Key: "class", Val: iframeClass},
			},
		}
		n.Parent.InsertBefore(frame, n)
		n.Parent.RemoveChild(n)
	}

	return renderFragment(doc)
}

// placeholderFile reports whether n is a placeholder div and returns the
// filename it references.
func placeholderFile(n *nethtml.Node) (string, bool) {
	if n.Type != nethtml.ElementNode || n.DataAtom != atom.Div || !hasClass(n, placeholderClass) {
		return "", false
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == nethtml.TextNode {
			text.WriteString(c.Data)
		}
	}

	ref := strings.TrimSpace(text.String())
	name, ok := strings.CutPrefix(ref, PluginFilePrefix)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

func hasClass(n *nethtml.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// walk visits nodes depth-first; visit returns false to skip a node's children.
func walk(n *nethtml.Node, visit func(*nethtml.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// parseFragment parses content with a body context and wraps the resulting
// nodes in a container for uniform traversal.
func parseFragment(content string) (*nethtml.Node, error) {
	context := &nethtml.Node{
		Type:     nethtml.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := nethtml.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, err
	}

	container := &nethtml.Node{Type: nethtml.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

// renderFragment renders the container's children without a document wrapper.
func renderFragment(doc *nethtml.Node) (string, error) {
	var buf strings.Builder
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := nethtml.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
