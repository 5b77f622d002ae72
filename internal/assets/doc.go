// Package assets wraps rendered fragments in standalone HTML pages.
//
// A page is an html/template document executed with PageData plus a
// stylesheet. Both come from the binary or from a user asset directory
// laid out as:
//
//	{dir}/styles/{name}.css
//	{dir}/templates/{name}.html
//
// AssetResolver prefers the directory and falls back per asset, so a single
// stylesheet can be overridden while the built-in template stays in use.
//
// Asset names are plain identifiers and files must resolve inside the
// directory, symlinks included. Page bodies are inserted unescaped: only
// sanitized fragments may be passed to PageRenderer.Render.
package assets
