// Package web holds the HTML presentation layer: embedded templates that
// receive a structured data context and return markup. Handlers stay
// transport-thin and never build HTML themselves.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded template set. It panics on a malformed
// template, which can only happen at build time.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}
