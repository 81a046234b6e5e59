// Package web embeds the HTML form and stylesheet and renders the form view.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// View is the data rendered into form.html. At most one of BattlePlan and
// Error is set.
type View struct {
	BattlePlan string
	Error      string
	MaxLength  int
}

// Renderer executes the embedded form template.
type Renderer struct {
	form *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	form, err := template.ParseFS(templateFS, "templates/form.html")
	if err != nil {
		return nil, fmt.Errorf("parse form template: %w", err)
	}
	return &Renderer{form: form}, nil
}

// RenderForm writes the form view with the given status code. The template
// is executed into a buffer first so a failure never leaves a partial page.
func (r *Renderer) RenderForm(w http.ResponseWriter, status int, v View) {
	var buf bytes.Buffer
	if err := r.form.Execute(&buf, v); err != nil {
		slog.Error("web: failed to render form", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("web: failed to write response", "error", err)
	}
}

// StaticHandler serves the embedded static assets. Mount it under /static/.
func StaticHandler() http.Handler {
	subFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("web: failed to create sub filesystem: " + err.Error())
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(subFS)))
}
