// Package render executes the HTML views. Templates are embedded; the
// BaseData hook injects the locals every page expects (current user,
// flashes) so handlers only pass page-specific data.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates
var templateFS embed.FS

// BaseDataFunc supplies the shared locals for every render.
type BaseDataFunc func(w http.ResponseWriter, r *http.Request) map[string]any

type Renderer struct {
	logger *slog.Logger
	tmpl   *template.Template

	// BaseData is set at wiring time; nil means no shared locals.
	BaseData BaseDataFunc
}

func New(logger *slog.Logger) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl", "templates/*/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{logger: logger, tmpl: tmpl}, nil
}

// HTML renders the named view. Page data wins over base locals, so a
// handler can pass an inline error without it being clobbered by the
// flash pop.
func (rd *Renderer) HTML(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if rd.BaseData != nil {
		for k, v := range rd.BaseData(w, r) {
			if _, exists := data[k]; !exists {
				data[k] = v
			}
		}
	}

	// Render to a buffer first so template failures do not leak a half
	// written page.
	var buf bytes.Buffer
	if err := rd.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		rd.logger.ErrorContext(r.Context(), "Template execution failed",
			slog.String("template", name), slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		rd.logger.ErrorContext(r.Context(), "Failed to write rendered page", slog.Any("error", err))
	}
}
