package handler

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
)

// renderPage writes a full HTML page.
func renderPage(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render page", "path", r.URL.Path, "error", err)
	}
}
