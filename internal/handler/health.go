package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/snapmap/internal/service"
)

// HealthHandler reports whether the catalog store answers queries.
type HealthHandler struct {
	catalog *service.CatalogService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(catalog *service.CatalogService) *HealthHandler {
	return &HealthHandler{catalog: catalog}
}

// HandleHealthz responds with 200 and the photo count, or 503 when the
// store cannot be queried.
// GET /healthz
func (h *HealthHandler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	count, err := h.catalog.Count(r.Context())
	if err != nil {
		slog.Error("health check", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "photos": count})
}
