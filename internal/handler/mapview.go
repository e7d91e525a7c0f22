package handler

import (
	"net/http"

	"github.com/msomdec/snapmap/internal/service"
	"github.com/msomdec/snapmap/internal/view"
)

// MapHandler serves the map of located photos.
type MapHandler struct {
	catalog *service.CatalogService
}

// NewMapHandler creates a new MapHandler.
func NewMapHandler(catalog *service.CatalogService) *MapHandler {
	return &MapHandler{catalog: catalog}
}

// HandleMapPage renders the map page.
// GET /map
func (h *MapHandler) HandleMapPage(w http.ResponseWriter, r *http.Request) {
	m, err := h.catalog.Map(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeStatusError(w, err, "build map")
		return
	}
	renderPage(w, r, view.MapPage(m))
}

// HandleAPIMap returns the map region and markers as JSON.
// GET /api/map
func (h *MapHandler) HandleAPIMap(w http.ResponseWriter, r *http.Request) {
	m, err := h.catalog.Map(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeJSONError(w, err, "build map")
		return
	}
	writeJSON(w, http.StatusOK, m)
}
