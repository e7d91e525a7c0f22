package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/snapmap/internal/media"
	"github.com/msomdec/snapmap/internal/service"
	"github.com/msomdec/snapmap/internal/view"
)

const maxThumbnailSize = 1024

// PhotoHandler serves the gallery, photo detail, image bytes and deletion.
type PhotoHandler struct {
	catalog *service.CatalogService
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(catalog *service.CatalogService) *PhotoHandler {
	return &PhotoHandler{catalog: catalog}
}

func photoPath(id int64) string {
	return "/photos/" + strconv.FormatInt(id, 10)
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// HandleGallery renders the gallery page, optionally pre-filtered by ?q=.
// GET /
func (h *PhotoHandler) HandleGallery(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	photos, err := h.catalog.Search(r.Context(), query)
	if err != nil {
		writeStatusError(w, err, "list photos")
		return
	}
	renderPage(w, r, view.GalleryPage(photos, query, h.catalog.Location()))
}

type searchSignals struct {
	Q string `json:"q"`
}

// HandleSearch re-renders the grid for the current search signal via SSE.
// GET /photos/search
func (h *PhotoHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var signals searchSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	query := strings.TrimSpace(signals.Q)
	photos, err := h.catalog.Search(r.Context(), query)
	if err != nil {
		writeStatusError(w, err, "search photos")
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(
		view.PhotoGrid(photos, query, h.catalog.Location()),
		datastar.WithSelectorID(view.GridID),
		datastar.WithModeInner(),
	); err != nil {
		slog.Error("patch photo grid", "error", err)
	}
}

// HandleDetail renders a single photo.
// GET /photos/{id}
func (h *PhotoHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	photo, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeStatusError(w, err, "get photo")
		return
	}

	size := int64(-1)
	if info, err := os.Stat(photo.URI); err == nil {
		size = info.Size()
	}
	renderPage(w, r, view.DetailPage(photo, size, h.catalog.Location()))
}

// HandleFile serves the archived image bytes.
// GET /photos/{id}/file
func (h *PhotoHandler) HandleFile(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	photo, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeStatusError(w, err, "get photo")
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=86400")
	http.ServeFile(w, r, photo.URI)
}

// HandleThumbnail serves a square JPEG thumbnail, ?size= pixels on a side.
// GET /photos/{id}/thumb
func (h *PhotoHandler) HandleThumbnail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	size := media.DefaultThumbnailSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxThumbnailSize {
			http.Error(w, "Bad Request: invalid size", http.StatusBadRequest)
			return
		}
		size = n
	}

	photo, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeStatusError(w, err, "get photo")
		return
	}

	data, err := media.Thumbnail(photo.URI, size)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("render thumbnail", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// HandleDelete deletes a photo and responds with SSE: from the grid the
// cell is removed in place, from the detail page the browser goes back to
// the gallery.
// POST /photos/{id}/delete
func (h *PhotoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := h.catalog.DeleteByID(r.Context(), id); err != nil {
		writeStatusError(w, err, "delete photo")
		return
	}

	sse := datastar.NewSSE(w, r)
	if r.URL.Query().Get("from") == "grid" {
		if err := sse.RemoveElementByID(view.PhotoElementID(id)); err != nil {
			slog.Error("remove photo element", "error", err)
		}
		return
	}
	if err := sse.Redirect("/"); err != nil {
		slog.Error("redirect after delete", "error", err)
	}
}

// HandleAPIList returns photos as JSON, filtered by ?q= when present.
// GET /api/photos
func (h *PhotoHandler) HandleAPIList(w http.ResponseWriter, r *http.Request) {
	photos, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeJSONError(w, err, "list photos")
		return
	}
	writeJSON(w, http.StatusOK, toPhotoDTOs(photos))
}

// HandleAPIGet returns one photo as JSON.
// GET /api/photos/{id}
func (h *PhotoHandler) HandleAPIGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid photo id")
		return
	}

	photo, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeJSONError(w, err, "get photo")
		return
	}
	writeJSON(w, http.StatusOK, toPhotoDTO(*photo))
}

// HandleAPIDelete deletes a photo.
// DELETE /api/photos/{id}
func (h *PhotoHandler) HandleAPIDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid photo id")
		return
	}

	if err := h.catalog.DeleteByID(r.Context(), id); err != nil {
		writeJSONError(w, err, "delete photo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
