package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/msomdec/snapmap/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. A nil limiter
// leaves uploads unthrottled.
func RegisterRoutes(mux *http.ServeMux, catalog *service.CatalogService, capture *service.CaptureService, limiter *service.TokenBucket, maxUploadBytes int64) {
	health := NewHealthHandler(catalog)
	photos := NewPhotoHandler(catalog)
	maps := NewMapHandler(catalog)
	captures := NewCaptureHandler(capture, catalog, maxUploadBytes)

	mux.HandleFunc("GET /healthz", health.HandleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /", photos.HandleGallery)
	mux.HandleFunc("GET /photos/search", photos.HandleSearch)
	mux.HandleFunc("GET /photos/{id}", photos.HandleDetail)
	mux.HandleFunc("GET /photos/{id}/file", photos.HandleFile)
	mux.HandleFunc("GET /photos/{id}/thumb", photos.HandleThumbnail)
	mux.HandleFunc("POST /photos/{id}/delete", photos.HandleDelete)

	var upload http.Handler = http.HandlerFunc(captures.HandleUpload)
	if limiter != nil {
		upload = RateLimit(limiter, upload)
	}
	mux.Handle("POST /photos", upload)

	mux.HandleFunc("GET /map", maps.HandleMapPage)

	mux.HandleFunc("GET /api/photos", photos.HandleAPIList)
	mux.HandleFunc("GET /api/photos/{id}", photos.HandleAPIGet)
	mux.HandleFunc("DELETE /api/photos/{id}", photos.HandleAPIDelete)
	mux.HandleFunc("GET /api/map", maps.HandleAPIMap)
}
