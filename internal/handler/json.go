package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/snapmap/internal/domain"
)

// writeJSON sends a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

// writeError sends a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps catalog errors onto HTTP status codes. Unexpected errors
// are logged here with the given action.
func statusFor(err error, action string) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStorageUnavailable):
		slog.Error(action, "error", err)
		return http.StatusServiceUnavailable
	default:
		slog.Error(action, "error", err)
		return http.StatusInternalServerError
	}
}

// writeStatusError answers page requests with a plain-text status.
func writeStatusError(w http.ResponseWriter, err error, action string) {
	status := statusFor(err, action)
	msg := http.StatusText(status)
	if status == http.StatusBadRequest {
		msg = err.Error()
	}
	http.Error(w, msg, status)
}

// writeJSONError answers API requests with a JSON error body.
func writeJSONError(w http.ResponseWriter, err error, action string) {
	status := statusFor(err, action)
	msg := http.StatusText(status)
	if status == http.StatusBadRequest {
		msg = err.Error()
	}
	writeError(w, status, msg)
}
