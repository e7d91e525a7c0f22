package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/msomdec/snapmap/internal/domain"
	"github.com/msomdec/snapmap/internal/service"
)

var errUnsupportedType = errors.New("unsupported file type: only images are accepted")

// CaptureHandler accepts captures uploaded by a camera client.
type CaptureHandler struct {
	capture  *service.CaptureService
	catalog  *service.CatalogService
	maxBytes int64
}

// NewCaptureHandler creates a new CaptureHandler. maxBytes bounds the
// request body.
func NewCaptureHandler(capture *service.CaptureService, catalog *service.CatalogService, maxBytes int64) *CaptureHandler {
	return &CaptureHandler{capture: capture, catalog: catalog, maxBytes: maxBytes}
}

// HandleUpload saves a multipart capture. The "image" part is required;
// "latitude" and "longitude" (together), "altitude" and "accuracy" are an
// optional fix from the client. Without one, the fix is read from the
// image's EXIF data when available.
// POST /photos
func (h *CaptureHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "image too large or malformed form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no image file provided")
		return
	}
	defer file.Close()

	fix, err := parseFix(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	path, cleanup, err := stageUpload(file, header)
	if err != nil {
		if errors.Is(err, errUnsupportedType) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("stage upload", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	// The staged file is this request's transient capture; the archive keeps its own copy.
	defer cleanup()

	candidate, err := h.capture.Candidate(r.Context(), path, fix)
	if err != nil {
		writeJSONError(w, err, "build capture candidate")
		return
	}

	photo, err := h.catalog.Save(r.Context(), candidate)
	if err != nil {
		writeJSONError(w, err, "save photo")
		return
	}

	w.Header().Set("Location", photoPath(photo.ID))
	writeJSON(w, http.StatusCreated, toPhotoDTO(*photo))
}

func parseFix(r *http.Request) (*domain.Location, error) {
	latStr := strings.TrimSpace(r.FormValue("latitude"))
	lonStr := strings.TrimSpace(r.FormValue("longitude"))
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, fmt.Errorf("latitude and longitude must be provided together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude")
	}
	loc := &domain.Location{Latitude: lat, Longitude: lon}

	if loc.Altitude, err = optionalFloat(r.FormValue("altitude")); err != nil {
		return nil, fmt.Errorf("invalid altitude")
	}
	if loc.Accuracy, err = optionalFloat(r.FormValue("accuracy")); err != nil {
		return nil, fmt.Errorf("invalid accuracy")
	}
	return loc, nil
}

func optionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// stageUpload writes the uploaded part to a private temp directory under
// the client's base file name, so the archive derives the same name a
// device capture would have.
func stageUpload(file multipart.File, header *multipart.FileHeader) (string, func(), error) {
	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	sniff = sniff[:n]

	if !isImage(sniff, header.Filename) {
		return "", nil, errUnsupportedType
	}

	dir, err := os.MkdirTemp("", "snapmap-upload-*")
	if err != nil {
		return "", nil, fmt.Errorf("create staging dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	path := filepath.Join(dir, uploadName(header.Filename, sniff))
	out, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("create staged file: %w", err)
	}
	_, err = io.Copy(out, io.MultiReader(bytes.NewReader(sniff), file))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write staged file: %w", err)
	}
	return path, cleanup, nil
}

// uploadName is a fresh archive name for an upload. Client filenames repeat
// (every camera sends image.jpg), so only the extension is kept.
func uploadName(filename string, head []byte) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(strings.ReplaceAll(filename, `\`, "/"))))
	if ext == "" || ext == "." {
		switch http.DetectContentType(head) {
		case "image/png":
			ext = ".png"
		case "image/gif":
			ext = ".gif"
		case "image/webp":
			ext = ".webp"
		default:
			ext = ".jpg"
		}
	}
	return uuid.NewString() + ext
}

func isImage(head []byte, filename string) bool {
	if strings.HasPrefix(http.DetectContentType(head), "image/") {
		return true
	}
	// HEIC/HEIF captures are not recognised by content sniffing.
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".heic", ".heif":
		return true
	}
	return false
}
