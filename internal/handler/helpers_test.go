package handler_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/snapmap/internal/handler"
	"github.com/msomdec/snapmap/internal/repository/filesystem"
	"github.com/msomdec/snapmap/internal/repository/sqlite"
	"github.com/msomdec/snapmap/internal/service"
)

type testApp struct {
	catalog *service.CatalogService
	db      *sqlite.DB
	archive *filesystem.Archive
	server  *httptest.Server
}

func newTestApp(t *testing.T, limiter *service.TokenBucket) *testApp {
	t.Helper()
	dir := t.TempDir()

	db, err := sqlite.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	archive, err := filesystem.NewArchive(filepath.Join(dir, "photos"))
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}

	catalog := service.NewCatalogService(db.Photos(), archive, time.UTC)
	capture := service.NewCaptureService(nil, time.Second)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, catalog, capture, limiter, 8<<20)
	srv := httptest.NewServer(handler.Instrument(handler.SecurityHeaders(mux)))
	t.Cleanup(srv.Close)

	return &testApp{catalog: catalog, db: db, archive: archive, server: srv}
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	return tintedJPEG(t, 128)
}

// tintedJPEG encodes a gradient whose blue channel is fixed, so different
// tints give different file contents.
func tintedJPEG(t *testing.T, blue uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		for y := 0; y < 48; y++ {
			img.Set(x, y, color.RGBA{uint8(x * 4), uint8(y * 5), blue, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// uploadForm builds a multipart capture upload.
func uploadForm(t *testing.T, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if data != nil {
		fw, err := mw.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(data)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func (a *testApp) upload(t *testing.T, filename string, data []byte, fields map[string]string) *http.Response {
	t.Helper()
	body, contentType := uploadForm(t, filename, data, fields)
	resp, err := http.Post(a.server.URL+"/photos", contentType, body)
	if err != nil {
		t.Fatalf("POST /photos: %v", err)
	}
	return resp
}

func (a *testApp) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(a.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func noRedirectClient() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}
