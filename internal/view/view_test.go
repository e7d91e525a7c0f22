package view_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/msomdec/snapmap/internal/domain"
	"github.com/msomdec/snapmap/internal/service"
	"github.com/msomdec/snapmap/internal/view"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func floatPtr(v float64) *float64 { return &v }

func TestGalleryPage(t *testing.T) {
	photos := []domain.Photo{
		{ID: 7, URI: "/archive/b.jpg", Timestamp: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), Location: &domain.Location{Latitude: 10, Longitude: 20}},
		{ID: 3, URI: "/archive/a.jpg", Timestamp: time.Date(2023, 5, 6, 10, 0, 0, 0, time.UTC)},
	}

	html := render(t, view.GalleryPage(photos, "", time.UTC))

	for _, want := range []string{
		"<!doctype html>",
		`id="photo-grid"`,
		`id="photo-7"`,
		`id="photo-3"`,
		`href="/photos/7"`,
		`src="/photos/7/thumb"`,
		"· 10,20",
		`data-on-click="@post(&#39;/photos/7/delete?from=grid&#39;)"`,
		"Gallery · snapmap",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("gallery missing %q", want)
		}
	}
}

func TestPhotoGridEscapesQuery(t *testing.T) {
	html := render(t, view.PhotoGrid(nil, "<b>x</b>", time.UTC))

	if strings.Contains(html, "<b>") {
		t.Fatalf("query rendered unescaped: %s", html)
	}
	if !strings.Contains(html, "&lt;b&gt;x&lt;/b&gt;") {
		t.Errorf("expected escaped query in empty message, got %s", html)
	}
	if strings.Contains(html, "<html") {
		t.Error("grid fragment should not include the layout")
	}
}

func TestPhotoGridEmpty(t *testing.T) {
	html := render(t, view.PhotoGrid(nil, "", time.UTC))
	if !strings.Contains(html, "No photos yet") {
		t.Errorf("expected empty message, got %s", html)
	}
}

func TestDetailPage(t *testing.T) {
	p := &domain.Photo{
		ID:        4,
		URI:       "/archive/c.jpg",
		Timestamp: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		Location:  &domain.Location{Latitude: 48.8584, Longitude: 2.2945, Altitude: floatPtr(35), Accuracy: floatPtr(4.5)},
	}

	html := render(t, view.DetailPage(p, 2048, time.UTC))

	for _, want := range []string{
		`id="photo-4"`,
		`src="/photos/4/file"`,
		`href="/map?q=48.8584%2C2.2945"`,
		"48.8584,2.2945",
		"35.0 m",
		"±4.5 m",
		"/archive/c.jpg · 2.0 kB",
		"@post(&#39;/photos/4/delete&#39;)",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("detail missing %q", want)
		}
	}
}

func TestDetailPageMissingFile(t *testing.T) {
	p := &domain.Photo{ID: 5, URI: "/archive/gone.jpg", Timestamp: time.Now()}

	html := render(t, view.DetailPage(p, -1, time.UTC))

	if !strings.Contains(html, "missing") {
		t.Error("expected missing file size")
	}
	if strings.Contains(html, "<dt>Location</dt>") {
		t.Error("unlocated photo should not show a location")
	}
}

func TestMapPage(t *testing.T) {
	m := &service.MapView{
		Region: service.MapRegion{Latitude: 10, Longitude: 20, LatitudeDelta: 0.1, LongitudeDelta: 0.1},
		Markers: []service.MapMarker{
			{ID: 2, Latitude: 10, Longitude: 20, Title: "1/2/2024", Description: "10,20"},
		},
	}

	html := render(t, view.MapPage(m))

	for _, want := range []string{
		"leaflet.js",
		`id="map-data"`,
		`"markers":[{"id":2`,
		`<a href="/photos/2">1/2/2024</a> 10,20`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("map page missing %q", want)
		}
	}
}

func TestMapPageNoMarkers(t *testing.T) {
	html := render(t, view.MapPage(&service.MapView{Markers: []service.MapMarker{}}))
	if !strings.Contains(html, "No photos with a location yet.") {
		t.Error("expected empty map message")
	}
}
