package service_test

import (
	"testing"
	"time"

	"github.com/msomdec/snapmap/internal/domain"
	"github.com/msomdec/snapmap/internal/service"
)

func TestBuildMapView_NoLocatedPhotos(t *testing.T) {
	view := service.BuildMapView([]domain.Photo{{ID: 1, Timestamp: time.Now()}}, time.UTC)

	if len(view.Markers) != 0 {
		t.Fatalf("expected no markers, got %d", len(view.Markers))
	}
	if view.Region.Latitude != 0 || view.Region.Longitude != 0 {
		t.Fatalf("expected region at 0,0, got %+v", view.Region)
	}
	if view.Region.LatitudeDelta != 0.01 || view.Region.LongitudeDelta != 0.01 {
		t.Fatalf("expected 0.01 deltas, got %+v", view.Region)
	}
}

func TestBuildMapView_Markers(t *testing.T) {
	photos := []domain.Photo{
		{ID: 7, URI: "/a/7.jpg", Timestamp: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), Location: &domain.Location{Latitude: 10, Longitude: 20}},
		{ID: 6, URI: "/a/6.jpg", Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{ID: 5, URI: "/a/5.jpg", Timestamp: time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), Location: &domain.Location{Latitude: -1, Longitude: -2}},
	}

	view := service.BuildMapView(photos, time.UTC)

	if len(view.Markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(view.Markers))
	}
	m := view.Markers[0]
	if m.ID != 7 || m.Title != "Photo ID: 7" {
		t.Fatalf("unexpected first marker %+v", m)
	}
	if m.Description != "Taken at: 1/2/2024, 10:00:00 AM" {
		t.Fatalf("unexpected description %q", m.Description)
	}
	if view.Markers[1].ID != 5 {
		t.Fatalf("expected second marker for photo 5, got %d", view.Markers[1].ID)
	}
	if view.Region.Latitude != 10 || view.Region.Longitude != 20 {
		t.Fatalf("expected region centred on first marker, got %+v", view.Region)
	}
}
