package handler_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestAPIMap(t *testing.T) {
	app := newTestApp(t, nil)
	app.upload(t, "a.jpg", testJPEG(t), map[string]string{"latitude": "10", "longitude": "20"}).Body.Close()
	app.upload(t, "b.jpg", testJPEG(t), nil).Body.Close()
	app.upload(t, "c.jpg", testJPEG(t), map[string]string{"latitude": "-33.5", "longitude": "151.25"}).Body.Close()

	resp := app.get(t, "/api/map")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var m struct {
		Region struct {
			Latitude      float64 `json:"latitude"`
			Longitude     float64 `json:"longitude"`
			LatitudeDelta float64 `json:"latitudeDelta"`
		} `json:"region"`
		Markers []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"markers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("decode map: %v", err)
	}

	if len(m.Markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(m.Markers))
	}
	// Newest located photo first.
	if m.Markers[0].ID != 3 || m.Markers[0].Title != "Photo ID: 3" {
		t.Fatalf("unexpected first marker: %+v", m.Markers[0])
	}
	if m.Region.Latitude != -33.5 || m.Region.Longitude != 151.25 || m.Region.LatitudeDelta != 0.01 {
		t.Fatalf("unexpected region: %+v", m.Region)
	}
}

func TestMapPage(t *testing.T) {
	app := newTestApp(t, nil)

	resp := app.get(t, "/map")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "leaflet") {
		t.Fatal("expected map page to load leaflet")
	}
}
