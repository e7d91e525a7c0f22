package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/msomdec/snapmap/internal/domain"
)

// defaultRegionDelta is the span shown around the initial map centre.
const defaultRegionDelta = 0.01

// MapRegion is the initial viewport of the map.
type MapRegion struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	LatitudeDelta  float64 `json:"latitudeDelta"`
	LongitudeDelta float64 `json:"longitudeDelta"`
}

// MapMarker is one located photo on the map.
type MapMarker struct {
	ID          int64     `json:"id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	URI         string    `json:"uri"`
	Timestamp   time.Time `json:"timestamp"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

// MapView is everything the map page needs.
type MapView struct {
	Region  MapRegion   `json:"region"`
	Markers []MapMarker `json:"markers"`
}

// BuildMapView keeps only located photos, in the given order, and centres
// the region on the first of them (0,0 when there are none).
func BuildMapView(photos []domain.Photo, loc *time.Location) MapView {
	view := MapView{
		Region:  MapRegion{LatitudeDelta: defaultRegionDelta, LongitudeDelta: defaultRegionDelta},
		Markers: []MapMarker{},
	}
	for _, p := range photos {
		if p.Location == nil {
			continue
		}
		view.Markers = append(view.Markers, MapMarker{
			ID:          p.ID,
			Latitude:    p.Location.Latitude,
			Longitude:   p.Location.Longitude,
			URI:         p.URI,
			Timestamp:   p.Timestamp,
			Title:       "Photo ID: " + strconv.FormatInt(p.ID, 10),
			Description: "Taken at: " + LocalDateTime(p.Timestamp, loc),
		})
	}
	if len(view.Markers) > 0 {
		view.Region.Latitude = view.Markers[0].Latitude
		view.Region.Longitude = view.Markers[0].Longitude
	}
	return view
}

// Map returns the map view for photos matching query (all when blank).
func (s *CatalogService) Map(ctx context.Context, query string) (*MapView, error) {
	photos, err := s.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("map photos: %w", err)
	}
	view := BuildMapView(photos, s.loc)
	return &view, nil
}
