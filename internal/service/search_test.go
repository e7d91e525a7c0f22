package service_test

import (
	"testing"
	"time"

	"github.com/msomdec/snapmap/internal/domain"
	"github.com/msomdec/snapmap/internal/service"
)

func TestMatchesQuery(t *testing.T) {
	located := domain.Photo{
		ID:        1,
		Timestamp: time.Date(2024, 11, 5, 18, 30, 0, 0, time.UTC),
		Location:  &domain.Location{Latitude: 48.8584, Longitude: -2.5},
	}
	unlocated := domain.Photo{
		ID:        2,
		Timestamp: time.Date(2023, 7, 14, 9, 0, 0, 0, time.UTC),
	}

	cases := []struct {
		name  string
		photo domain.Photo
		query string
		want  bool
	}{
		{"full date", located, "11/5/2024", true},
		{"partial date", located, "5/2024", true},
		{"year only", unlocated, "2023", true},
		{"coordinates", located, "48.8584,-2.5", true},
		{"latitude prefix", located, "48.85", true},
		{"padded query", located, "  11/5  ", true},
		{"coordinates need location", unlocated, "48.8584", false},
		{"no match", located, "nomatch", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := service.MatchesQuery(tc.photo, tc.query, time.UTC); got != tc.want {
				t.Fatalf("MatchesQuery(%q) = %v, want %v", tc.query, got, tc.want)
			}
		})
	}
}

func TestMatchesQuery_UsesLocalDate(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	p := domain.Photo{Timestamp: time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)}

	// 20:00 UTC on Jan 1 is already Jan 2 in Tokyo.
	if !service.MatchesQuery(p, "1/2/2024", tokyo) {
		t.Fatal("expected local date 1/2/2024 to match in JST")
	}
	if service.MatchesQuery(p, "1/1/2024", tokyo) {
		t.Fatal("UTC date should not match in JST")
	}
}

func TestCoordinateString(t *testing.T) {
	cases := []struct {
		loc  *domain.Location
		want string
	}{
		{&domain.Location{Latitude: 10, Longitude: 20}, "10,20"},
		{&domain.Location{Latitude: -33.8688, Longitude: 151.2093}, "-33.8688,151.2093"},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := service.CoordinateString(tc.loc); got != tc.want {
			t.Fatalf("CoordinateString(%+v) = %q, want %q", tc.loc, got, tc.want)
		}
	}
}

func TestLocalDateTime(t *testing.T) {
	ts := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	if got := service.LocalDateTime(ts, time.UTC); got != "1/2/2024, 3:04:05 PM" {
		t.Fatalf("unexpected date time %q", got)
	}
}
