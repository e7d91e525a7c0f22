package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/msomdec/snapmap/internal/domain"
)

const (
	// DateLayout renders a capture date the way the gallery shows it (M/D/YYYY).
	DateLayout = "1/2/2006"
	// DateTimeLayout renders a capture date and time for captions and markers.
	DateTimeLayout = "1/2/2006, 3:04:05 PM"
)

// LocalDate renders t as a date in loc.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// LocalDateTime renders t as a date and time in loc.
func LocalDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateTimeLayout)
}

// CoordinateString renders a location as "lat,lon" using the shortest
// decimal form of each value, e.g. "10,20" or "48.8584,2.2945".
func CoordinateString(l *domain.Location) string {
	if l == nil {
		return ""
	}
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}

// MatchesQuery reports whether query is a case-insensitive substring of the
// photo's local capture date or, for located photos, of its coordinates.
// Callers handle the blank query.
func MatchesQuery(p domain.Photo, query string, loc *time.Location) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if strings.Contains(strings.ToLower(LocalDate(p.Timestamp, loc)), q) {
		return true
	}
	if p.Location == nil {
		return false
	}
	return strings.Contains(CoordinateString(p.Location), q)
}
