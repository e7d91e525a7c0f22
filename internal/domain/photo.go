package domain

import (
	"context"
	"math"
	"time"
)

// Photo is a captured image whose file lives in the archive and whose
// metadata lives in the record store.
type Photo struct {
	ID        int64
	URI       string // Absolute path of the archived file
	Timestamp time.Time
	Location  *Location // nil when no coordinate fix was available
}

// Location is a coordinate fix. Latitude and longitude are always present
// together; altitude and accuracy are optional.
type Location struct {
	Latitude  float64
	Longitude float64
	Altitude  *float64
	Accuracy  *float64 // Horizontal accuracy in meters
}

// Valid reports whether the latitude and longitude are finite and in range.
func (l *Location) Valid() bool {
	if l == nil {
		return false
	}
	if math.IsNaN(l.Latitude) || math.IsNaN(l.Longitude) {
		return false
	}
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// Candidate is an unpersisted photo produced by a capture. It points at the
// transient capture file and has no id yet.
type Candidate struct {
	SourcePath string
	Timestamp  time.Time
	Location   *Location
}

// PhotoRepository handles photo metadata persistence.
type PhotoRepository interface {
	Insert(ctx context.Context, photo *Photo) error
	GetByID(ctx context.Context, id int64) (*Photo, error)
	// ListAll returns every photo, newest capture first.
	ListAll(ctx context.Context) ([]Photo, error)
	// DeleteByID returns the number of rows removed; 0 when the id does not exist.
	DeleteByID(ctx context.Context, id int64) (int64, error)
	ListURIs(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
}

// FileArchive abstracts the managed directory holding durable copies of
// captured images.
type FileArchive interface {
	// Archive copies the file at sourcePath into the archive and returns the
	// archived path. The source is left in place.
	Archive(ctx context.Context, sourcePath string) (string, error)
	Remove(ctx context.Context, archivedPath string) error
	Files(ctx context.Context) ([]string, error)
}
