// Package media reads what the catalog needs from image files: the GPS fix
// embedded by the camera and grid thumbnails.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"

	"github.com/msomdec/snapmap/internal/domain"
)

// ExifLocator reads the coordinate fix a camera wrote into the image's GPS
// IFD. It implements service.Locator.
type ExifLocator struct{}

func (ExifLocator) Locate(ctx context.Context, imagePath string) (*domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadLocation(imagePath)
}

// ReadLocation extracts latitude, longitude and, when present, altitude and
// horizontal accuracy from the EXIF block of the file at path. It returns
// domain.ErrLocationUnavailable when the file carries no usable GPS data.
func ReadLocation(path string) (*domain.Location, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	raw, err := exif.SearchAndExtractExifWithReader(f)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return nil, domain.ErrLocationUnavailable
		}
		return nil, fmt.Errorf("%w: search exif: %w", domain.ErrLocationUnavailable, err)
	}

	entries, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: parse exif: %w", domain.ErrLocationUnavailable, err)
	}

	tags := make(map[string]exif.ExifTag, len(entries))
	for _, e := range entries {
		if _, seen := tags[e.TagName]; !seen {
			tags[e.TagName] = e
		}
	}
	return locationFromTags(tags)
}

func locationFromTags(tags map[string]exif.ExifTag) (*domain.Location, error) {
	lat, err := coordinate(tags, "GPSLatitude", "GPSLatitudeRef", "S")
	if err != nil {
		return nil, err
	}
	lon, err := coordinate(tags, "GPSLongitude", "GPSLongitudeRef", "W")
	if err != nil {
		return nil, err
	}

	loc := &domain.Location{Latitude: lat, Longitude: lon}
	if !loc.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range", domain.ErrLocationUnavailable)
	}

	if alt, ok := firstRational(tags["GPSAltitude"].Value); ok {
		// Altitude ref 1 means below sea level.
		if ref, ok := tags["GPSAltitudeRef"].Value.([]byte); ok && len(ref) > 0 && ref[0] == 1 {
			alt = -alt
		}
		loc.Altitude = &alt
	}
	if acc, ok := firstRational(tags["GPSHPositioningError"].Value); ok {
		loc.Accuracy = &acc
	}
	return loc, nil
}

func coordinate(tags map[string]exif.ExifTag, valueTag, refTag, negativeRef string) (float64, error) {
	tag, ok := tags[valueTag]
	if !ok {
		return 0, fmt.Errorf("%w: no %s", domain.ErrLocationUnavailable, valueTag)
	}
	parts, ok := tag.Value.([]exifcommon.Rational)
	if !ok {
		return 0, fmt.Errorf("%w: %s has type %T", domain.ErrLocationUnavailable, valueTag, tag.Value)
	}
	ref, _ := tags[refTag].Value.(string)
	return decimalDegrees(parts, ref, negativeRef)
}

// decimalDegrees converts degrees/minutes/seconds rationals to a signed
// decimal value.
func decimalDegrees(parts []exifcommon.Rational, ref, negativeRef string) (float64, error) {
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: expected 3 rationals, got %d", domain.ErrLocationUnavailable, len(parts))
	}
	var dms [3]float64
	for i, r := range parts {
		if r.Denominator == 0 {
			return 0, fmt.Errorf("%w: zero denominator", domain.ErrLocationUnavailable)
		}
		dms[i] = float64(r.Numerator) / float64(r.Denominator)
	}
	v := dms[0] + dms[1]/60 + dms[2]/3600
	if ref == negativeRef {
		v = -v
	}
	return v, nil
}

func firstRational(v any) (float64, bool) {
	rs, ok := v.([]exifcommon.Rational)
	if !ok || len(rs) == 0 || rs[0].Denominator == 0 {
		return 0, false
	}
	return float64(rs[0].Numerator) / float64(rs[0].Denominator), true
}
