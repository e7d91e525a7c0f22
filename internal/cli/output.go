package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/msomdec/snapmap/internal/domain"
	"github.com/msomdec/snapmap/internal/service"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

// photoRecord is the machine-readable form of a photo.
type photoRecord struct {
	ID        int64     `json:"id" yaml:"id"`
	URI       string    `json:"uri" yaml:"uri"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Latitude  *float64  `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Altitude  *float64  `json:"altitude,omitempty" yaml:"altitude,omitempty"`
	Accuracy  *float64  `json:"accuracy,omitempty" yaml:"accuracy,omitempty"`
}

func toRecords(photos []domain.Photo) []photoRecord {
	out := make([]photoRecord, len(photos))
	for i, p := range photos {
		r := photoRecord{ID: p.ID, URI: p.URI, Timestamp: p.Timestamp.UTC()}
		if l := p.Location; l != nil {
			lat, lon := l.Latitude, l.Longitude
			r.Latitude, r.Longitude = &lat, &lon
			r.Altitude, r.Accuracy = l.Altitude, l.Accuracy
		}
		out[i] = r
	}
	return out
}

// encode writes v as JSON or YAML. It reports false for the table format,
// which each command renders itself.
func encode(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

func writePhotos(w io.Writer, format string, photos []domain.Photo, loc *time.Location) error {
	if done, err := encode(w, format, toRecords(photos)); done {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTAKEN\tLOCATION\tFILE")
	for _, p := range photos {
		where := "-"
		if p.Location != nil {
			where = service.CoordinateString(p.Location)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, service.LocalDateTime(p.Timestamp, loc), where, p.URI)
	}
	return tw.Flush()
}

func writeMap(w io.Writer, format string, m *service.MapView) error {
	if done, err := encode(w, format, m); done {
		return err
	}

	fmt.Fprintf(w, "Region: %g,%g (delta %g x %g)\n",
		m.Region.Latitude, m.Region.Longitude, m.Region.LatitudeDelta, m.Region.LongitudeDelta)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLATITUDE\tLONGITUDE\tTITLE\tDESCRIPTION")
	for _, mk := range m.Markers {
		fmt.Fprintf(tw, "%d\t%g\t%g\t%s\t%s\n", mk.ID, mk.Latitude, mk.Longitude, mk.Title, mk.Description)
	}
	return tw.Flush()
}

func writeAudit(w io.Writer, format string, report *service.AuditReport) error {
	if done, err := encode(w, format, report); done {
		return err
	}

	if report.Clean() {
		fmt.Fprintln(w, "Archive and catalog agree.")
		return nil
	}
	for _, f := range report.Orphaned {
		fmt.Fprintf(w, "orphaned\t%s\n", f)
	}
	for _, f := range report.Missing {
		fmt.Fprintf(w, "missing\t%s\n", f)
	}
	return nil
}
