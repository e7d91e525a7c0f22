package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/msomdec/snapmap/internal/domain"
	"github.com/msomdec/snapmap/internal/metrics"
)

// CatalogService owns the photo lifecycle. It is the only writer of both the
// record store and the file archive, and keeps them consistent: every row
// points at an archived file.
type CatalogService struct {
	photos  domain.PhotoRepository
	archive domain.FileArchive
	loc     *time.Location
}

// NewCatalogService creates a new CatalogService. loc is the time zone used
// to render dates for search and display; nil means time.Local.
func NewCatalogService(photos domain.PhotoRepository, archive domain.FileArchive, loc *time.Location) *CatalogService {
	if loc == nil {
		loc = time.Local
	}
	return &CatalogService{photos: photos, archive: archive, loc: loc}
}

// Location returns the time zone used for rendering dates.
func (s *CatalogService) Location() *time.Location {
	return s.loc
}

// Save archives the candidate's file and then records it. The archive step
// runs first so a failed copy never leaves a row without a file.
func (s *CatalogService) Save(ctx context.Context, c domain.Candidate) (photo *domain.Photo, err error) {
	defer func() { record("save", err) }()

	if err := validateCandidate(c); err != nil {
		return nil, err
	}

	// Once started, a save runs to completion.
	ctx = context.WithoutCancel(ctx)

	uri, err := s.archive.Archive(ctx, c.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("archive capture: %w", ensure(err, domain.ErrArchiveFailure))
	}

	photo = &domain.Photo{
		URI:       uri,
		Timestamp: c.Timestamp.UTC(),
		Location:  cloneLocation(c.Location),
	}
	if err := s.photos.Insert(ctx, photo); err != nil {
		// The archived copy is left in place; Audit reports it as an orphan.
		slog.Warn("photo insert failed, archived file left in place", "uri", uri, "error", err)
		return nil, fmt.Errorf("insert photo: %w", ensure(err, domain.ErrWriteFailure))
	}

	slog.Info("photo saved", "id", photo.ID, "uri", uri, "located", photo.Location != nil)
	return photo, nil
}

// List returns every photo, newest first.
func (s *CatalogService) List(ctx context.Context) (photos []domain.Photo, err error) {
	defer func() { record("list", err) }()

	photos, err = s.photos.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	return photos, nil
}

// Search filters the catalog by query. A blank query returns everything;
// see MatchesQuery for the matching rules.
func (s *CatalogService) Search(ctx context.Context, query string) (matches []domain.Photo, err error) {
	defer func() { record("search", err) }()

	all, err := s.photos.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return all, nil
	}

	matches = []domain.Photo{}
	for _, p := range all {
		if MatchesQuery(p, query, s.loc) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// Get returns a single photo.
func (s *CatalogService) Get(ctx context.Context, id int64) (photo *domain.Photo, err error) {
	defer func() { record("get", err) }()

	photo, err = s.photos.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get photo %d: %w", id, err)
	}
	return photo, nil
}

// Delete removes the row for id and then, best effort, the archived file at
// uri. Returns domain.ErrNotFound without touching the archive when no row
// was removed.
func (s *CatalogService) Delete(ctx context.Context, id int64, uri string) (err error) {
	defer func() { record("delete", err) }()

	ctx = context.WithoutCancel(ctx)

	n, err := s.photos.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete photo %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete photo %d: %w", id, domain.ErrNotFound)
	}

	// The row is gone, which is the outcome that counts. A file that cannot
	// be removed is logged and dropped here, nowhere else.
	if rmErr := s.archive.Remove(ctx, uri); rmErr != nil {
		metrics.ArchiveRemoveFailures.Inc()
		slog.Warn("archived file not removed", "id", id, "uri", uri, "error", rmErr)
	}

	slog.Info("photo deleted", "id", id, "uri", uri)
	return nil
}

// DeleteByID looks up the photo's archived path and deletes it.
func (s *CatalogService) DeleteByID(ctx context.Context, id int64) error {
	photo, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.Delete(ctx, id, photo.URI)
}

// AuditReport describes where the store and the archive disagree.
type AuditReport struct {
	Orphaned []string `json:"orphaned" yaml:"orphaned"` // archived files with no row
	Missing  []string `json:"missing" yaml:"missing"`   // rows whose archived file is gone
}

// Clean reports whether store and archive agree.
func (r *AuditReport) Clean() bool {
	return len(r.Orphaned) == 0 && len(r.Missing) == 0
}

// Audit compares the archive directory against the store. It never changes
// either side.
func (s *CatalogService) Audit(ctx context.Context) (report *AuditReport, err error) {
	defer func() { record("audit", err) }()

	uris, err := s.photos.ListURIs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list photo uris: %w", err)
	}
	files, err := s.archive.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("list archive files: %w", err)
	}

	rows := make(map[string]bool, len(uris))
	for _, u := range uris {
		rows[filepath.Clean(u)] = true
	}
	onDisk := make(map[string]bool, len(files))
	for _, f := range files {
		onDisk[filepath.Clean(f)] = true
	}

	report = &AuditReport{}
	for _, f := range files {
		if !rows[filepath.Clean(f)] {
			report.Orphaned = append(report.Orphaned, f)
		}
	}
	for _, u := range uris {
		if !onDisk[filepath.Clean(u)] {
			report.Missing = append(report.Missing, u)
		}
	}

	metrics.ArchiveOrphans.Set(float64(len(report.Orphaned)))
	metrics.ArchiveMissing.Set(float64(len(report.Missing)))
	if !report.Clean() {
		slog.Warn("archive audit found inconsistencies",
			"orphaned", len(report.Orphaned), "missing", len(report.Missing))
	}
	return report, nil
}

// PruneOrphans removes archived files that no row references. It is an
// explicit operator action; Save never cleans up after itself.
func (s *CatalogService) PruneOrphans(ctx context.Context) (int, error) {
	report, err := s.Audit(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range report.Orphaned {
		if err := s.archive.Remove(ctx, f); err != nil {
			slog.Warn("orphaned file not removed", "path", f, "error", err)
			continue
		}
		removed++
	}
	metrics.ArchiveOrphans.Set(float64(len(report.Orphaned) - removed))
	slog.Info("orphaned files pruned", "removed", removed)
	return removed, nil
}

// Count returns the number of photos in the catalog.
func (s *CatalogService) Count(ctx context.Context) (int, error) {
	return s.photos.Count(ctx)
}

func validateCandidate(c domain.Candidate) error {
	if strings.TrimSpace(c.SourcePath) == "" {
		return fmt.Errorf("%w: capture file is required", domain.ErrInvalidInput)
	}
	if c.Timestamp.IsZero() {
		return fmt.Errorf("%w: capture time is required", domain.ErrInvalidInput)
	}
	if c.Location != nil && !c.Location.Valid() {
		return fmt.Errorf("%w: coordinates out of range", domain.ErrInvalidInput)
	}
	return nil
}

func cloneLocation(l *domain.Location) *domain.Location {
	if l == nil {
		return nil
	}
	c := *l
	if l.Altitude != nil {
		v := *l.Altitude
		c.Altitude = &v
	}
	if l.Accuracy != nil {
		v := *l.Accuracy
		c.Accuracy = &v
	}
	return &c
}

// ensure makes err match sentinel without losing the original chain.
func ensure(err, sentinel error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

func record(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		result = "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		result = "invalid"
	default:
		result = "error"
	}
	metrics.CatalogOperations.WithLabelValues(op, result).Inc()
}
