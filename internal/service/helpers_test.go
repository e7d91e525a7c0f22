package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/snapmap/internal/domain"
	"github.com/msomdec/snapmap/internal/repository/filesystem"
	"github.com/msomdec/snapmap/internal/repository/sqlite"
	"github.com/msomdec/snapmap/internal/service"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestArchive(t *testing.T) *filesystem.Archive {
	t.Helper()
	a, err := filesystem.NewArchive(filepath.Join(t.TempDir(), "photos"))
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	return a
}

func newTestCatalog(t *testing.T) (*service.CatalogService, *sqlite.DB, *filesystem.Archive) {
	t.Helper()
	db := newTestDB(t)
	archive := newTestArchive(t)
	return service.NewCatalogService(db.Photos(), archive, time.UTC), db, archive
}

// writeCapture simulates a camera writing a transient capture file.
func writeCapture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write capture: %v", err)
	}
	return path
}

func saveCapture(t *testing.T, svc *service.CatalogService, name string, ts time.Time, loc *domain.Location) *domain.Photo {
	t.Helper()
	p, err := svc.Save(context.Background(), domain.Candidate{
		SourcePath: writeCapture(t, name, "pixels of "+name),
		Timestamp:  ts,
		Location:   loc,
	})
	if err != nil {
		t.Fatalf("Save %s: %v", name, err)
	}
	return p
}

func ids(photos []domain.Photo) []int64 {
	out := make([]int64, len(photos))
	for i, p := range photos {
		out[i] = p.ID
	}
	return out
}
