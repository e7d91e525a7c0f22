package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/msomdec/snapmap/internal/domain"
	"github.com/msomdec/snapmap/internal/repository/sqlite"
)

func ptr(f float64) *float64 { return &f }

func insertPhoto(t *testing.T, repo *sqlite.PhotoRepository, uri string, ts time.Time, loc *domain.Location) *domain.Photo {
	t.Helper()
	p := &domain.Photo{URI: uri, Timestamp: ts, Location: loc}
	if err := repo.Insert(context.Background(), p); err != nil {
		t.Fatalf("Insert %s: %v", uri, err)
	}
	return p
}

func TestPhotoRepository_Insert(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewPhotoRepository(db)
	ctx := context.Background()

	ts := time.Date(2024, 1, 2, 10, 0, 0, 123456789, time.UTC)
	p := insertPhoto(t, repo, "/archive/a.jpg", ts, &domain.Location{
		Latitude: 10, Longitude: 20, Altitude: ptr(35.5), Accuracy: ptr(4),
	})
	if p.ID == 0 {
		t.Fatal("expected photo ID to be set after insert")
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.URI != "/archive/a.jpg" {
		t.Fatalf("expected uri /archive/a.jpg, got %q", got.URI)
	}
	if !got.Timestamp.Equal(ts) {
		t.Fatalf("expected timestamp %v, got %v", ts, got.Timestamp)
	}
	if got.Location == nil {
		t.Fatal("expected location to be set")
	}
	if got.Location.Latitude != 10 || got.Location.Longitude != 20 {
		t.Fatalf("expected 10,20, got %v,%v", got.Location.Latitude, got.Location.Longitude)
	}
	if got.Location.Altitude == nil || *got.Location.Altitude != 35.5 {
		t.Fatalf("expected altitude 35.5, got %v", got.Location.Altitude)
	}
	if got.Location.Accuracy == nil || *got.Location.Accuracy != 4 {
		t.Fatalf("expected accuracy 4, got %v", got.Location.Accuracy)
	}
}

func TestPhotoRepository_Insert_NoLocation(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewPhotoRepository(db)

	p := insertPhoto(t, repo, "/archive/b.jpg", time.Now(), nil)

	got, err := repo.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Location != nil {
		t.Fatalf("expected nil location, got %+v", got.Location)
	}
}

func TestPhotoRepository_Insert_LocationWithoutOptionalFields(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewPhotoRepository(db)

	p := insertPhoto(t, repo, "/archive/c.jpg", time.Now(), &domain.Location{Latitude: -33.86, Longitude: 151.2})

	got, err := repo.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Location == nil {
		t.Fatal("expected location")
	}
	if got.Location.Altitude != nil || got.Location.Accuracy != nil {
		t.Fatalf("expected nil altitude/accuracy, got %v/%v", got.Location.Altitude, got.Location.Accuracy)
	}
}

func TestPhotoRepository_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewPhotoRepository(db)

	_, err := repo.GetByID(context.Background(), 99999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPhotoRepository_ListAll_Empty(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewPhotoRepository(db)

	photos, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if photos == nil || len(photos) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", photos)
	}
}

func TestPhotoRepository_ListAll_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewPhotoRepository(db)

	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	insertPhoto(t, repo, "/archive/1.jpg", base, nil)
	insertPhoto(t, repo, "/archive/3.jpg", base.Add(48*time.Hour), nil)
	insertPhoto(t, repo, "/archive/2.jpg", base.Add(24*time.Hour), nil)
	// Sub-second precision must still sort after the whole second.
	insertPhoto(t, repo, "/archive/2b.jpg", base.Add(24*time.Hour+500*time.Millisecond), nil)

	photos, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}

	want := []string{"/archive/3.jpg", "/archive/2b.jpg", "/archive/2.jpg", "/archive/1.jpg"}
	if len(photos) != len(want) {
		t.Fatalf("expected %d photos, got %d", len(want), len(photos))
	}
	for i, uri := range want {
		if photos[i].URI != uri {
			t.Fatalf("position %d: expected %s, got %s", i, uri, photos[i].URI)
		}
	}
}

func TestPhotoRepository_DeleteByID(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewPhotoRepository(db)
	ctx := context.Background()

	p := insertPhoto(t, repo, "/archive/d.jpg", time.Now(), nil)

	n, err := repo.DeleteByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row changed, got %d", n)
	}

	// Deleting again is not an error; it just changes nothing.
	n, err = repo.DeleteByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("second DeleteByID: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 rows changed, got %d", n)
	}
}

func TestPhotoRepository_IDsNotReused(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewPhotoRepository(db)
	ctx := context.Background()

	first := insertPhoto(t, repo, "/archive/e.jpg", time.Now(), nil)
	if _, err := repo.DeleteByID(ctx, first.ID); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}

	second := insertPhoto(t, repo, "/archive/f.jpg", time.Now(), nil)
	if second.ID <= first.ID {
		t.Fatalf("expected new id greater than %d, got %d", first.ID, second.ID)
	}
}

func TestPhotoRepository_ListURIsAndCount(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewPhotoRepository(db)
	ctx := context.Background()

	insertPhoto(t, repo, "/archive/g.jpg", time.Now(), nil)
	insertPhoto(t, repo, "/archive/h.jpg", time.Now(), nil)

	uris, err := repo.ListURIs(ctx)
	if err != nil {
		t.Fatalf("ListURIs: %v", err)
	}
	if len(uris) != 2 || uris[0] != "/archive/g.jpg" || uris[1] != "/archive/h.jpg" {
		t.Fatalf("unexpected uris %v", uris)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
}

func TestPhotoRepository_Insert_ClosedDB(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewPhotoRepository(db)
	db.Close()

	err := repo.Insert(context.Background(), &domain.Photo{URI: "/archive/x.jpg", Timestamp: time.Now()})
	if !errors.Is(err, domain.ErrWriteFailure) {
		t.Fatalf("expected ErrWriteFailure, got %v", err)
	}
}
