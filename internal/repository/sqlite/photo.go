package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/snapmap/internal/domain"
)

// timestampLayout is fixed width so that lexical order on the TEXT column
// matches chronological order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const photoColumns = "id, uri, timestamp, latitude, longitude, altitude, accuracy"

// PhotoRepository implements domain.PhotoRepository using SQLite.
type PhotoRepository struct {
	db *sql.DB
}

// NewPhotoRepository creates a new SQLite-backed PhotoRepository.
func NewPhotoRepository(db *DB) *PhotoRepository {
	return &PhotoRepository{db: db.SqlDB}
}

func (r *PhotoRepository) Insert(ctx context.Context, photo *domain.Photo) error {
	var lat, lon, alt, acc sql.NullFloat64
	if loc := photo.Location; loc != nil {
		lat = sql.NullFloat64{Float64: loc.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: loc.Longitude, Valid: true}
		alt = nullFloat(loc.Altitude)
		acc = nullFloat(loc.Accuracy)
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO photos (uri, timestamp, latitude, longitude, altitude, accuracy)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		photo.URI, formatTimestamp(photo.Timestamp), lat, lon, alt, acc,
	)
	if err != nil {
		return fmt.Errorf("%w: insert photo: %w", domain.ErrWriteFailure, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: get last insert id: %w", domain.ErrWriteFailure, err)
	}

	photo.ID = id
	return nil
}

func (r *PhotoRepository) GetByID(ctx context.Context, id int64) (*domain.Photo, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+photoColumns+" FROM photos WHERE id = ?", id)
	photo, err := scanPhoto(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return photo, nil
}

func (r *PhotoRepository) ListAll(ctx context.Context) ([]domain.Photo, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+photoColumns+" FROM photos ORDER BY timestamp DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	photos := []domain.Photo{}
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, *photo)
	}
	return photos, rows.Err()
}

func (r *PhotoRepository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM photos WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete photo: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (r *PhotoRepository) ListURIs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT uri FROM photos ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list photo uris: %w", err)
	}
	defer rows.Close()

	var uris []string
	for rows.Next() {
		var uri string
		if err := rows.Scan(&uri); err != nil {
			return nil, fmt.Errorf("scan photo uri: %w", err)
		}
		uris = append(uris, uri)
	}
	return uris, rows.Err()
}

func (r *PhotoRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM photos").Scan(&count); err != nil {
		return 0, fmt.Errorf("count photos: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(s rowScanner) (*domain.Photo, error) {
	var (
		p             domain.Photo
		ts            string
		lat, lon      sql.NullFloat64
		alt, accuracy sql.NullFloat64
	)
	if err := s.Scan(&p.ID, &p.URI, &ts, &lat, &lon, &alt, &accuracy); err != nil {
		return nil, err
	}

	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
	}
	p.Timestamp = t

	// A row with only one of latitude/longitude is treated as unlocated.
	if lat.Valid && lon.Valid {
		p.Location = &domain.Location{
			Latitude:  lat.Float64,
			Longitude: lon.Float64,
			Altitude:  floatPtr(alt),
			Accuracy:  floatPtr(accuracy),
		}
	}
	return &p, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
