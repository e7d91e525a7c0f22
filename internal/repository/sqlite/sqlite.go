package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/msomdec/snapmap/internal/domain"
	"github.com/msomdec/snapmap/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// DB owns the process-wide SQLite connection and hands out repositories
// bound to it.
type DB struct {
	SqlDB *sql.DB
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys. Any failure is reported as
// domain.ErrStorageUnavailable.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", domain.ErrStorageUnavailable, err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enable WAL mode: %w", domain.ErrStorageUnavailable, err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enable foreign keys: %w", domain.ErrStorageUnavailable, err)
	}

	// One connection: the catalog has a single writer and SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %w", domain.ErrStorageUnavailable, err)
	}

	return &DB{SqlDB: db}, nil
}

// Migrate ensures the schema exists. Safe to call on every start.
func (d *DB) Migrate(ctx context.Context) error {
	if err := migrations.Run(ctx, d.SqlDB); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// SchemaVersion names the newest applied migration. Call it after Migrate.
func (d *DB) SchemaVersion(ctx context.Context) (string, error) {
	v, err := migrations.Current(ctx, d.SqlDB)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return v, nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	return d.SqlDB.Close()
}

// Photos returns the photo repository bound to this database.
func (d *DB) Photos() *PhotoRepository {
	return NewPhotoRepository(d)
}
