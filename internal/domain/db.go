package domain

import "context"

// Database defines lifecycle operations for the underlying database.
// Migrate is idempotent and must succeed before any repository is used;
// a failure means the catalog cannot serve anything.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
