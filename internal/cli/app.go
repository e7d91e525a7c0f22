package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/msomdec/snapmap/internal/config"
	"github.com/msomdec/snapmap/internal/domain"
	"github.com/msomdec/snapmap/internal/media"
	"github.com/msomdec/snapmap/internal/repository/filesystem"
	"github.com/msomdec/snapmap/internal/repository/sqlite"
	"github.com/msomdec/snapmap/internal/service"
)

// app wires the catalog for one command invocation.
type app struct {
	cfg     *config.Config
	db      *sqlite.DB
	archive *filesystem.Archive
	catalog *service.CatalogService
	capture *service.CaptureService
}

// openApp opens the store, applies migrations and builds the services.
// locator may be nil for captures that must not be located.
func openApp(ctx context.Context, cfg *config.Config, locator service.Locator) (*app, error) {
	loc, err := cfg.TimeLocation()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create database dir: %w", domain.ErrStorageUnavailable, err)
	}
	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	archive, err := filesystem.NewArchive(cfg.Archive.Dir)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		db:      db,
		archive: archive,
		catalog: service.NewCatalogService(db.Photos(), archive, loc),
		capture: service.NewCaptureService(locator, cfg.Location.Wait),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// importFile runs one capture through the capture flow and saves it.
func (a *app) importFile(ctx context.Context, path string, fix *domain.Location) (*domain.Photo, error) {
	candidate, err := a.capture.Candidate(ctx, path, fix)
	if err != nil {
		return nil, err
	}
	return a.catalog.Save(ctx, candidate)
}

// defaultLocator reads fixes from the image's own EXIF data.
func defaultLocator() service.Locator {
	return media.ExifLocator{}
}

// isNotFound reports whether err means the photo does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
