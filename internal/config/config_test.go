package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/snapmap/internal/config"
	"github.com/msomdec/snapmap/internal/watch"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, filepath.Join("data", "snapmap.db"), cfg.Database.Path)
	assert.Equal(t, filepath.Join("data", "photos"), cfg.Archive.Dir)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.Location.Wait)
	assert.Equal(t, 500*time.Millisecond, cfg.Capture.Settle)
	assert.Equal(t, watch.DefaultExtensions, cfg.Capture.Extensions)
	assert.Contains(t, cfg.Capture.Extensions, ".heif")
	assert.Equal(t, "@daily", cfg.Audit.Schedule)

	loc, err := cfg.TimeLocation()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SNAPMAP_DATA_DIR", "/var/lib/snapmap")
	t.Setenv("SNAPMAP_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("SNAPMAP_LOCATION_WAIT", "250ms")
	t.Setenv("SNAPMAP_TIMEZONE", "UTC")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/snapmap", cfg.DataDir)
	assert.Equal(t, "/var/lib/snapmap/photos", cfg.Archive.Dir)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.Location.Wait)

	loc, err := cfg.TimeLocation()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapmap.yaml")
	content := `
data_dir: /srv/photos
database:
  path: /srv/db/catalog.db
capture:
  inbox: /srv/inbox
  extensions: [".jpg"]
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/db/catalog.db", cfg.Database.Path)
	assert.Equal(t, "/srv/photos/photos", cfg.Archive.Dir)
	assert.Equal(t, "/srv/inbox", cfg.Capture.Inbox)
	assert.Equal(t, []string{".jpg"}, cfg.Capture.Extensions)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("SNAPMAP_TIMEZONE", "Mars/Olympus_Mons")
	t.Setenv("SNAPMAP_LOG_LEVEL", "chatty")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timezone")
	assert.Contains(t, err.Error(), "log.level")
}
