// Package config loads snapmap settings from defaults, an optional YAML
// file and SNAPMAP_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/msomdec/snapmap/internal/watch"
)

const envPrefix = "SNAPMAP"

// Config is the resolved application configuration.
type Config struct {
	DataDir  string         `mapstructure:"data_dir"`
	Timezone string         `mapstructure:"timezone"`
	Database DatabaseConfig `mapstructure:"database"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Location LocationConfig `mapstructure:"location"`
	Capture  CaptureConfig  `mapstructure:"capture"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"` // defaults to <data_dir>/snapmap.db
}

type ArchiveConfig struct {
	Dir string `mapstructure:"dir"` // defaults to <data_dir>/photos
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LocationConfig struct {
	Wait time.Duration `mapstructure:"wait"`
}

// CaptureConfig configures the inbox watcher. An empty Inbox disables it.
type CaptureConfig struct {
	Inbox      string        `mapstructure:"inbox"`
	Extensions []string      `mapstructure:"extensions"`
	Settle     time.Duration `mapstructure:"settle"`
}

// AuditConfig holds the cron schedule for the archive audit. Empty disables it.
type AuditConfig struct {
	Schedule string `mapstructure:"schedule"`
}

type UploadConfig struct {
	Rate     float64 `mapstructure:"rate"`  // uploads per second per client
	Burst    float64 `mapstructure:"burst"` // bucket capacity
	MaxBytes int64   `mapstructure:"max_bytes"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")
	v.SetDefault("timezone", "Local")
	v.SetDefault("database.path", "")
	v.SetDefault("archive.dir", "")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("location.wait", "5s")
	v.SetDefault("capture.inbox", "")
	v.SetDefault("capture.extensions", slices.Clone(watch.DefaultExtensions))
	v.SetDefault("capture.settle", "500ms")
	v.SetDefault("audit.schedule", "@daily")
	v.SetDefault("upload.rate", 1.0)
	v.SetDefault("upload.burst", 10.0)
	v.SetDefault("upload.max_bytes", 20<<20)
	v.SetDefault("log.level", "info")
}

// Load resolves the configuration. configFile may be empty.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
		slog.Debug("config file loaded", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(cfg.DataDir, "snapmap.db")
	}
	if cfg.Archive.Dir == "" {
		cfg.Archive.Dir = filepath.Join(cfg.DataDir, "photos")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that defaults cannot make safe.
func (c *Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if _, err := c.TimeLocation(); err != nil {
		errs = append(errs, err)
	}
	if c.Location.Wait <= 0 {
		errs = append(errs, fmt.Errorf("location.wait must be positive, got %s", c.Location.Wait))
	}
	if c.Upload.Rate < 0 || c.Upload.Burst < 1 {
		errs = append(errs, fmt.Errorf("upload.rate must be >= 0 and upload.burst >= 1"))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("upload.max_bytes must be positive"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// TimeLocation resolves Timezone. "Local" and "" mean the host zone.
func (c *Config) TimeLocation() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", c.Log.Level, err)
	}
	return level, nil
}
