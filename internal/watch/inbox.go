// Package watch imports captures dropped into an inbox directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ImportedDir is the inbox subdirectory imported captures are moved to.
const ImportedDir = ".imported"

// DefaultSettle is how long a file must stay unchanged before it is imported.
const DefaultSettle = 2 * time.Second

// ImportFunc imports one settled capture file.
type ImportFunc func(ctx context.Context, path string) error

// Config configures an Inbox.
type Config struct {
	// Dir is the directory watched for new captures.
	Dir string
	// Extensions lists accepted file extensions, e.g. ".jpg". Empty accepts
	// the default image extensions.
	Extensions []string
	// Settle is the quiet period after the last write before import.
	Settle time.Duration
}

// DefaultExtensions are the capture formats accepted when none are configured.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".heic", ".heif"}

// Inbox watches a directory and imports each settled capture exactly once.
// Imports run one at a time on the goroutine that called Run.
type Inbox struct {
	dir        string
	settle     time.Duration
	extensions map[string]bool
	importFn   ImportFunc
	logger     *slog.Logger

	// pending maps a path to the time of its last write event.
	pending map[string]time.Time
}

// New creates an Inbox. The directory and its imported subdirectory are
// created when missing.
func New(cfg Config, importFn ImportFunc, logger *slog.Logger) (*Inbox, error) {
	if cfg.Dir == "" {
		return nil, errors.New("inbox directory is required")
	}
	if importFn == nil {
		return nil, errors.New("import function is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve inbox dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, ImportedDir), 0o755); err != nil {
		return nil, fmt.Errorf("create inbox dir: %w", err)
	}

	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	extensions := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[ext] = true
	}

	settle := cfg.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}

	return &Inbox{
		dir:        dir,
		settle:     settle,
		extensions: extensions,
		importFn:   importFn,
		logger:     logger,
		pending:    make(map[string]time.Time),
	}, nil
}

// Dir returns the absolute inbox directory.
func (in *Inbox) Dir() string {
	return in.dir
}

// Run watches the inbox until ctx is cancelled. Files already present when
// Run starts are imported too.
func (in *Inbox) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(in.dir); err != nil {
		return fmt.Errorf("watch %s: %w", in.dir, err)
	}
	if err := in.scan(); err != nil {
		return err
	}

	in.logger.Info("inbox watcher started", "dir", in.dir, "settle", in.settle)

	tick := in.settle / 2
	if tick < 50*time.Millisecond {
		tick = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			in.logger.Info("inbox watcher stopped", "dir", in.dir)
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			in.handleEvent(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			in.logger.Error("inbox watcher error", "error", err)

		case now := <-ticker.C:
			in.flush(ctx, now)
		}
	}
}

// scan queues captures already sitting in the inbox.
func (in *Inbox) scan() error {
	entries, err := os.ReadDir(in.dir)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}
	for _, e := range entries {
		path := filepath.Join(in.dir, e.Name())
		if e.Type().IsRegular() && in.accepts(path) {
			in.pending[path] = time.Time{}
		}
	}
	return nil
}

func (in *Inbox) accepts(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return in.extensions[strings.ToLower(filepath.Ext(base))]
}

func (in *Inbox) handleEvent(event fsnotify.Event) {
	if !in.accepts(event.Name) {
		return
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		delete(in.pending, event.Name)
		return
	}
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
		in.pending[event.Name] = time.Now()
	}
}

// flush imports every pending file that has been quiet for the settle period.
func (in *Inbox) flush(ctx context.Context, now time.Time) {
	for path, last := range in.pending {
		if ctx.Err() != nil {
			return
		}
		if now.Sub(last) < in.settle {
			continue
		}
		delete(in.pending, path)

		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		if err := in.importFn(ctx, path); err != nil {
			in.logger.Error("import capture", "path", path, "error", err)
			continue
		}

		dest := filepath.Join(in.dir, ImportedDir, filepath.Base(path))
		if err := os.Rename(path, dest); err != nil {
			in.logger.Warn("move imported capture", "path", path, "error", err)
			continue
		}
		in.logger.Info("capture imported", "path", path)
	}
}
