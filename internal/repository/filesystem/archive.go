// Package filesystem stores archived photo files in a managed directory.
package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/msomdec/snapmap/internal/domain"
)

// stagingPrefix marks files that are still being copied in.
const stagingPrefix = ".staging-"

// Archive implements domain.FileArchive on a local directory.
type Archive struct {
	dir string
}

// NewArchive returns an archive rooted at dir. The directory is created on
// first use, not here.
func NewArchive(dir string) (*Archive, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve archive dir: %w", err)
	}
	return &Archive{dir: abs}, nil
}

// Dir returns the absolute archive directory.
func (a *Archive) Dir() string {
	return a.dir
}

// Archive copies sourcePath into the archive under its base name. An existing
// archived file with the same name is replaced.
func (a *Archive) Archive(ctx context.Context, sourcePath string) (string, error) {
	name := filepath.Base(sourcePath)
	if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, stagingPrefix) {
		return "", fmt.Errorf("%w: invalid source name %q", domain.ErrArchiveFailure, sourcePath)
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("%w: open source: %w", domain.ErrArchiveFailure, err)
	}
	defer src.Close()

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create archive dir: %w", domain.ErrArchiveFailure, err)
	}

	// Copy into a staging file and rename, so a failed copy never leaves a
	// truncated file under the final name.
	staging := filepath.Join(a.dir, stagingPrefix+uuid.NewString())
	if err := copyFile(ctx, staging, src); err != nil {
		os.Remove(staging)
		return "", fmt.Errorf("%w: %w", domain.ErrArchiveFailure, err)
	}

	dst := filepath.Join(a.dir, name)
	if err := os.Rename(staging, dst); err != nil {
		os.Remove(staging)
		return "", fmt.Errorf("%w: rename into archive: %w", domain.ErrArchiveFailure, err)
	}
	return dst, nil
}

func copyFile(ctx context.Context, dst string, src io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return fmt.Errorf("copy: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close staging file: %w", err)
	}
	return nil
}

// Remove deletes an archived file. Paths outside the archive directory are
// refused.
func (a *Archive) Remove(ctx context.Context, archivedPath string) error {
	if !a.contains(archivedPath) {
		return fmt.Errorf("remove %q: path is outside archive %q", archivedPath, a.dir)
	}
	if err := os.Remove(archivedPath); err != nil {
		return fmt.Errorf("remove archived file: %w", err)
	}
	return nil
}

// Files lists archived files by absolute path, sorted. Staging files from
// copies still in flight are left out. A missing archive directory means
// nothing has been archived yet.
func (a *Archive) Files(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read archive dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), stagingPrefix) {
			continue
		}
		files = append(files, filepath.Join(a.dir, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}

func (a *Archive) contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return filepath.Dir(abs) == a.dir
}
