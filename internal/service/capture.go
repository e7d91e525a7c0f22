package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/msomdec/snapmap/internal/domain"
	"github.com/msomdec/snapmap/internal/metrics"
)

// DefaultLocationWait bounds how long a capture waits for a coordinate fix.
const DefaultLocationWait = 5 * time.Second

// Locator produces a coordinate fix for a captured image. Implementations
// return domain.ErrLocationUnavailable when they have nothing to offer.
type Locator interface {
	Locate(ctx context.Context, imagePath string) (*domain.Location, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(ctx context.Context, imagePath string) (*domain.Location, error)

func (f LocatorFunc) Locate(ctx context.Context, imagePath string) (*domain.Location, error) {
	return f(ctx, imagePath)
}

// CaptureService turns a captured image file into a candidate photo.
type CaptureService struct {
	locator Locator
	wait    time.Duration
	now     func() time.Time
}

// NewCaptureService creates a CaptureService. locator may be nil, in which
// case captures without an explicit fix are unlocated. A non-positive wait
// uses DefaultLocationWait.
func NewCaptureService(locator Locator, wait time.Duration) *CaptureService {
	if wait <= 0 {
		wait = DefaultLocationWait
	}
	return &CaptureService{locator: locator, wait: wait, now: time.Now}
}

// Candidate builds a candidate for the image at imagePath, stamped with the
// current time. fix, when non-nil, is the caller's own coordinate fix and is
// used as is; otherwise the locator is asked once within the bounded wait.
// A missing fix is a valid outcome, never retried.
func (s *CaptureService) Candidate(ctx context.Context, imagePath string, fix *domain.Location) (domain.Candidate, error) {
	info, err := os.Stat(imagePath)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("%w: capture file: %w", domain.ErrInvalidInput, err)
	}
	if !info.Mode().IsRegular() {
		return domain.Candidate{}, fmt.Errorf("%w: capture %q is not a regular file", domain.ErrInvalidInput, imagePath)
	}
	if fix != nil && !fix.Valid() {
		return domain.Candidate{}, fmt.Errorf("%w: coordinates out of range", domain.ErrInvalidInput)
	}

	c := domain.Candidate{
		SourcePath: imagePath,
		Timestamp:  s.now().UTC(),
		Location:   fix,
	}
	if c.Location == nil {
		c.Location = s.locate(ctx, imagePath)
	}

	if c.Location != nil {
		metrics.CaptureLocations.WithLabelValues("fix").Inc()
	} else {
		metrics.CaptureLocations.WithLabelValues("none").Inc()
	}
	return c, nil
}

// locate runs the locator under the bounded wait. Locators that ignore the
// context are abandoned when the wait expires.
func (s *CaptureService) locate(ctx context.Context, imagePath string) *domain.Location {
	if s.locator == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.wait)
	defer cancel()

	type result struct {
		loc *domain.Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		loc, err := s.locator.Locate(ctx, imagePath)
		done <- result{loc, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			slog.Debug("no coordinate fix for capture", "path", imagePath, "error", r.err)
			return nil
		}
		if !r.loc.Valid() {
			slog.Debug("locator returned invalid coordinates", "path", imagePath)
			return nil
		}
		return r.loc
	case <-ctx.Done():
		slog.Info("coordinate fix timed out", "path", imagePath, "wait", s.wait)
		return nil
	}
}
