package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CAFxX/httpcompression"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/msomdec/snapmap/internal/handler"
	"github.com/msomdec/snapmap/internal/service"
	"github.com/msomdec/snapmap/internal/watch"
)

// compressedTypes are compressed on the way out. Event streams and images
// are left alone.
var compressedTypes = []string{
	"text/html",
	"text/css",
	"application/json",
	"application/javascript",
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gallery, map and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if addr != "" {
				cfg.HTTP.Addr = addr
			}

			level, err := cfg.SlogLevel()
			if err != nil {
				return err
			}
			logOpts := &slog.HandlerOptions{Level: level}
			slog.SetDefault(slog.New(slog.NewMultiHandler(
				slog.NewTextHandler(os.Stdout, logOpts),
				slog.NewJSONHandler(os.Stderr, logOpts),
			)))

			// Graceful shutdown on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, cfg, defaultLocator())
			if err != nil {
				return err
			}
			defer a.Close()
			schema, err := a.db.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			slog.Info("catalog opened", "database", cfg.Database.Path, "schema", schema, "archive", a.archive.Dir())

			srv, limiter, err := newServer(a)
			if err != nil {
				return err
			}
			defer limiter.Stop()

			if cfg.Audit.Schedule != "" {
				c, err := scheduleAudit(ctx, a.catalog, cfg.Audit.Schedule)
				if err != nil {
					return err
				}
				defer c.Stop()
			}

			if cfg.Capture.Inbox != "" {
				inbox, err := watch.New(watch.Config{
					Dir:        cfg.Capture.Inbox,
					Extensions: cfg.Capture.Extensions,
					Settle:     cfg.Capture.Settle,
				}, func(ctx context.Context, path string) error {
					_, err := a.importFile(ctx, path, nil)
					return err
				}, slog.Default())
				if err != nil {
					return err
				}
				go func() {
					if err := inbox.Run(ctx); err != nil {
						slog.Error("inbox watcher", "error", err)
					}
				}()
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("server starting", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("server error: %w", err)
			case <-ctx.Done():
			}
			slog.Info("shutting down server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			slog.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address; overrides http.addr")
	return cmd
}

// newServer builds the HTTP server for a. The returned limiter must be
// stopped by the caller.
func newServer(a *app) (*http.Server, *service.TokenBucket, error) {
	cfg := a.cfg

	limiter := service.NewTokenBucket(cfg.Upload.Rate, cfg.Upload.Burst)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, a.catalog, a.capture, limiter, cfg.Upload.MaxBytes)

	compress, err := httpcompression.DefaultAdapter(httpcompression.ContentTypes(compressedTypes, false))
	if err != nil {
		limiter.Stop()
		return nil, nil, fmt.Errorf("compression adapter: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Instrument(compress(handler.SecurityHeaders(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}
	return srv, limiter, nil
}

// scheduleAudit runs the archive audit on the given cron schedule. The
// result is logged and exported through the audit gauges.
func scheduleAudit(ctx context.Context, catalog *service.CatalogService, schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		report, err := catalog.Audit(ctx)
		if err != nil {
			slog.Error("scheduled archive audit", "error", err)
			return
		}
		slog.Info("scheduled archive audit",
			"orphaned", len(report.Orphaned), "missing", len(report.Missing))
	})
	if err != nil {
		return nil, fmt.Errorf("audit.schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
