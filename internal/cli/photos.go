package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/msomdec/snapmap/internal/domain"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var (
		lat, lon, alt, acc float64
		noExif             bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Copy captures into the archive and catalog them",
		Long: `Import copies each image into the archive and records its capture time.
Coordinates come from --lat/--lon when given, otherwise from the image's
EXIF GPS data unless --no-exif is set. Source files are never modified.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("lat") != flags.Changed("lon") {
				return errors.New("--lat and --lon must be given together")
			}

			var fix *domain.Location
			if flags.Changed("lat") {
				fix = &domain.Location{Latitude: lat, Longitude: lon}
				if flags.Changed("alt") {
					fix.Altitude = &alt
				}
				if flags.Changed("acc") {
					fix.Accuracy = &acc
				}
			}

			locator := defaultLocator()
			if noExif {
				locator = nil
			}

			a, err := openApp(cmd.Context(), opts.cfg, locator)
			if err != nil {
				return err
			}
			defer a.Close()

			var (
				saved []domain.Photo
				errs  []error
			)
			for _, path := range args {
				p, err := a.importFile(cmd.Context(), path, fix)
				if err != nil {
					errs = append(errs, fmt.Errorf("import %s: %w", path, err))
					continue
				}
				saved = append(saved, *p)
			}

			if err := writePhotos(cmd.OutOrStdout(), opts.output, saved, a.catalog.Location()); err != nil {
				return err
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude of the capture")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude of the capture")
	cmd.Flags().Float64Var(&alt, "alt", 0, "Altitude in metres")
	cmd.Flags().Float64Var(&acc, "acc", 0, "Horizontal accuracy in metres")
	cmd.Flags().BoolVar(&noExif, "no-exif", false, "Do not read coordinates from EXIF data")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List photos, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts.cfg, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			photos, err := a.catalog.List(cmd.Context())
			if err != nil {
				return err
			}
			return writePhotos(cmd.OutOrStdout(), opts.output, photos, a.catalog.Location())
		},
	}
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find photos by date (1/2/2024) or coordinates (10,20)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts.cfg, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			photos, err := a.catalog.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writePhotos(cmd.OutOrStdout(), opts.output, photos, a.catalog.Location())
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a photo and its archived file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid photo id %q", args[0])
			}

			a, err := openApp(cmd.Context(), opts.cfg, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.catalog.DeleteByID(cmd.Context(), id); err != nil {
				if isNotFound(err) {
					return fmt.Errorf("photo %d not found", id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted photo %d\n", id)
			return nil
		},
	}
}

func newMapCmd(opts *rootOptions) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Print the map region and markers of located photos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts.cfg, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			m, err := a.catalog.Map(cmd.Context(), query)
			if err != nil {
				return err
			}
			return writeMap(cmd.OutOrStdout(), opts.output, m)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only show photos matching this search")
	return cmd
}

func newAuditCmd(opts *rootOptions) *cobra.Command {
	var prune bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Compare the archive directory with the catalog",
		Long: `Audit lists archived files no photo refers to (orphaned, for example
left behind by a failed save) and photos whose file is gone (missing).
With --prune the orphaned files are deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts.cfg, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if prune {
				n, err := a.catalog.PruneOrphans(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Removed %d orphaned file(s)\n", n)
			}

			report, err := a.catalog.Audit(cmd.Context())
			if err != nil {
				return err
			}
			return writeAudit(cmd.OutOrStdout(), opts.output, report)
		},
	}
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete orphaned archive files")
	return cmd
}
