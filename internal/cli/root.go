// Package cli implements the snapmap command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/msomdec/snapmap/internal/config"
)

// Version is set at build time with -ldflags "-X github.com/msomdec/snapmap/internal/cli.Version=...".
var Version = "dev"

type rootOptions struct {
	configFile string
	logLevel   string
	output     string

	cfg *config.Config
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCmd builds the snapmap command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "snapmap",
		Short: "Local photo catalog with a gallery and a map",
		Long: `snapmap keeps captured photos in a managed archive directory and their
capture time and coordinates in an embedded SQLite database.

Run "snapmap serve" for the web gallery and map, or use the
import, list, search, delete, map and audit commands directly.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides log.level")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", formatTable, "Output format (table, json, yaml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newImportCmd(opts),
		newListCmd(opts),
		newSearchCmd(opts),
		newDeleteCmd(opts),
		newMapCmd(opts),
		newAuditCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// load resolves configuration and installs the default logger. Command
// output goes to stdout, so logs go to stderr.
func (o *rootOptions) load(cmd *cobra.Command) error {
	if err := checkFormat(o.output); err != nil {
		return err
	}

	cfg, err := config.Load(o.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	o.cfg = cfg
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Skip config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "snapmap version %s\n", Version)
		},
	}
}
