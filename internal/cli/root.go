package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/actdb/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string
	Verify     bool

	// Logger is configured by the root command before any subcommand runs.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the actdb CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "actdb",
		Short: "ActDB - event-sourced value store",
		Long: `An append-only log of stored values and lazily evaluated actions.

Every action sees only the log strictly before itself, so any log replays
to the same values. The log is kept in a SQLite file (--db).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveOptions(cmd, opts)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "CUE configuration file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", `path to SQLite database (default from config, "actdb.db")`)
	cmd.PersistentFlags().BoolVar(&opts.Verify, "verify", false, "re-evaluate actions on cache hits and report nondeterminism")

	cmd.AddCommand(NewStoreCommand(opts))
	cmd.AddCommand(NewActCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolveOptions validates flags and fills unset ones from the config file.
func resolveOptions(cmd *cobra.Command, opts *RootOptions) error {
	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	if !cmd.Flags().Changed("db") {
		opts.Database = cfg.DB
	}
	if !cmd.Flags().Changed("verify") {
		opts.Verify = cfg.Verify
	}

	level := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	opts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
