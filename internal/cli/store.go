package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// StoreResult is the JSON payload of the store command.
type StoreResult struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
}

// NewStoreCommand creates the store command.
func NewStoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "store <json>",
		Short: "Append a value to the log",
		Long: `Append a JSON value to the log and print its id.

Examples:
  actdb store '{"bar": "baz"}'
  actdb store 42 --db ./actdb.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(rootOpts, cmd, args[0])
		},
	}
}

func runStore(opts *RootOptions, cmd *cobra.Command, raw string) error {
	ctx := context.Background()
	f := newFormatter(cmd, opts)

	value, err := parseJSON("value", raw)
	if err != nil {
		_ = f.Error(ErrCodeInvalidJSON, err.Error(), nil)
		return err
	}

	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	id := s.db.Store(value)
	if err := s.save(ctx); err != nil {
		return err
	}
	s.reportMetrics(f)

	e := s.db.Lookup(id)
	return f.Success(StoreResult{ID: id, Version: e.Version()}, id)
}
