package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/actdb/internal/actdb"
)

// LogResult is the JSON payload of the log command.
type LogResult struct {
	LogID   string      `json:"log_id"`
	Entries []actdb.Row `json:"entries"`
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "List log entries without evaluating actions",
		Long: `List every entry in the log in version order.

Values are not resolved, so listing never runs an action.

Examples:
  actdb log
  actdb log --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(rootOpts, cmd)
		},
	}
}

func runLog(opts *RootOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := newFormatter(cmd, opts)

	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	logID, err := s.store.LogID(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read log id", err)
	}

	rows := s.db.All(actdb.WithoutValues())
	if rows == nil {
		rows = []actdb.Row{}
	}
	f.VerboseLog("log %s: %d entries", logID, len(rows))

	return f.Success(LogResult{LogID: logID, Entries: rows}, formatRows(rows, "Log is empty."))
}
