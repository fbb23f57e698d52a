package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/actdb/internal/actdb"
)

// ActOptions holds flags for the act command.
type ActOptions struct {
	*RootOptions
	Args string
}

// ActResult is the JSON payload of the act command.
type ActResult struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
	Seq     int    `json:"seq"`
	Name    string `json:"name"`
}

// NewActCommand creates the act command.
func NewActCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ActOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "act <action>",
		Short: "Append an action to the log",
		Long: `Append a registered action with JSON arguments.

The action is not evaluated here; its value is computed when queried.

Built-in actions: gather, accumulate, count.

Examples:
  actdb act gather --args '{"foo": "id_0"}'
  actdb act accumulate --args '{"n": 1}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAct(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Args, "args", "null", "action arguments as JSON")

	return cmd
}

func runAct(opts *ActOptions, cmd *cobra.Command, name string) error {
	ctx := context.Background()
	f := newFormatter(cmd, opts.RootOptions)

	actArgs, err := parseJSON("--args", opts.Args)
	if err != nil {
		_ = f.Error(ErrCodeInvalidJSON, err.Error(), nil)
		return err
	}

	s, err := openSession(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	e, err := s.db.ActNamed(name, actArgs)
	if err != nil {
		if actdb.IsUnknownAction(err) {
			_ = f.Error(ErrCodeUnknownAction, err.Error(), map[string]any{
				"registered": s.registry.Names(),
			})
			return WrapExitError(ExitCommandError, "unknown action", err)
		}
		return WrapExitError(ExitCommandError, "failed to append action", err)
	}

	if err := s.save(ctx); err != nil {
		return err
	}
	s.reportMetrics(f)

	return f.Success(ActResult{
		ID:      e.ID(),
		Version: e.Version(),
		Seq:     e.Seq(),
		Name:    e.Name(),
	}, fmt.Sprintf("%s seq=%d", e.ID(), e.Seq()))
}

