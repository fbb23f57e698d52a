package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/actdb/internal/actdb"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	ID       string
	Seq      int
	Name     string
	Version  int
	All      bool
	NoValues bool
}

// QueryResult is the JSON payload of the query command.
type QueryResult struct {
	Found bool        `json:"found"`
	Rows  []actdb.Row `json:"rows"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the log",
		Long: `Query the log, resolving action values on demand.

With no selector the latest action is returned. --version bounds the query
so only entries at or below that version are visible.

Exit codes:
  0 - Query ran (found or not)
  2 - Command error (conflicting flags, unreadable database, etc.)

Examples:
  actdb query
  actdb query --id id_2
  actdb query --seq 0 --version 3
  actdb query --all --name accumulate --no-values`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "entry id")
	cmd.Flags().IntVar(&opts.Seq, "seq", 0, "action sequence number")
	cmd.Flags().StringVar(&opts.Name, "name", "", "first action with this name (all of them with --all)")
	cmd.Flags().IntVar(&opts.Version, "version", 0, "bound the query to versions <= N")
	cmd.Flags().BoolVar(&opts.All, "all", false, "return every entry in view")
	cmd.Flags().BoolVar(&opts.NoValues, "no-values", false, "do not resolve values")

	cmd.MarkFlagsMutuallyExclusive("id", "seq", "name")
	cmd.MarkFlagsMutuallyExclusive("id", "all")
	cmd.MarkFlagsMutuallyExclusive("seq", "all")

	return cmd
}

// buildRequest maps flags to a request. A zero --seq is meaningful, so
// presence is read from the flag set rather than the value.
func buildRequest(opts *QueryOptions, cmd *cobra.Command) (actdb.Request, []actdb.QueryOption) {
	var qopts []actdb.QueryOption
	if cmd.Flags().Changed("version") {
		qopts = append(qopts, actdb.AtVersion(opts.Version))
	}
	if opts.NoValues {
		qopts = append(qopts, actdb.WithoutValues())
	}

	var pred actdb.Predicate
	if opts.Name != "" {
		pred = named(opts.Name)
	}

	switch {
	case opts.All:
		return actdb.All{Where: pred}, qopts
	case opts.ID != "":
		return actdb.ByID(opts.ID), qopts
	case cmd.Flags().Changed("seq"):
		return actdb.BySeq(opts.Seq), qopts
	case pred != nil:
		return actdb.Where(pred), qopts
	default:
		return actdb.Latest{}, qopts
	}
}

func named(name string) actdb.Predicate {
	return func(e *actdb.Entry, _ actdb.Getter) bool {
		return e.IsAction() && e.Name() == name
	}
}

func runQuery(opts *QueryOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := newFormatter(cmd, opts.RootOptions)

	s, err := openSession(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	req, qopts := buildRequest(opts, cmd)
	res, err := s.db.Query(req, qopts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "query failed", err)
	}
	s.reportMetrics(f)

	rows := res.Rows
	if rows == nil {
		rows = []actdb.Row{}
	}

	return f.Success(QueryResult{Found: res.Found(), Rows: rows}, formatRows(rows, "No entry found."))
}

func formatRows(rows []actdb.Row, empty string) string {
	if len(rows) == 0 {
		return empty
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = formatRow(row)
	}
	return strings.Join(lines, "\n")
}
