package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/actdb/internal/store"
)

// DivergenceResult is one action whose replayed value differs from the
// recorded hash.
type DivergenceResult struct {
	ID       string `json:"id"`
	Stored   string `json:"stored"`
	Replayed string `json:"replayed,omitempty"`
}

// ReplayResult holds the outcome of the replay command.
type ReplayResult struct {
	LogID         string             `json:"log_id"`
	Entries       int                `json:"entries"`
	Actions       int                `json:"actions"`
	Recorded      int                `json:"recorded"`
	Deterministic bool               `json:"deterministic"`
	Divergences   []DivergenceResult `json:"divergences"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "Replay the log and verify determinism",
		Long: `Replay the log twice and check every action value against the
hashes recorded in the database.

The first replay records hashes for actions that have none yet; earlier
recordings are kept as the reference. The second replay is evaluated from
scratch and must match them.

Exit codes:
  0 - Every action replayed to its recorded value
  1 - Determinism verification failed (divergences detected)
  2 - Command error (unreadable database, unknown action, etc.)

Examples:
  actdb replay --db ./actdb.db
  actdb replay --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, cmd)
		},
	}
}

func runReplay(opts *RootOptions, cmd *cobra.Command) error {
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

	recorded, err := s.store.SaveResults(ctx, s.db)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to record results", err)
	}

	second, err := s.replay(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "second replay failed", err)
	}

	var divergences []store.Divergence
	first, err := s.store.VerifyResults(ctx, s.db)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to verify results", err)
	}
	divergences = append(divergences, first...)
	again, err := s.store.VerifyResults(ctx, second)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to verify results", err)
	}
	divergences = append(divergences, again...)

	result := ReplayResult{
		LogID:         logID,
		Entries:       second.Len(),
		Recorded:      recorded,
		Deterministic: len(divergences) == 0,
		Divergences:   make([]DivergenceResult, 0, len(divergences)),
	}
	for _, e := range second.Entries() {
		if e.IsAction() {
			result.Actions++
		}
	}
	for _, d := range divergences {
		result.Divergences = append(result.Divergences, DivergenceResult{
			ID:       d.ID,
			Stored:   d.Stored,
			Replayed: d.Replayed,
		})
	}
	s.reportMetrics(f)

	if f.JSON() {
		if err := f.Success(result, ""); err != nil {
			return err
		}
	} else {
		fmt.Fprint(f.Writer, formatReplay(result))
	}

	if !result.Deterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

func formatReplay(r ReplayResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Replayed %d entries (%d actions) from log %s\n", r.Entries, r.Actions, r.LogID)
	if r.Recorded > 0 {
		fmt.Fprintf(&b, "Recorded %d new result hash(es)\n", r.Recorded)
	}
	if r.Deterministic {
		b.WriteString("✓ deterministic\n")
		return b.String()
	}
	fmt.Fprintf(&b, "✗ %d divergence(s)\n", len(r.Divergences))
	for _, d := range r.Divergences {
		replayed := d.Replayed
		if replayed == "" {
			replayed = "<missing>"
		}
		fmt.Fprintf(&b, "  %s: stored %s, replayed %s\n", d.ID, d.Stored, replayed)
	}
	return b.String()
}
