package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/actdb/internal/actdb"
	"github.com/roach88/actdb/internal/actions"
	"github.com/roach88/actdb/internal/metrics"
	"github.com/roach88/actdb/internal/store"
)

// session is an opened database plus the log replayed from it.
type session struct {
	opts     *RootOptions
	store    *store.Store
	db       *actdb.DB
	registry *actdb.Registry
	gatherer *prometheus.Registry
	observer *metrics.Collector
}

// openSession opens the configured database and replays its log with the
// built-in actions. Replay failures are command errors.
func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	gatherer := prometheus.NewRegistry()
	s := &session{
		opts:     opts,
		store:    st,
		registry: actions.NewRegistry(),
		gatherer: gatherer,
		observer: metrics.New(gatherer),
	}

	db, err := s.replay(ctx)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to replay log", err)
	}
	s.db = db

	opts.Logger.Debug("log replayed",
		"db", opts.Database,
		"entries", db.Len())

	return s, nil
}

// replay rebuilds a fresh DB from the store.
func (s *session) replay(ctx context.Context) (*actdb.DB, error) {
	return s.store.Replay(ctx, s.registry,
		actdb.WithLogger(s.opts.Logger),
		actdb.WithObserver(s.observer),
		actdb.WithVerify(s.opts.Verify),
	)
}

// save persists entries appended since the session was opened.
func (s *session) save(ctx context.Context) error {
	n, err := s.store.Save(ctx, s.db)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to save log", err)
	}
	s.opts.Logger.Debug("log saved", "new_entries", n)
	return nil
}

// reportMetrics prints the engine counters in verbose mode.
func (s *session) reportMetrics(f *OutputFormatter) {
	if !f.Verbose {
		return
	}
	summary, err := metrics.Summary(s.gatherer)
	if err != nil {
		f.VerboseLog("metrics unavailable: %v", err)
		return
	}
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, summary[k]))
	}
	f.VerboseLog("metrics: %s", strings.Join(parts, " "))
}

func (s *session) Close() error {
	return s.store.Close()
}
