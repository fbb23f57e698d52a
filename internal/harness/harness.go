package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/actdb/internal/actdb"
	"github.com/roach88/actdb/internal/actions"
	"github.com/roach88/actdb/internal/ir"
	"github.com/roach88/actdb/internal/store"
	"github.com/roach88/actdb/internal/testutil"
)

// Harness is the scenario execution engine.
type Harness struct {
	db       *actdb.DB
	registry *actdb.Registry
	logger   *slog.Logger
	result   *Result
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh DB with the built-in actions registered.
// Returned errors mean the scenario could not run (an unknown action, a
// value with no JSON form); failed expectations go into Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a context for the replay check.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	result := NewResult()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	reg := actions.NewRegistry()

	db := actdb.New(
		actdb.WithRegistry(reg),
		actdb.WithLogger(logger),
		actdb.WithVerify(scenario.Verify),
		actdb.WithFaultHandler(func(f *actdb.Fault) {
			result.AddError(f.Error())
		}),
	)

	h := &Harness{db: db, registry: reg, logger: logger, result: result}

	for i := range scenario.Steps {
		if err := h.executeStep(i, &scenario.Steps[i]); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	if scenario.Replay {
		if err := h.checkReplay(ctx); err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
	}

	return result, nil
}

func (h *Harness) executeStep(i int, step *Step) error {
	switch {
	case step.HasStore():
		var raw any
		if err := step.Store.Decode(&raw); err != nil {
			return fmt.Errorf("decode store value: %w", err)
		}
		v, err := ir.FromGo(raw)
		if err != nil {
			return fmt.Errorf("store value: %w", err)
		}
		id := h.db.Store(v)
		h.result.Trace = append(h.result.Trace, TraceEvent{
			Step:    i,
			Op:      OpStore,
			ID:      id,
			Version: h.db.Lookup(id).Version(),
			Value:   v,
		})

	case step.Act != "":
		args, err := ir.FromGo(step.Args)
		if err != nil {
			return fmt.Errorf("act args: %w", err)
		}
		e, err := h.db.ActNamed(step.Act, args)
		if err != nil {
			return err
		}
		h.result.Trace = append(h.result.Trace, TraceEvent{
			Step:    i,
			Op:      OpAct,
			ID:      e.ID(),
			Version: e.Version(),
			Seq:     e.Seq(),
			Name:    e.Name(),
			Args:    e.Args(),
		})

	case step.Query != nil:
		req, opts, err := buildQuery(step.Query)
		if err != nil {
			return err
		}
		res, err := h.db.Query(req, opts...)
		if err != nil {
			return err
		}
		h.result.Trace = append(h.result.Trace, TraceEvent{Step: i, Op: OpQuery, Rows: res.Rows})
		if step.Expect != nil {
			for _, msg := range checkExpect(step.Expect, res) {
				h.result.AddError(fmt.Sprintf("step %d: %s", i, msg))
			}
		}
	}

	h.logger.Debug("step completed", "step", i)
	return nil
}

// buildQuery translates a YAML query to a request and options.
func buildQuery(q *Query) (actdb.Request, []actdb.QueryOption, error) {
	var opts []actdb.QueryOption
	if q.Version != nil {
		opts = append(opts, actdb.AtVersion(*q.Version))
	}
	if q.NoValues {
		opts = append(opts, actdb.WithoutValues())
	}

	var pred actdb.Predicate
	if q.Where != nil {
		want, err := ir.FromGo(map[string]any(q.Where))
		if err != nil {
			return nil, nil, fmt.Errorf("query where: %w", err)
		}
		pred = argsContain(want.(ir.IRObject))
	}

	switch {
	case q.All:
		return actdb.All{Where: pred}, opts, nil
	case pred != nil:
		return actdb.Where(pred), opts, nil
	case q.ID != "":
		return actdb.ByID(q.ID), opts, nil
	case q.Seq != nil:
		return actdb.BySeq(*q.Seq), opts, nil
	default:
		return actdb.Latest{}, opts, nil
	}
}

// argsContain matches entries whose args object has every field of want.
func argsContain(want ir.IRObject) actdb.Predicate {
	return func(e *actdb.Entry, _ actdb.Getter) bool {
		args, ok := e.Args().(ir.IRObject)
		if !ok {
			return false
		}
		for k, v := range want {
			got, present := args[k]
			if !present || !ir.Equal(got, v) {
				return false
			}
		}
		return true
	}
}

// checkExpect returns one message per failed expectation.
func checkExpect(exp *Expect, res actdb.Result) []string {
	var errs []string

	if exp.Found != nil && res.Found() != *exp.Found {
		errs = append(errs, fmt.Sprintf("found = %v, expected %v", res.Found(), *exp.Found))
	}

	first := res.First()
	if exp.ID != "" {
		switch {
		case first == nil:
			errs = append(errs, fmt.Sprintf("expected id %s, got no rows", exp.ID))
		case first.ID() != exp.ID:
			errs = append(errs, fmt.Sprintf("id = %s, expected %s", first.ID(), exp.ID))
		}
	}

	if exp.HasValue() {
		var raw any
		if err := exp.Value.Decode(&raw); err != nil {
			return append(errs, fmt.Sprintf("decode expected value: %v", err))
		}
		want, err := ir.FromGo(raw)
		if err != nil {
			return append(errs, fmt.Sprintf("expected value: %v", err))
		}
		switch {
		case first == nil:
			errs = append(errs, "expected a value, got no rows")
		case !first.Hydrated:
			errs = append(errs, "expected a value, row was not hydrated")
		case !ir.Equal(first.Value, want):
			errs = append(errs, fmt.Sprintf("value = %s, expected %s", render(first.Value), render(want)))
		}
	}

	if exp.IDs != nil {
		got := make([]string, len(res.Rows))
		for i := range res.Rows {
			got[i] = res.Rows[i].ID()
		}
		if !slices.Equal(got, exp.IDs) {
			errs = append(errs, fmt.Sprintf("ids = %v, expected %v", got, exp.IDs))
		}
	}

	if exp.Count != nil && len(res.Rows) != *exp.Count {
		errs = append(errs, fmt.Sprintf("count = %d, expected %d", len(res.Rows), *exp.Count))
	}

	return errs
}

func render(v ir.IRValue) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// checkReplay saves the log to an in-memory store, replays it, and
// records an error for every action whose value differs.
func (h *Harness) checkReplay(ctx context.Context) error {
	st, err := store.Open(":memory:", store.WithLogIDGenerator(testutil.FixedLogID("")))
	if err != nil {
		return fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if _, err := st.Save(ctx, h.db); err != nil {
		return err
	}
	if _, err := st.SaveResults(ctx, h.db); err != nil {
		return err
	}

	replayed, err := st.Replay(ctx, h.registry, actdb.WithLogger(h.logger))
	if err != nil {
		return err
	}

	divergences, err := st.VerifyResults(ctx, replayed)
	if err != nil {
		return err
	}
	for _, d := range divergences {
		h.result.AddError(fmt.Sprintf("replay: %s value hash %s, expected %s", d.ID, d.Replayed, d.Stored))
	}
	return nil
}
