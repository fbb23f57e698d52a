package harness

import (
	"github.com/roach88/actdb/internal/actdb"
	"github.com/roach88/actdb/internal/ir"
)

// Trace operation names.
const (
	OpStore = "store"
	OpAct   = "act"
	OpQuery = "query"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Step int    `json:"step"`
	Op   string `json:"op"`

	// Store and act steps: the appended entry.
	ID      string     `json:"id,omitempty"`
	Version int        `json:"version,omitempty"`
	Seq     int        `json:"seq,omitempty"`
	Name    string     `json:"name,omitempty"`
	Args    ir.IRValue `json:"args,omitempty"`
	Value   ir.IRValue `json:"value,omitempty"`

	// Query steps: the returned rows.
	Rows []actdb.Row `json:"rows,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and the replay check matched.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// canonical returns the event as a plain map for canonical JSON.
func (e TraceEvent) canonical() map[string]any {
	m := map[string]any{
		"step": e.Step,
		"op":   e.Op,
	}
	switch e.Op {
	case OpStore:
		m["id"] = e.ID
		m["version"] = e.Version
		m["value"] = ir.Normalize(e.Value)
	case OpAct:
		m["id"] = e.ID
		m["version"] = e.Version
		m["seq"] = e.Seq
		m["name"] = e.Name
		m["args"] = ir.Normalize(e.Args)
	case OpQuery:
		rows := make([]any, len(e.Rows))
		for i, row := range e.Rows {
			rows[i] = canonicalRow(row)
		}
		m["rows"] = rows
	}
	return m
}

func canonicalRow(row actdb.Row) map[string]any {
	m := map[string]any{
		"id":      row.Entry.ID(),
		"version": row.Entry.Version(),
	}
	if row.Entry.IsAction() {
		m["seq"] = row.Entry.Seq()
	}
	if row.Hydrated {
		m["value"] = ir.Normalize(row.Value)
	}
	return m
}
