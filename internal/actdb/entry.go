package actdb

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/actdb/internal/ir"
)

// NoSeq is the Seq of a value entry. It is never stored in the seq index.
const NoSeq = -1

// Action derives a value from prior state and its arguments.
//
// q is bounded to the version just below the action's own entry. The
// function must be deterministic given q and args: its first result is
// cached and reused for the lifetime of the log.
type Action func(q Querier, args ir.IRValue) ir.IRValue

// Entry is one immutable record in the log.
// Fields are unexported so that nothing outside the append path can change
// an entry after it has been written.
type Entry struct {
	id      string
	version int
	seq     int
	args    ir.IRValue
	action  Action
	name    string
}

// ID returns the entry's opaque identifier ("id_<version>").
func (e *Entry) ID() string { return e.id }

// Version returns the entry's position in the log.
func (e *Entry) Version() int { return e.version }

// Seq returns the entry's position among action entries, or NoSeq.
func (e *Entry) Seq() int { return e.seq }

// IsAction reports whether the entry is an action entry.
func (e *Entry) IsAction() bool { return e.seq != NoSeq }

// Args returns the action's arguments (nil for value entries).
func (e *Entry) Args() ir.IRValue { return e.args }

// Action returns the derivation function (nil for value entries).
func (e *Entry) Action() Action { return e.action }

// Name returns the registry name of the action, or "" for anonymous
// closures and value entries.
func (e *Entry) Name() string { return e.name }

// String implements fmt.Stringer.
func (e *Entry) String() string {
	if e.IsAction() {
		return fmt.Sprintf("%s@%d(seq=%d)", e.id, e.version, e.seq)
	}
	return fmt.Sprintf("%s@%d", e.id, e.version)
}

// MarshalJSON renders the durable fields of the entry.
func (e *Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.fields())
}

func (e *Entry) fields() map[string]any {
	m := map[string]any{
		"id":      e.id,
		"version": e.version,
	}
	if e.IsAction() {
		m["seq"] = e.seq
		m["args"] = ir.Normalize(e.args)
		if e.name != "" {
			m["name"] = e.name
		}
	}
	return m
}

// Row is an entry plus its resolved value (a hydrated row).
// When a query runs WithoutValues, Hydrated is false and Value is nil.
type Row struct {
	Entry    *Entry
	Value    ir.IRValue
	Hydrated bool
}

// ID returns the underlying entry's identifier.
func (r *Row) ID() string { return r.Entry.ID() }

// MarshalJSON renders the entry fields plus "value" when hydrated.
func (r Row) MarshalJSON() ([]byte, error) {
	m := r.Entry.fields()
	if r.Hydrated {
		m["value"] = ir.Normalize(r.Value)
	}
	return json.Marshal(m)
}
