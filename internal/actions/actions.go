// Package actions provides the built-in named actions.
//
// Every action here is a pure function of its handle and arguments, so a
// log that references them by name replays to the same values.
package actions

import (
	"github.com/roach88/actdb/internal/actdb"
	"github.com/roach88/actdb/internal/ir"
)

// Names of the built-in actions.
const (
	Gather     = "gather"
	Accumulate = "accumulate"
	Count      = "count"
)

// Register installs every built-in action into reg.
func Register(reg *actdb.Registry) error {
	builtins := []struct {
		name   string
		action actdb.Action
	}{
		{Gather, GatherAction},
		{Accumulate, AccumulateAction},
		{Count, CountAction},
	}
	for _, b := range builtins {
		if err := reg.Register(b.name, b.action); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-ins.
func NewRegistry() *actdb.Registry {
	reg := actdb.NewRegistry()
	if err := Register(reg); err != nil {
		// Fresh registry; a failure here is a duplicate in the table above.
		panic(err)
	}
	return reg
}

// GatherAction reads an object mapping keys to ids and returns an object
// mapping the same keys to the referenced values. Ids that are not strings
// or are not visible resolve to null. Non-object args yield null.
func GatherAction(q actdb.Querier, args ir.IRValue) ir.IRValue {
	refs, ok := args.(ir.IRObject)
	if !ok {
		return ir.IRNull{}
	}

	out := make(ir.IRObject, len(refs))
	for _, key := range refs.SortedKeys() {
		out[key] = ir.IRNull{}
		id, ok := refs[key].(ir.IRString)
		if !ok {
			continue
		}
		if row := q.Get(string(id)); row != nil {
			out[key] = ir.Normalize(row.Value)
		}
	}
	return out
}

// AccumulateAction appends args to the value of the latest earlier action
// when that value is an array, and otherwise starts a new array [args].
func AccumulateAction(q actdb.Querier, args ir.IRValue) ir.IRValue {
	prev := q.Latest()
	if prev != nil {
		if arr, ok := prev.Value.(ir.IRArray); ok {
			// Copy: the previous array is a cached value and must not change.
			out := make(ir.IRArray, 0, len(arr)+1)
			out = append(out, arr...)
			return append(out, ir.Normalize(args))
		}
	}
	return ir.IRArray{ir.Normalize(args)}
}

// CountAction returns the number of entries visible to the action, which
// is its own version. When args is an object with "actions": true only
// action entries are counted.
func CountAction(q actdb.Querier, args ir.IRValue) ir.IRValue {
	onlyActions := false
	if o, ok := args.(ir.IRObject); ok {
		onlyActions = ir.Equal(o["actions"], ir.IRBool(true))
	}

	if !onlyActions {
		return ir.IRInt(len(q.All(actdb.WithoutValues())))
	}
	rows := q.FindAll(func(e *actdb.Entry, _ actdb.Getter) bool {
		return e.IsAction()
	}, actdb.WithoutValues())
	return ir.IRInt(len(rows))
}
