package actdb

import (
	"sync/atomic"

	"github.com/roach88/actdb/internal/ir"
)

func obj(pairs ...ir.IRPair) ir.IRObject {
	return ir.NewIRObjectFromPairs(pairs...)
}

// gather resolves every id in args and returns an object of their values.
func gather(q Querier, args ir.IRValue) ir.IRValue {
	refs, ok := args.(ir.IRObject)
	if !ok {
		return ir.IRNull{}
	}
	out := make(ir.IRObject, len(refs))
	for k, ref := range refs {
		id, ok := ref.(ir.IRString)
		if !ok {
			out[k] = ir.IRNull{}
			continue
		}
		if row := q.Get(string(id)); row != nil {
			out[k] = row.Value
		} else {
			out[k] = ir.IRNull{}
		}
	}
	return out
}

// accumulate appends args to the previous latest array value.
func accumulate(q Querier, args ir.IRValue) ir.IRValue {
	prev := q.Latest()
	if prev != nil {
		if arr, ok := prev.Value.(ir.IRArray); ok {
			out := make(ir.IRArray, 0, len(arr)+1)
			out = append(out, arr...)
			return append(out, args)
		}
	}
	return ir.IRArray{args}
}

// counting wraps fn and counts how often its body runs.
type counting struct {
	calls atomic.Int64
	fn    Action
}

func newCounting(fn Action) *counting {
	return &counting{fn: fn}
}

func (c *counting) Action(q Querier, args ir.IRValue) ir.IRValue {
	c.calls.Add(1)
	return c.fn(q, args)
}

func (c *counting) Calls() int64 {
	return c.calls.Load()
}

func constant(v ir.IRValue) Action {
	return func(Querier, ir.IRValue) ir.IRValue { return v }
}

// recoverFault runs fn and returns the *Fault it panicked with, or nil.
func recoverFault(fn func()) (f *Fault) {
	defer func() {
		if r := recover(); r != nil {
			f, _ = r.(*Fault)
		}
	}()
	fn()
	return nil
}
