// Package testutil provides test doubles shared by ActDB package tests.
package testutil

import (
	"sync"

	"github.com/roach88/actdb/internal/actdb"
	"github.com/roach88/actdb/internal/ir"
)

// CountingAction wraps an action and counts how often its body runs,
// per entry version and in total.
//
// Memoization tests use it to show an action ran exactly once however many
// times its value was read.
//
// Thread-safety: all methods are safe for concurrent use.
type CountingAction struct {
	mu       sync.Mutex
	total    int
	byBound  map[int]int
	delegate actdb.Action
}

// NewCountingAction wraps fn. A nil fn returns null.
func NewCountingAction(fn actdb.Action) *CountingAction {
	if fn == nil {
		fn = func(actdb.Querier, ir.IRValue) ir.IRValue { return ir.IRNull{} }
	}
	return &CountingAction{byBound: make(map[int]int), delegate: fn}
}

// Action is the function to pass to DB.Act or Registry.Register.
func (c *CountingAction) Action(q actdb.Querier, args ir.IRValue) ir.IRValue {
	c.mu.Lock()
	c.total++
	if h, ok := q.(actdb.Handle); ok {
		c.byBound[h.Bound()]++
	}
	c.mu.Unlock()

	return c.delegate(q, args)
}

// Calls returns the total number of evaluations.
func (c *CountingAction) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// CallsAt returns the number of evaluations that ran with a handle bounded
// to version, i.e. evaluations of the entry at version+1.
func (c *CountingAction) CallsAt(version int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byBound[version]
}

// Reset clears all counts.
func (c *CountingAction) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = 0
	c.byBound = make(map[int]int)
}

// Const returns an action that ignores its inputs and returns v.
func Const(v ir.IRValue) actdb.Action {
	return func(actdb.Querier, ir.IRValue) ir.IRValue { return v }
}
