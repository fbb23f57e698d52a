package actdb

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/actdb/internal/ir"
)

// valueCache maps identifiers to resolved values.
//
// Value entries are put eagerly by Store; action entries are filled lazily
// by fill. Once present, a value never changes.
//
// Thread-safety: all methods are safe for concurrent use. Concurrent fills
// for one id share a single evaluation via singleflight.
type valueCache struct {
	mu     sync.RWMutex
	values map[string]ir.IRValue
	flight singleflight.Group
}

func newValueCache() *valueCache {
	return &valueCache{values: make(map[string]ir.IRValue)}
}

func (c *valueCache) has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.values[id]
	return ok
}

func (c *valueCache) get(id string) (ir.IRValue, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[id]
	return v, ok
}

// put stores v for id exactly once.
// A second put for the same id panics with a DUPLICATE_VALUE fault.
func (c *valueCache) put(id string, version int, v ir.IRValue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.values[id]; exists {
		panic(newFault(FaultCodeDuplicateValue, id, version, "value cache written twice for one id"))
	}
	c.values[id] = v
}

// fill returns the cached value for id, computing it with compute if absent.
//
// compute runs at most once per id: concurrent callers join the in-flight
// evaluation, and the cache is re-checked inside the flight so a caller
// that missed just before another finished does not compute again.
func (c *valueCache) fill(id string, version int, compute func() ir.IRValue) ir.IRValue {
	res, _, _ := c.flight.Do(id, func() (any, error) {
		if v, ok := c.get(id); ok {
			return v, nil
		}
		v := compute()
		c.put(id, version, v)
		return v, nil
	})
	return res.(ir.IRValue)
}

func (c *valueCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}
