package actdb

import (
	"github.com/roach88/actdb/internal/ir"
)

// Resolve returns the value of e, evaluating its action on first use.
// e must have been returned by this DB.
func (db *DB) Resolve(e *Entry) ir.IRValue {
	return db.resolve(e)
}

// Hydrate returns e together with its resolved value.
func (db *DB) Hydrate(e *Entry) Row {
	return db.hydrate(e)
}

func (db *DB) hydrate(e *Entry) Row {
	return Row{Entry: e, Value: db.resolve(e), Hydrated: true}
}

// resolve consults the cache, then evaluates actions on a miss.
func (db *DB) resolve(e *Entry) ir.IRValue {
	if v, ok := db.cache.get(e.id); ok {
		if e.IsAction() {
			db.observer.CacheHit(e)
			if db.verify {
				db.verifyCached(e, v)
			}
		}
		return v
	}

	if !e.IsAction() {
		// Store caches before push, so this only happens for an entry from
		// another DB.
		db.logger.Warn("value entry has no cached value", "id", e.id, "version", e.version)
		return ir.IRNull{}
	}

	return db.cache.fill(e.id, e.version, func() ir.IRValue {
		return db.evaluate(e)
	})
}

// evaluate runs e's action against a handle bounded to e.version - 1.
// A nil result is normalised to null.
func (db *DB) evaluate(e *Entry) ir.IRValue {
	if e.action == nil {
		db.logger.Warn("action entry has no function", "id", e.id, "name", e.name)
		return ir.IRNull{}
	}

	db.logger.Debug("evaluating action", "id", e.id, "version", e.version, "seq", e.seq, "name", e.name)
	db.observer.Evaluated(e)

	return ir.Normalize(e.action(db.scoped(e.version-1), e.args))
}

// verifyCached re-runs e's action and reports a fault if the fresh value
// differs from the cached one. The cached value always wins.
func (db *DB) verifyCached(e *Entry, cached ir.IRValue) {
	fresh := db.evaluate(e)
	if ir.Equal(fresh, cached) {
		return
	}

	f := newFault(FaultCodeNondeterministicAction, e.id, e.version,
		"re-evaluation produced a different value than the cache")
	f.Details = map[string]string{
		"cached_hash": hashOrEmpty(cached),
		"fresh_hash":  hashOrEmpty(fresh),
	}
	if e.name != "" {
		f.Details["name"] = e.name
	}
	db.fault(f)
}

func hashOrEmpty(v ir.IRValue) string {
	h, err := ir.ValueHash(v)
	if err != nil {
		return ""
	}
	return h
}
