package actdb

// view is the visible prefix of the log for one query: entries with
// version <= limit. limit < 0 is an empty view.
type view struct {
	db      *DB
	limit   int
	bounded bool
	hydrate bool
}

// query dispatches req. The log length is read once at the start, so
// entries appended while the query runs are never visible to it.
func (db *DB) query(req Request, cfg queryConfig) (Result, error) {
	if req == nil {
		return Result{}, NewInvalidRequestError(describeRequest(req), "request is nil")
	}

	v := view{
		db:      db,
		limit:   db.Len() - 1,
		bounded: cfg.bounded,
		hydrate: !cfg.skipValues,
	}
	if cfg.bounded && cfg.version < v.limit {
		v.limit = cfg.version
	}

	switch r := req.(type) {
	case Latest:
		return v.single(v.latest()), nil
	case BySeq:
		return v.single(v.bySeq(int(r))), nil
	case ByID:
		return v.single(v.byID(string(r))), nil
	case Where:
		if r == nil {
			return Result{}, NewInvalidRequestError(describeRequest(req), "predicate is nil")
		}
		return v.single(v.first(Predicate(r))), nil
	case All:
		return Result{Rows: v.all(r.Where), Many: true}, nil
	default:
		return Result{}, NewInvalidRequestError(describeRequest(req), "unrecognized request type")
	}
}

func (v view) visible(e *Entry) bool {
	return e != nil && e.version <= v.limit
}

// latest finds the most recent action entry in view. Unbounded queries use
// the seq index directly; bounded ones scan versions downward from the
// bound until an action entry turns up.
func (v view) latest() *Entry {
	if !v.bounded {
		if e, ok := v.db.lastAction(); ok && v.visible(e) {
			return e
		}
	}
	for i := v.limit; i >= 0; i-- {
		if e, ok := v.db.entryAt(i); ok && e.IsAction() {
			return e
		}
	}
	return nil
}

func (v view) bySeq(seq int) *Entry {
	e, ok := v.db.entryBySeq(seq)
	if !ok || !v.visible(e) {
		return nil
	}
	return e
}

func (v view) byID(id string) *Entry {
	e, ok := v.db.entryByID(id)
	if !ok || !v.visible(e) {
		return nil
	}
	return e
}

// getter returns the Getter handed to predicates: bounded like the query,
// always hydrating.
func (v view) getter() Getter {
	return func(id string) *Row {
		e := v.byID(id)
		if e == nil {
			return nil
		}
		row := v.db.hydrate(e)
		return &row
	}
}

// first returns the lowest-version entry matching pred.
func (v view) first(pred Predicate) *Entry {
	get := v.getter()
	for _, e := range v.db.prefix(v.limit) {
		if pred(e, get) {
			return e
		}
	}
	return nil
}

// all returns every entry in view matching pred (all entries if pred is nil).
func (v view) all(pred Predicate) []Row {
	entries := v.db.prefix(v.limit)
	get := v.getter()

	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		if pred != nil && !pred(e, get) {
			continue
		}
		rows = append(rows, v.row(e))
	}
	return rows
}

func (v view) row(e *Entry) Row {
	if v.hydrate {
		return v.db.hydrate(e)
	}
	return Row{Entry: e}
}

func (v view) single(e *Entry) Result {
	if e == nil {
		return Result{}
	}
	return Result{Rows: []Row{v.row(e)}}
}

// prefix copies entries[0..limit] under the read lock. Predicates and
// hydration then run without any lock held.
func (db *DB) prefix(limit int) []*Entry {
	db.mu.RLock()
	defer db.mu.RUnlock()

	n := min(limit+1, db.log.length())
	if n <= 0 {
		return nil
	}
	out := make([]*Entry, n)
	copy(out, db.log.entries[:n])
	return out
}
