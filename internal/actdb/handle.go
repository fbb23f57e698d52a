package actdb

// Querier is the query surface shared by *DB and Handle.
// Actions receive a Querier bounded to the version just below their own.
type Querier interface {
	// Query dispatches any Request. The only error is INVALID_REQUEST.
	Query(req Request, opts ...QueryOption) (Result, error)

	// Latest returns the most recent action entry in view, or nil.
	Latest(opts ...QueryOption) *Row

	// Get returns the entry with the given id, or nil.
	Get(id string, opts ...QueryOption) *Row

	// Seq returns the action entry with the given seq, or nil.
	Seq(seq int, opts ...QueryOption) *Row

	// Find returns the first entry matching pred, or nil (also for a nil pred).
	Find(pred Predicate, opts ...QueryOption) *Row

	// FindAll returns every entry matching pred in ascending version order.
	FindAll(pred Predicate, opts ...QueryOption) []Row

	// All returns every entry in view in ascending version order.
	All(opts ...QueryOption) []Row

	// At returns a handle bounded to version (composed with any existing bound).
	At(version int) Handle
}

var (
	_ Querier = (*DB)(nil)
	_ Querier = Handle{}
)

// Handle is a query entry point bounded to a version.
//
// A Handle carries its bound explicitly and reads the DB only through the
// read-locked accessors; it never aliases the log or the indices. Handles
// are cheap values, created fresh for every action evaluation.
type Handle struct {
	db    *DB
	bound int
}

// Bound returns the highest version visible through the handle.
func (h Handle) Bound() int {
	return h.bound
}

func (h Handle) base() queryConfig {
	return queryConfig{version: h.bound, bounded: true}
}

// At narrows the handle. The effective bound is min(h.Bound(), version).
func (h Handle) At(version int) Handle {
	return Handle{db: h.db, bound: min(h.bound, version)}
}

// Query implements Querier.
func (h Handle) Query(req Request, opts ...QueryOption) (Result, error) {
	return h.db.query(req, applyOptions(h.base(), opts))
}

// Latest implements Querier.
func (h Handle) Latest(opts ...QueryOption) *Row {
	return h.db.one(Latest{}, h.base(), opts)
}

// Get implements Querier.
func (h Handle) Get(id string, opts ...QueryOption) *Row {
	return h.db.one(ByID(id), h.base(), opts)
}

// Seq implements Querier.
func (h Handle) Seq(seq int, opts ...QueryOption) *Row {
	return h.db.one(BySeq(seq), h.base(), opts)
}

// Find implements Querier.
func (h Handle) Find(pred Predicate, opts ...QueryOption) *Row {
	return h.db.one(Where(pred), h.base(), opts)
}

// FindAll implements Querier.
func (h Handle) FindAll(pred Predicate, opts ...QueryOption) []Row {
	return h.db.many(All{Where: pred}, h.base(), opts)
}

// All implements Querier.
func (h Handle) All(opts ...QueryOption) []Row {
	return h.db.many(All{}, h.base(), opts)
}

// Query implements Querier. With no AtVersion option the whole log is visible.
func (db *DB) Query(req Request, opts ...QueryOption) (Result, error) {
	return db.query(req, applyOptions(queryConfig{}, opts))
}

// Latest implements Querier.
func (db *DB) Latest(opts ...QueryOption) *Row {
	return db.one(Latest{}, queryConfig{}, opts)
}

// Get implements Querier.
func (db *DB) Get(id string, opts ...QueryOption) *Row {
	return db.one(ByID(id), queryConfig{}, opts)
}

// Seq implements Querier.
func (db *DB) Seq(seq int, opts ...QueryOption) *Row {
	return db.one(BySeq(seq), queryConfig{}, opts)
}

// Find implements Querier.
func (db *DB) Find(pred Predicate, opts ...QueryOption) *Row {
	return db.one(Where(pred), queryConfig{}, opts)
}

// FindAll implements Querier.
func (db *DB) FindAll(pred Predicate, opts ...QueryOption) []Row {
	return db.many(All{Where: pred}, queryConfig{}, opts)
}

// All implements Querier.
func (db *DB) All(opts ...QueryOption) []Row {
	return db.many(All{}, queryConfig{}, opts)
}

// one runs a single-entry request; invalid requests read as not found.
func (db *DB) one(req Request, base queryConfig, opts []QueryOption) *Row {
	res, err := db.query(req, applyOptions(base, opts))
	if err != nil {
		return nil
	}
	return res.First()
}

func (db *DB) many(req Request, base queryConfig, opts []QueryOption) []Row {
	res, err := db.query(req, applyOptions(base, opts))
	if err != nil {
		return nil
	}
	return res.Rows
}
