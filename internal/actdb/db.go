package actdb

import (
	"log/slog"
	"strconv"
	"sync"

	"github.com/roach88/actdb/internal/ir"
)

// DB is an append-only event log with lazily evaluated, memoized actions.
//
// Thread-safety model:
//   - Store, Act, ActNamed: serialized by the write lock; version, seq and
//     both index updates happen as one step
//   - Queries: safe from any goroutine, concurrently with appends; they
//     see a consistent prefix of the log fixed when the query starts
//   - Action evaluation: runs with no lock held, at most once per entry
//
// The zero value is not usable; create a DB with New.
type DB struct {
	mu   sync.RWMutex
	log  appendLog
	ids  *idIndex
	seqs seqIndex

	cache *valueCache

	registry *Registry
	logger   *slog.Logger
	observer Observer
	verify   bool
	onFault  func(*Fault)
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(db *DB) {
		db.logger = logger
	}
}

// WithRegistry attaches a registry used by ActNamed.
func WithRegistry(reg *Registry) Option {
	return func(db *DB) {
		db.registry = reg
	}
}

// WithObserver attaches an observer (e.g. metrics.Collector).
func WithObserver(obs Observer) Option {
	return func(db *DB) {
		db.observer = obs
	}
}

// WithVerify enables re-evaluation of actions on every cache hit.
//
// Debug use only: verification re-runs whole dependency chains and can be
// quadratic in chain length.
func WithVerify(enabled bool) Option {
	return func(db *DB) {
		db.verify = enabled
	}
}

// WithFaultHandler sets the callback for NONDETERMINISTIC_ACTION faults.
// Default: log at error level.
func WithFaultHandler(fn func(*Fault)) Option {
	return func(db *DB) {
		db.onFault = fn
	}
}

// New creates an empty DB.
func New(opts ...Option) *DB {
	db := &DB{
		ids:      newIDIndex(),
		cache:    newValueCache(),
		logger:   slog.Default(),
		observer: nopObserver{},
	}

	for _, opt := range opts {
		opt(db)
	}

	if db.onFault == nil {
		db.onFault = func(f *Fault) {
			db.logger.Error("consistency fault",
				"code", f.Code,
				"id", f.ID,
				"version", f.Version,
				"message", f.Message,
			)
		}
	}

	return db
}

// Store appends a value entry and returns its id.
// The value is cached immediately; a nil value is stored as null.
func (db *DB) Store(v ir.IRValue) string {
	db.mu.Lock()
	version := db.log.length()
	e := &Entry{
		id:      entryID(version),
		version: version,
		seq:     NoSeq,
	}
	// Cache before push so no reader can see the entry without its value
	db.cache.put(e.id, e.version, ir.Normalize(v))
	db.push(e)
	db.mu.Unlock()

	db.logger.Debug("value stored", "id", e.id, "version", e.version)
	db.observer.Appended(e)
	return e.id
}

// StoreGo converts a host Go value at the boundary and stores it.
func (db *DB) StoreGo(v any) (string, error) {
	val, err := ir.FromGo(v)
	if err != nil {
		return "", err
	}
	return db.Store(val), nil
}

// Act appends an action entry with the next seq. The action is not run;
// it is evaluated on first hydration.
func (db *DB) Act(action Action, args ir.IRValue) *Entry {
	return db.appendAction(action, "", args)
}

// ActNamed appends an action looked up in the registry by name. The name is
// kept on the entry so a durable log can resolve it again on replay.
func (db *DB) ActNamed(name string, args ir.IRValue) (*Entry, error) {
	if db.registry == nil {
		return nil, NewUnknownActionError(name)
	}
	action, ok := db.registry.Lookup(name)
	if !ok {
		return nil, NewUnknownActionError(name)
	}
	return db.appendAction(action, name, args), nil
}

func (db *DB) appendAction(action Action, name string, args ir.IRValue) *Entry {
	db.mu.Lock()
	version := db.log.length()
	e := &Entry{
		id:      entryID(version),
		version: version,
		seq:     db.seqs.length(),
		args:    ir.Normalize(args),
		action:  action,
		name:    name,
	}
	db.push(e)
	db.mu.Unlock()

	db.logger.Debug("action appended", "id", e.id, "version", e.version, "seq", e.seq, "name", name)
	db.observer.Appended(e)
	return e
}

// push is the single append path.
// CRITICAL: caller must hold the write lock.
func (db *DB) push(e *Entry) {
	db.log.append(e)
	db.ids.put(e.id, e)
	if e.IsAction() {
		db.seqs.put(e.seq, e)
	}
}

// entryID derives the identifier from the log length at creation.
func entryID(version int) string {
	return "id_" + strconv.Itoa(version)
}

// Lookup returns the raw entry for id, ignoring any version bound.
// Returns nil if no such entry exists. Never triggers evaluation.
func (db *DB) Lookup(id string) *Entry {
	db.mu.RLock()
	defer db.mu.RUnlock()
	e, _ := db.ids.get(id)
	return e
}

// Len returns the number of entries (the next version to be assigned).
func (db *DB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.log.length()
}

// Entries returns a snapshot of the log in version order.
func (db *DB) Entries() []*Entry {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]*Entry, db.log.length())
	copy(out, db.log.entries)
	return out
}

// Cached returns the cached value for id without evaluating anything.
func (db *DB) Cached(id string) (ir.IRValue, bool) {
	return db.cache.get(id)
}

// Registry returns the attached registry, or nil.
func (db *DB) Registry() *Registry {
	return db.registry
}

// At returns a query handle bounded to version.
func (db *DB) At(version int) Handle {
	return db.scoped(version)
}

func (db *DB) scoped(version int) Handle {
	return Handle{db: db, bound: version}
}

// Read accessors below hold the read lock only for the lookup itself.

func (db *DB) entryAt(version int) (*Entry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.log.at(version)
}

func (db *DB) entryByID(id string) (*Entry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.ids.get(id)
}

func (db *DB) entryBySeq(seq int) (*Entry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.seqs.get(seq)
}

func (db *DB) lastAction() (*Entry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.seqs.get(db.seqs.length() - 1)
}

func (db *DB) fault(f *Fault) {
	db.observer.Faulted(f)
	db.onFault(f)
}
