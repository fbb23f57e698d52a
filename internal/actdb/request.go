package actdb

import "fmt"

// Request is the closed set of query shapes Query dispatches on.
// Implemented by Latest, BySeq, ByID, Where, and All.
type Request interface {
	request() // Sealed
}

// Latest requests the most recent action entry in view.
type Latest struct{}

// BySeq requests the action entry with the given seq.
type BySeq int

// ByID requests the entry (of either kind) with the given id.
type ByID string

// Where requests the first entry, in ascending version order, for which
// the predicate holds. A nil Where is an invalid request.
type Where Predicate

// All requests every entry in view, in ascending version order. When
// Where is set only matching entries are returned.
type All struct {
	Where Predicate
}

func (Latest) request() {}
func (BySeq) request()  {}
func (ByID) request()   {}
func (Where) request()  {}
func (All) request()    {}

// Predicate filters entries. get resolves ids bounded to the same version
// as the query that invoked the predicate, hydrating the result.
type Predicate func(e *Entry, get Getter) bool

// Getter looks up and hydrates an entry by id; nil if absent or out of view.
type Getter func(id string) *Row

// describeRequest renders a request for error messages.
func describeRequest(req Request) string {
	switch r := req.(type) {
	case nil:
		return "<nil>"
	case Latest:
		return "Latest"
	case BySeq:
		return fmt.Sprintf("BySeq(%d)", int(r))
	case ByID:
		return fmt.Sprintf("ByID(%q)", string(r))
	case Where:
		return "Where"
	case All:
		return "All"
	default:
		return fmt.Sprintf("%T", req)
	}
}

// queryConfig is the effective configuration for one query.
type queryConfig struct {
	version    int
	bounded    bool
	skipValues bool
}

// QueryOption configures a single query.
type QueryOption func(*queryConfig)

// AtVersion bounds the query to entries with version <= v.
// Bounds compose: the effective bound is the minimum of all bounds in
// play, including the bound of the handle the query runs on.
func AtVersion(v int) QueryOption {
	return func(c *queryConfig) {
		if !c.bounded || v < c.version {
			c.version = v
		}
		c.bounded = true
	}
}

// WithoutValues returns bare entries without resolving them, so no
// action is evaluated by the query.
func WithoutValues() QueryOption {
	return func(c *queryConfig) {
		c.skipValues = true
	}
}

func applyOptions(base queryConfig, opts []QueryOption) queryConfig {
	cfg := base
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Result is the outcome of Query.
// Single-entry requests yield at most one row; All yields any number and
// sets Many.
type Result struct {
	Rows []Row
	Many bool
}

// First returns the first row, or nil when nothing was found.
func (r Result) First() *Row {
	if len(r.Rows) == 0 {
		return nil
	}
	return &r.Rows[0]
}

// Found reports whether the result holds at least one row.
func (r Result) Found() bool {
	return len(r.Rows) > 0
}
