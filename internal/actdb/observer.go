package actdb

// Observer receives engine events. Implementations must be safe for
// concurrent use and must not call back into the DB.
// See internal/metrics for the Prometheus implementation.
type Observer interface {
	// Appended is called after an entry becomes visible.
	Appended(e *Entry)

	// Evaluated is called each time an action body runs.
	Evaluated(e *Entry)

	// CacheHit is called when an action value is served from the cache.
	CacheHit(e *Entry)

	// Faulted is called for every fault, before it is raised or handled.
	Faulted(f *Fault)
}

type nopObserver struct{}

func (nopObserver) Appended(*Entry)  {}
func (nopObserver) Evaluated(*Entry) {}
func (nopObserver) CacheHit(*Entry)  {}
func (nopObserver) Faulted(*Fault)   {}
