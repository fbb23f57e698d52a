// Package metrics exports ActDB engine events as Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/actdb/internal/actdb"
)

const namespace = "actdb"

// Entry kinds used as the "kind" label of appends_total.
const (
	KindValue  = "value"
	KindAction = "action"
)

// Collector implements actdb.Observer with Prometheus counters.
//
// Counters:
//   - actdb_appends_total{kind}: entries appended, by kind
//   - actdb_evaluations_total: action bodies run
//   - actdb_cache_hits_total: action values served from the cache
//   - actdb_faults_total{code}: faults, by code
type Collector struct {
	Appends     *prometheus.CounterVec
	Evaluations prometheus.Counter
	CacheHits   prometheus.Counter
	Faults      *prometheus.CounterVec
}

var _ actdb.Observer = (*Collector)(nil)

// New creates a Collector and registers its counters with reg.
// A nil reg leaves the counters unregistered.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		Appends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appends_total",
			Help:      "Total log entries appended, by kind",
		}, []string{"kind"}),
		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Total action evaluations",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total action values served from the value cache",
		}),
		Faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faults_total",
			Help:      "Total consistency faults, by code",
		}, []string{"code"}),
	}

	if reg != nil {
		reg.MustRegister(c.Appends, c.Evaluations, c.CacheHits, c.Faults)
	}
	return c
}

// Appended implements actdb.Observer.
func (c *Collector) Appended(e *actdb.Entry) {
	kind := KindValue
	if e.IsAction() {
		kind = KindAction
	}
	c.Appends.WithLabelValues(kind).Inc()
}

// Evaluated implements actdb.Observer.
func (c *Collector) Evaluated(*actdb.Entry) {
	c.Evaluations.Inc()
}

// CacheHit implements actdb.Observer.
func (c *Collector) CacheHit(*actdb.Entry) {
	c.CacheHits.Inc()
}

// Faulted implements actdb.Observer.
func (c *Collector) Faulted(f *actdb.Fault) {
	c.Faults.WithLabelValues(string(f.Code)).Inc()
}

// Summary gathers g and returns each counter family's total, summed over
// labels. Used for verbose CLI output.
func Summary(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(families))
	for _, mf := range families {
		total := 0.0
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		out[mf.GetName()] = total
	}
	return out, nil
}
