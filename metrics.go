package symcore

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the prometheus collectors that cmd/symserver exposes on
// /metrics to let an operator watch DAG growth during a long-running
// training loop. It is a plain
// field on Context rather than package-level globals so that independent
// Contexts (and independent tests) never share a counter.
type Metrics struct {
	NodesInterned  *prometheus.CounterVec
	InternHits     *prometheus.CounterVec
	InternMisses   *prometheus.CounterVec
	NodesReleased  *prometheus.CounterVec
	DirtyBumps     prometheus.Counter
	EvalCacheHits  prometheus.Counter
	EvalCacheMiss  prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		NodesInterned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "symcore_nodes_interned_total",
			Help: "Nodes newly allocated into an interning table, by kind.",
		}, []string{"kind"}),
		InternHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "symcore_intern_hits_total",
			Help: "Interning table lookups that found an existing node, by kind.",
		}, []string{"kind"}),
		InternMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "symcore_intern_misses_total",
			Help: "Interning table lookups that allocated a new node, by kind.",
		}, []string{"kind"}),
		NodesReleased: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "symcore_nodes_released_total",
			Help: "Nodes whose refcount reached zero and were unregistered, by kind.",
		}, []string{"kind"}),
		DirtyBumps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "symcore_dirty_bumps_total",
			Help: "Dirty-level bumps (variable assignments and Touch calls), each invalidating every evaluation cache.",
		}),
		EvalCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "symcore_eval_cache_hits_total",
			Help: "Evaluate() calls served from a clean cache.",
		}),
		EvalCacheMiss: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "symcore_eval_cache_misses_total",
			Help: "Evaluate() calls that recomputed the value.",
		}),
	}
}

// Register adds every collector to reg, for cmd/symserver's /metrics
// endpoint.
func (m *Metrics) Register(reg *prometheus.Registry) {
	reg.MustRegister(m.NodesInterned, m.InternHits, m.InternMisses, m.NodesReleased, m.DirtyBumps, m.EvalCacheHits, m.EvalCacheMiss)
}

func (m *Metrics) recordIntern(k Kind, hit bool) {
	if hit {
		m.InternHits.WithLabelValues(k.String()).Inc()
	} else {
		m.InternMisses.WithLabelValues(k.String()).Inc()
		m.NodesInterned.WithLabelValues(k.String()).Inc()
	}
}

func (m *Metrics) recordRelease(k Kind) {
	m.NodesReleased.WithLabelValues(k.String()).Inc()
}
