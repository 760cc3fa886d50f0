package admission

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes admission controller counters and gauges. Optional: a
// nil *Metrics disables collection without any branching at call sites
// beyond a nil check.
type Metrics struct {
	decisions        *prometheus.CounterVec
	dispatches       prometheus.Counter
	dispatchFailures prometheus.Counter
	queueDepth       prometheus.Gauge
	cacheEntries     prometheus.Gauge
	tokensAvailable  prometheus.Gauge
}

// NewMetrics creates and registers admission metrics with the given
// registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mentor",
			Subsystem: "admission",
			Name:      "decisions_total",
			Help:      "Admission decisions by outcome reason",
		}, []string{"reason", "priority"}),
		dispatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mentor",
			Subsystem: "admission",
			Name:      "dispatches_total",
			Help:      "Queued requests handed to the analysis dispatcher",
		}),
		dispatchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mentor",
			Subsystem: "admission",
			Name:      "dispatch_failures_total",
			Help:      "Dispatcher calls that failed and were dropped",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mentor",
			Subsystem: "admission",
			Name:      "queue_depth",
			Help:      "Requests waiting in the priority queue",
		}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mentor",
			Subsystem: "admission",
			Name:      "cache_entries",
			Help:      "Entries currently held by the result cache",
		}),
		tokensAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mentor",
			Subsystem: "admission",
			Name:      "tokens_available",
			Help:      "Token bucket level at last observation",
		}),
	}

	collectors := []prometheus.Collector{
		m.decisions, m.dispatches, m.dispatchFailures,
		m.queueDepth, m.cacheEntries, m.tokensAvailable,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) recordDecision(d Decision) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(d.Reason, d.Priority.String()).Inc()
}

func (m *Metrics) recordDispatch(failed bool) {
	if m == nil {
		return
	}
	m.dispatches.Inc()
	if failed {
		m.dispatchFailures.Inc()
	}
}

func (m *Metrics) observe(status Status) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(status.QueueSize))
	m.cacheEntries.Set(float64(status.CacheSize))
	m.tokensAvailable.Set(float64(status.Tokens))
}
