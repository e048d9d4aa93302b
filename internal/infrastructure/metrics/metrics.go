package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all prometheus metrics for the rewards service.
// uses a custom registry to avoid polluting the global namespace.
type Metrics struct {
	Registry *prometheus.Registry

	// http_request_duration_seconds - histogram for api latency
	HTTPRequestDuration *prometheus.HistogramVec

	// rewards_users_computed_total - counter of per-user computations by outcome
	UsersComputedTotal *prometheus.CounterVec

	// rewards_events_dropped_total - counter of filtered activity records by reason
	EventsDroppedTotal *prometheus.CounterVec

	// rewards_discrepancies_total - users whose live balance disagrees with the recomputation
	DiscrepanciesTotal prometheus.Counter

	// rewards_recompute_duration_seconds - histogram for batch recomputations
	RecomputeDuration prometheus.Histogram

	// rewards_breakdown_cache_total - breakdown cache lookups by result
	CacheLookupsTotal *prometheus.CounterVec
}

// New creates and registers all prometheus metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	// add standard go runtime and process collectors
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		UsersComputedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewards_users_computed_total",
				Help: "Total number of per-user reward computations",
			},
			[]string{"outcome"},
		),

		EventsDroppedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewards_events_dropped_total",
				Help: "Total number of activity records filtered before rewarding",
			},
			[]string{"reason"},
		),

		DiscrepanciesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rewards_discrepancies_total",
			Help: "Total number of computations whose live balance differed from the recomputed total",
		}),

		RecomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rewards_recompute_duration_seconds",
			Help:    "Duration of batch reward recomputations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~7min
		}),

		CacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewards_breakdown_cache_total",
				Help: "Total number of breakdown cache lookups",
			},
			[]string{"result"},
		),
	}

	// register all custom metrics
	reg.MustRegister(
		m.HTTPRequestDuration,
		m.UsersComputedTotal,
		m.EventsDroppedTotal,
		m.DiscrepanciesTotal,
		m.RecomputeDuration,
		m.CacheLookupsTotal,
	)

	return m
}

// RecordHTTPRequest records the duration of an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, durationSeconds float64) {
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
}

// RecordUserComputed increments the per-user computation counter.
// outcome is "computed" or "failed".
func (m *Metrics) RecordUserComputed(outcome string) {
	m.UsersComputedTotal.WithLabelValues(outcome).Inc()
}

// RecordEventsDropped adds n filtered records for a reason. n <= 0 is ignored.
func (m *Metrics) RecordEventsDropped(reason string, n int) {
	if n <= 0 {
		return
	}
	m.EventsDroppedTotal.WithLabelValues(reason).Add(float64(n))
}

// RecordDiscrepancy counts a user whose live balance disagrees.
func (m *Metrics) RecordDiscrepancy() {
	m.DiscrepanciesTotal.Inc()
}

// RecordRecompute records the duration of a batch recomputation.
func (m *Metrics) RecordRecompute(durationSeconds float64) {
	m.RecomputeDuration.Observe(durationSeconds)
}

// RecordCacheLookup counts a breakdown cache lookup. result is "hit" or "miss".
func (m *Metrics) RecordCacheLookup(result string) {
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}
