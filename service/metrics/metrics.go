// Package metrics exposes Prometheus collectors for the session store and
// the checkpoint driver.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "waypoint"

// Metrics holds Prometheus metrics for session handling. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Session store
	StoreHitsTotal      prometheus.Counter
	StoreMissesTotal    prometheus.Counter
	StoreCreatedTotal   prometheus.Counter
	StoreEvictionsTotal prometheus.Counter
	StoreSize           prometheus.Gauge
	StorePinned         prometheus.Gauge

	// Checkpoint driver
	AdvancesTotal   *prometheus.CounterVec
	AdvanceDuration *prometheus.HistogramVec
	StepsTotal      *prometheus.CounterVec
}

// New creates and registers metrics with reg.
//
// Metrics:
//   - waypoint_store_hits_total - lookups served from the store
//   - waypoint_store_misses_total - lookups of unknown sessions
//   - waypoint_store_created_total - sessions instantiated
//   - waypoint_store_evictions_total - sessions evicted by capacity
//   - waypoint_store_size - sessions currently held
//   - waypoint_store_pinned - sessions currently in use
//   - waypoint_advances_total{kind} - advances by outcome (before, after, terminal, failed, error)
//   - waypoint_advance_duration_seconds{kind} - advance latency
//   - waypoint_steps_total{action} - executed actions
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StoreHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_hits_total",
			Help:      "Total number of session lookups served from the store",
		}),
		StoreMissesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_misses_total",
			Help:      "Total number of lookups for sessions not held by the store",
		}),
		StoreCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_created_total",
			Help:      "Total number of sessions instantiated",
		}),
		StoreEvictionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_evictions_total",
			Help:      "Total number of sessions evicted",
		}),
		StoreSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_size",
			Help:      "Current number of sessions held by the store",
		}),
		StorePinned: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_pinned",
			Help:      "Current number of sessions in use",
		}),
		AdvancesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advances_total",
			Help:      "Total number of session advances by outcome",
		}, []string{"kind"}),
		AdvanceDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "advance_duration_seconds",
			Help:      "Duration of session advances in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"kind"}),
		StepsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Total number of executed actions",
		}, []string{"action"}),
	}
}

// RecordHit records a store hit.
func (m *Metrics) RecordHit() {
	if m == nil {
		return
	}
	m.StoreHitsTotal.Inc()
}

// RecordMiss records a store miss.
func (m *Metrics) RecordMiss() {
	if m == nil {
		return
	}
	m.StoreMissesTotal.Inc()
}

// RecordCreated records a session instantiation.
func (m *Metrics) RecordCreated() {
	if m == nil {
		return
	}
	m.StoreCreatedTotal.Inc()
}

// RecordEviction records an eviction.
func (m *Metrics) RecordEviction() {
	if m == nil {
		return
	}
	m.StoreEvictionsTotal.Inc()
}

// SetSize updates the size and pinned gauges.
func (m *Metrics) SetSize(size, pinned int) {
	if m == nil {
		return
	}
	m.StoreSize.Set(float64(size))
	m.StorePinned.Set(float64(pinned))
}

// RecordAdvance records an advance outcome and its duration.
func (m *Metrics) RecordAdvance(kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.AdvancesTotal.WithLabelValues(kind).Inc()
	m.AdvanceDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// RecordStep records an executed action.
func (m *Metrics) RecordStep(action string) {
	if m == nil {
		return
	}
	m.StepsTotal.WithLabelValues(action).Inc()
}
