// Package metrics provides Prometheus metrics for LifeIO.
// Counters, gauges and histograms for reconciliation, XP, categories,
// HTTP traffic and health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lifeio/lifeio/internal/domain"
)

// OtherCategory is the label shared by every category without a default
// multiplier. Category names are user input.
const OtherCategory = "other"

// ─── Activities ─────────────────────────────────────────────────────────────

// ActivitiesRecorded tracks reconciled activity intervals by category.
var ActivitiesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lifeio",
	Name:      "activities_recorded_total",
	Help:      "Total activity intervals stored by reconciliation.",
}, []string{"category"})

// ActivitiesReplaced tracks stored intervals purged because a newer one overlapped them.
var ActivitiesReplaced = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lifeio",
	Name:      "activities_replaced_total",
	Help:      "Total stored intervals deleted by overlap purge.",
})

// ActivitiesClipped tracks intervals whose end was clipped to the day boundary.
var ActivitiesClipped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lifeio",
	Name:      "activities_clipped_total",
	Help:      "Total intervals clipped at midnight of their start day.",
})

// ReconcileLatency tracks the duration of one reconciliation, lock wait included.
var ReconcileLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "lifeio",
	Name:      "reconcile_latency_seconds",
	Help:      "Reconciliation duration in seconds.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
})

// ─── XP ─────────────────────────────────────────────────────────────────────

// XPAwarded tracks XP handed out per category. Negative categories are
// reported through XPDeducted so the counter stays monotonic.
var XPAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lifeio",
	Name:      "xp_awarded_total",
	Help:      "Total positive XP awarded.",
}, []string{"category"})

// XPDeducted tracks XP removed by negative multipliers.
var XPDeducted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lifeio",
	Name:      "xp_deducted_total",
	Help:      "Total XP removed by negative multipliers (absolute value).",
}, []string{"category"})

// ─── Categories ─────────────────────────────────────────────────────────────

// CategoriesCreated tracks lazily created category multipliers.
var CategoriesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lifeio",
	Name:      "categories_created_total",
	Help:      "Total category multipliers created on first use, by store handle.",
}, []string{"handle"})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests tracks served requests by route pattern and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lifeio",
	Name:      "http_requests_total",
	Help:      "Total HTTP requests served.",
}, []string{"method", "route", "status"})

// HTTPLatency tracks request duration by route pattern.
var HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "lifeio",
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route"})

// ─── Events ─────────────────────────────────────────────────────────────────

// EventsPublished tracks outbound domain events by type and result.
var EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lifeio",
	Name:      "events_published_total",
	Help:      "Total domain events handed to the publisher.",
}, []string{"type", "result"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "lifeio",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})

// ─── Helpers ────────────────────────────────────────────────────────────────

// CategoryLabel maps a category name to a bounded label value.
func CategoryLabel(name string) string {
	if _, ok := domain.DefaultMultipliers[name]; ok {
		return name
	}
	return OtherCategory
}

// ObserveXP records xp against the awarded or deducted counter.
func ObserveXP(category string, xp float64) {
	category = CategoryLabel(category)
	switch {
	case xp > 0:
		XPAwarded.WithLabelValues(category).Add(xp)
	case xp < 0:
		XPDeducted.WithLabelValues(category).Add(-xp)
	}
}

// BoolGauge converts a health flag to a gauge value.
func BoolGauge(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}
