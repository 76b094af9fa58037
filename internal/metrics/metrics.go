package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ReadingsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watts_readings_recorded_total",
			Help: "Meter readings recorded, by outcome.",
		},
		[]string{"outcome"},
	)

	CyclesClosed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watts_cycles_closed_total",
			Help: "Billing cycles closed and rolled over.",
		},
	)

	TariffEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watts_tariff_evaluations_total",
			Help: "Tariff evaluations by slab list used.",
		},
		[]string{"list"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watts_cache_lookups_total",
			Help: "Read-model cache lookups by result.",
		},
		[]string{"result"},
	)
)

// ObserveTariff counts which slab list priced a consumption.
func ObserveTariff(aboveThreshold bool) {
	list := "lte_500"
	if aboveThreshold {
		list = "gt_500"
	}
	TariffEvaluations.WithLabelValues(list).Inc()
}
