// Package metrics holds the Prometheus collectors of the dispatch service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "lastmile"

var (
	// Registry is the dedicated registry served on /metrics.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by method, route and status."},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)

	// SimulationTicks counts tick passes by outcome: changed, unchanged, error.
	SimulationTicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "simulation_ticks_total", Help: "Simulation tick passes by outcome."},
		[]string{"outcome"},
	)
	SimulationTickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: namespace, Name: "simulation_tick_duration_seconds", Help: "Duration of one simulation tick pass.", Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 2}},
	)

	OrderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "order_transitions_total", Help: "Committed order status transitions by target status."},
		[]string{"to"},
	)

	OptimizerFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "optimizer_fallbacks_total", Help: "Route optimizations that fell back to the input order."},
		[]string{"reason"},
	)

	GeofenceRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "geofence_rejections_total", Help: "Actions rejected by a geofence."},
		[]string{"kind"},
	)

	// ExternalRequests counts outbound calls by service and outcome.
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_requests_total", Help: "Outbound requests to external services."},
		[]string{"service", "outcome"},
	)

	LiveFeedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: namespace, Name: "live_feed_clients", Help: "Connected websocket live feed clients."},
	)
)

var regOnce sync.Once

// Register adds every collector to Registry. Safe to call more than once.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(
			HTTPRequests,
			HTTPDuration,
			SimulationTicks,
			SimulationTickDuration,
			OrderTransitions,
			OptimizerFallbacks,
			GeofenceRejections,
			ExternalRequests,
			LiveFeedClients,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}
