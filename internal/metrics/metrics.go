package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for Reservas
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Business Metrics
	ReservationsCreatedTotal prometheus.Counter
	ApprovalsDecidedTotal    prometheus.CounterVec
	ScansTotal               prometheus.CounterVec
	TransfersExecutedTotal   prometheus.CounterVec
	MailJobsEnqueuedTotal    prometheus.CounterVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservas_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reservas_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "reservas_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Cache Metrics
		CacheHitsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservas_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservas_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Business Metrics
		ReservationsCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reservas_reservations_created_total",
				Help: "Total reservations created",
			},
		),
		ApprovalsDecidedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservas_approvals_decided_total",
				Help: "Total approval decisions by outcome",
			},
			[]string{"decision"},
		),
		ScansTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservas_scans_total",
				Help: "Total QR scans by result",
			},
			[]string{"result"},
		),
		TransfersExecutedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservas_transfers_executed_total",
				Help: "Total transfers executed by kind",
			},
			[]string{"kind"},
		),
		MailJobsEnqueuedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservas_mail_jobs_enqueued_total",
				Help: "Total mail jobs pushed to the outbound queue by kind",
			},
			[]string{"kind"},
		),
	}
}
