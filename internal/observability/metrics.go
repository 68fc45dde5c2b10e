package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the collection of Prometheus metrics exposed by the gateway.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	UpstreamCallsTotal  *prometheus.CounterVec
	TicketsCreated      prometheus.Counter
	TicketsFailed       *prometheus.CounterVec
	AttachmentUploads   *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all gateway metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_calls_total",
			Help: "Total number of calls issued against the upstream ticketing API",
		},
		[]string{"method", "endpoint", "outcome"},
	)

	m.TicketsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_created_total",
			Help: "Total number of tickets successfully created upstream",
		},
	)

	m.TicketsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_failed_total",
			Help: "Total number of ticket creation attempts that failed",
		},
		[]string{"reason"},
	)

	m.AttachmentUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attachment_uploads_total",
			Help: "Total number of attachment upload attempts",
		},
		[]string{"outcome"},
	)

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.UpstreamCallsTotal,
		m.TicketsCreated,
		m.TicketsFailed,
		m.AttachmentUploads,
	)

	return m
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments request counters.
func (m *Metrics) RecordRequest(method, path string, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordUpstreamCall increments the upstream call counter.
func (m *Metrics) RecordUpstreamCall(method, endpoint, outcome string) {
	if m == nil {
		return
	}
	m.UpstreamCallsTotal.WithLabelValues(method, endpoint, outcome).Inc()
}

// RecordTicketCreated increments the success counter.
func (m *Metrics) RecordTicketCreated() {
	if m == nil {
		return
	}
	m.TicketsCreated.Inc()
}

// RecordTicketFailed increments the failure counter for the given reason.
func (m *Metrics) RecordTicketFailed(reason string) {
	if m == nil {
		return
	}
	m.TicketsFailed.WithLabelValues(reason).Inc()
}

// RecordUpload increments the attachment upload counter.
func (m *Metrics) RecordUpload(outcome string) {
	if m == nil {
		return
	}
	m.AttachmentUploads.WithLabelValues(outcome).Inc()
}
