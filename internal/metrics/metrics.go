package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks completed requests per normalized endpoint
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_requests_total",
			Help: "Total number of completed requests",
		},
		[]string{"endpoint", "status"},
	)

	// RequestDuration tracks request latency per normalized endpoint
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulse_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// SLAViolationsTotal tracks threshold breaches found by compliance sweeps
	SLAViolationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_sla_violations_total",
			Help: "Total number of SLA threshold violations",
		},
		[]string{"endpoint", "kind", "severity"},
	)

	// SweepsTotal tracks completed compliance sweeps
	SweepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_sla_sweeps_total",
			Help: "Total number of compliance sweeps",
		},
	)

	// AlertDeliveriesTotal tracks alert sink deliveries by outcome
	AlertDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_alert_deliveries_total",
			Help: "Total number of alert deliveries per sink",
		},
		[]string{"sink", "outcome"},
	)
)
