package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Operator operations (create, edit, usage, load, save)
	OperationsTotal *prometheus.CounterVec

	// Quota metrics
	QuotaRejectionsTotal *prometheus.CounterVec

	// Storage metrics
	StorageOperationDuration *prometheus.HistogramVec
	StorageErrorsTotal       *prometheus.CounterVec

	// Business metrics
	SubscribersTotal prometheus.Gauge
}

// NewMetrics creates and registers all metrics on registry. A nil registry
// gets a fresh private one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subdesk_operations_total",
				Help: "Total number of record operations",
			},
			[]string{"operation", "status"},
		),
		QuotaRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subdesk_quota_rejections_total",
				Help: "Total number of usage increments rejected for exceeding the data quota",
			},
			[]string{"plan"},
		),
		StorageOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "subdesk_storage_operation_duration_seconds",
				Help:    "Record store operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "backend"},
		),
		StorageErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subdesk_storage_errors_total",
				Help: "Total number of record store errors",
			},
			[]string{"operation", "backend"},
		),
		SubscribersTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "subdesk_subscribers",
				Help: "Number of subscribers currently held in memory",
			},
		),
	}

	registry.MustRegister(
		m.OperationsTotal,
		m.QuotaRejectionsTotal,
		m.StorageOperationDuration,
		m.StorageErrorsTotal,
		m.SubscribersTotal,
	)

	return m
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordOperation counts an operator operation
func (m *Metrics) RecordOperation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordStorage observes a store call's duration and counts failures
func (m *Metrics) RecordStorage(operation, backend string, start time.Time, err error) {
	m.StorageOperationDuration.WithLabelValues(operation, backend).Observe(time.Since(start).Seconds())
	if err != nil {
		m.StorageErrorsTotal.WithLabelValues(operation, backend).Inc()
	}
}

// WriteTextfile writes all metrics in the Prometheus text format, suitable
// for the node exporter's textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
