// Package metrics holds the Prometheus collectors for the service.
// Collectors register on the default registry at init; /metrics serves them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StockAdjustments counts committed stock changes by movement type.
	StockAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_adjustments_total",
			Help: "Total number of committed stock adjustments",
		},
		[]string{"movement_type"},
	)

	// StockAdjustmentFailures counts rejected or failed adjustments.
	StockAdjustmentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_adjustment_failures_total",
			Help: "Total number of failed stock adjustments",
		},
		[]string{"reason"},
	)

	// StorageFaults counts snapshot load/save failures.
	StorageFaults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_storage_faults_total",
			Help: "Total number of storage faults",
		},
		[]string{"op"},
	)

	// SnapshotBytes is the encoded size of the last saved snapshot.
	SnapshotBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docstore_snapshot_bytes",
			Help: "Size in bytes of the last saved snapshot",
		},
	)

	// DriftRecords is the number of drifted records found by the last check.
	DriftRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_drift_records",
			Help: "Inventory records disagreeing with movement replay at last check",
		},
	)

	// HTTPRequests counts API requests.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes API latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)
)

// ObserveSave is a docstore.BlobStore OnSave hook.
func ObserveSave(size int) {
	SnapshotBytes.Set(float64(size))
}
