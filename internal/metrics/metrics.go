// Package metrics provides Prometheus metrics for the drives browser.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Restoration metrics
	restorationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivesbrowser_restorations_total",
			Help: "Total browser restorations by strategy and result",
		},
		[]string{"strategy", "result"},
	)

	restorationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drivesbrowser_restoration_duration_seconds",
			Help:    "Time from restoration start to settle or failure",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	browsersRestoring = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drivesbrowser_browsers_restoring",
			Help: "Number of browser instances currently marked as restoring",
		},
	)

	// Command metrics
	commandExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivesbrowser_command_executions_total",
			Help: "Total command executions",
		},
		[]string{"command", "status"},
	)

	// Drive registry metrics
	drivesRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drivesbrowser_drives_registered",
			Help: "Number of drives in the registry",
		},
	)

	driveLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivesbrowser_drive_lookups_total",
			Help: "Total drive lookups by result",
		},
		[]string{"result"},
	)

	// Listing metrics
	listingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drivesbrowser_listing_duration_seconds",
			Help:    "Directory listing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"drive"},
	)

	// Router metrics
	navigationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drivesbrowser_navigations_total",
			Help: "Total router navigations",
		},
	)

	signalListeners = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drivesbrowser_signal_listeners",
			Help: "Number of connected signal listeners",
		},
	)

	// State store metrics
	stateOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drivesbrowser_state_operation_duration_seconds",
			Help:    "Snapshot store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	// S3 metrics
	s3OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drivesbrowser_s3_operation_duration_seconds",
			Help:    "S3 operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	s3OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivesbrowser_s3_operations_total",
			Help: "Total S3 operations",
		},
		[]string{"operation", "status"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordRestoration records a finished (or failed) restoration run.
func RecordRestoration(strategy string, duration time.Duration, success bool) {
	restorationsTotal.WithLabelValues(strategy, status(success)).Inc()
	restorationDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// IncRestoring marks one more browser as restoring.
func IncRestoring() {
	browsersRestoring.Inc()
}

// DecRestoring marks one browser as no longer restoring.
func DecRestoring() {
	browsersRestoring.Dec()
}

// RecordCommand records a command execution.
func RecordCommand(command string, success bool) {
	commandExecutionsTotal.WithLabelValues(command, status(success)).Inc()
}

// SetDrivesRegistered sets the number of registered drives.
func SetDrivesRegistered(count int) {
	drivesRegistered.Set(float64(count))
}

// RecordDriveLookup records a registry lookup.
func RecordDriveLookup(found bool) {
	result := "found"
	if !found {
		result = "not_found"
	}
	driveLookupsTotal.WithLabelValues(result).Inc()
}

// RecordListing records a directory listing on a drive.
func RecordListing(drive string, duration time.Duration) {
	listingDuration.WithLabelValues(drive).Observe(duration.Seconds())
}

// RecordNavigation records a router navigation.
func RecordNavigation() {
	navigationsTotal.Inc()
}

// AddSignalListeners adjusts the connected listener gauge.
func AddSignalListeners(delta int) {
	signalListeners.Add(float64(delta))
}

// RecordStateOperation records a snapshot store operation.
func RecordStateOperation(backend, operation string, duration time.Duration) {
	stateOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordS3Operation records an S3 operation.
func RecordS3Operation(operation string, duration time.Duration, success bool) {
	s3OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	s3OperationsTotal.WithLabelValues(operation, status(success)).Inc()
}
