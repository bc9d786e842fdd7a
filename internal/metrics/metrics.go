// Package metrics defines the Prometheus collectors for the engine pool, the
// resolver and text extraction.
//
// There is no HTTP exposition; WriteFile dumps the default registry in the
// text format so a node_exporter textfile collector can pick it up.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Engine pool metrics
	poolAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kamera_engine_pool_available",
			Help: "Number of OCR engine handles available in the pool",
		},
	)

	poolCheckedOut = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kamera_engine_pool_checked_out",
			Help: "Number of OCR engine handles currently held by callers",
		},
	)

	acquireWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kamera_engine_acquire_wait_seconds",
			Help:    "Time spent waiting for an OCR engine handle",
			Buckets: []float64{.0001, .001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
		},
	)

	acquireFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kamera_engine_acquire_failures_total",
			Help: "Total number of acquisitions abandoned because the context ended or the pool closed",
		},
	)

	poolRestarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kamera_engine_pool_restarts_total",
			Help: "Total number of whole-pool engine restarts",
		},
		[]string{"status"}, // status: success, error
	)

	// Resolver metrics
	resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kamera_resolver_results_total",
			Help: "Total number of resolver lookups by domain, method and outcome",
		},
		[]string{"domain", "method", "status"},
	)

	// Extraction metrics
	extractDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kamera_extract_duration_seconds",
			Help:    "Text extraction duration in seconds, including the wait for an engine",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"mode"},
	)

	extractErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kamera_extract_errors_total",
			Help: "Total number of failed text extractions",
		},
		[]string{"mode"},
	)
)

// SetPool records the pool occupancy.
func SetPool(available, checkedOut int) {
	poolAvailable.Set(float64(available))
	poolCheckedOut.Set(float64(checkedOut))
}

// ObserveAcquire records how long an acquisition waited.
func ObserveAcquire(wait time.Duration) {
	acquireWait.Observe(wait.Seconds())
}

// AcquireFailed counts an abandoned acquisition.
func AcquireFailed() {
	acquireFailures.Inc()
}

// PoolRestarted counts a restart attempt.
func PoolRestarted(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	poolRestarts.WithLabelValues(status).Inc()
}

// Resolved counts one resolver lookup.
func Resolved(domain, method, status string) {
	resolutions.WithLabelValues(domain, method, status).Inc()
}

// ObserveExtract records one extraction.
func ObserveExtract(mode string, d time.Duration, err error) {
	extractDuration.WithLabelValues(mode).Observe(d.Seconds())
	if err != nil {
		extractErrors.WithLabelValues(mode).Inc()
	}
}

// WriteFile writes every metric in the default registry to path in the
// Prometheus text format.
func WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
