// internal/monitoring/metrics.go
package monitoring

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes Prometheus instrumentation for the capture service.
// It implements the capture pipeline's Metrics interface.
type Metrics struct {
	capturesTotal     *prometheus.CounterVec
	captureDuration   *prometheus.HistogramVec
	captureImageBytes prometheus.Histogram
	capturesInFlight  prometheus.Gauge
	rateLimitRejected prometheus.Counter
	memoryUsage       prometheus.Gauge
	goroutineCount    prometheus.Gauge
}

// NewMetrics registers the service metrics on a fresh registry and
// returns them together with the /metrics handler.
func NewMetrics(namespace string) (*Metrics, http.Handler) {
	if namespace == "" {
		namespace = "pagesnap"
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		capturesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "captures_total",
				Help:      "Total number of capture requests by format and status code",
			},
			[]string{"format", "status"},
		),
		captureDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "capture_duration_seconds",
				Help:      "Capture request duration in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 15, 20, 30},
			},
			[]string{"format"},
		),
		captureImageBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "capture_image_bytes",
				Help:      "Size of produced screenshots in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
			},
		),
		capturesInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "captures_in_flight",
				Help:      "Number of capture requests currently being processed",
			},
		),
		rateLimitRejected: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_rejections_total",
				Help:      "Requests rejected by the admission rate limiter",
			},
		),
		memoryUsage: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "memory_usage_bytes",
				Help:      "Current heap memory usage in bytes",
			},
		),
		goroutineCount: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "goroutines",
				Help:      "Current number of goroutines",
			},
		),
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m, handler
}

// CaptureStarted increments the in-flight gauge.
func (m *Metrics) CaptureStarted() {
	m.capturesInFlight.Inc()
}

// CaptureFinished decrements the in-flight gauge.
func (m *Metrics) CaptureFinished() {
	m.capturesInFlight.Dec()
}

// ObserveCapture records the outcome of one capture request.
func (m *Metrics) ObserveCapture(format string, status int, elapsed time.Duration, imageBytes int) {
	if format == "" {
		format = "unknown"
	}

	m.capturesTotal.WithLabelValues(format, strconv.Itoa(status)).Inc()
	m.captureDuration.WithLabelValues(format).Observe(elapsed.Seconds())
	if imageBytes > 0 {
		m.captureImageBytes.Observe(float64(imageBytes))
	}
}

// RateLimitRejected counts one rejected request.
func (m *Metrics) RateLimitRejected() {
	m.rateLimitRejected.Inc()
}

// UpdateSystemMetrics refreshes the process-level gauges. Called
// periodically and before health snapshots.
func (m *Metrics) UpdateSystemMetrics() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	m.memoryUsage.Set(float64(stats.HeapAlloc))
	m.goroutineCount.Set(float64(runtime.NumGoroutine()))
}
