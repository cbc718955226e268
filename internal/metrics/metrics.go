package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes Prometheus metrics for the admin HTTP surface and the
// collection pipeline.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	scanRuns       *prometheus.CounterVec
	itemsCollected prometheus.Counter
	fetchFailures  *prometheus.CounterVec
	newPatterns    prometheus.Counter
	alertsRaised   prometheus.Counter
	scanDuration   prometheus.Histogram
}

// NewCollector constructs a collector with default histograms/counters.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "threatintel",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for inbound HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "threatintel",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests.",
		}, []string{"method", "path", "status"}),
		scanRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "threatintel",
			Subsystem: "scan",
			Name:      "runs_total",
			Help:      "Scan runs by terminal status.",
		}, []string{"status"}),
		itemsCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "threatintel",
			Subsystem: "scan",
			Name:      "items_collected_total",
			Help:      "Threat items persisted across all scan runs.",
		}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "threatintel",
			Subsystem: "scan",
			Name:      "fetch_failures_total",
			Help:      "Per-source fetch failures by kind.",
		}, []string{"kind"}),
		newPatterns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "threatintel",
			Subsystem: "scan",
			Name:      "new_patterns_total",
			Help:      "Newly detected threat patterns.",
		}),
		alertsRaised: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "threatintel",
			Subsystem: "scan",
			Name:      "alerts_total",
			Help:      "Alerts generated for high-severity items.",
		}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "threatintel",
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of full scan cycles.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
	}

	collectors := []prometheus.Collector{
		c.requestDuration, c.requestTotal,
		c.scanRuns, c.itemsCollected, c.fetchFailures,
		c.newPatterns, c.alertsRaised, c.scanDuration,
	}
	for _, col := range collectors {
		if err := registry.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.URL.Path

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

// ObserveScanRun records the outcome of one completed pipeline invocation.
func (c *Collector) ObserveScanRun(status string, items, patterns, alerts int, duration time.Duration) {
	c.scanRuns.WithLabelValues(status).Inc()
	c.itemsCollected.Add(float64(items))
	c.newPatterns.Add(float64(patterns))
	c.alertsRaised.Add(float64(alerts))
	c.scanDuration.Observe(duration.Seconds())
}

// ObserveFetchFailure records a per-source fetch failure.
func (c *Collector) ObserveFetchFailure(kind string) {
	c.fetchFailures.WithLabelValues(kind).Inc()
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
