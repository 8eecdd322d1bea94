package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	resolutionsTotal    *prometheus.CounterVec
	resolutionDuration  *prometheus.HistogramVec
	ingestTotal         *prometheus.CounterVec
	generationSweeps    *prometheus.HistogramVec
	generationExhausted *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "helpdesk",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "helpdesk",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	resolutionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk",
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Total answered queries by resolution stage.",
		},
		[]string{"service", "stage"},
	)
	resolutionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "helpdesk",
			Subsystem: "resolver",
			Name:      "duration_seconds",
			Help:      "Query resolution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	ingestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk",
			Subsystem: "ingest",
			Name:      "documents_total",
			Help:      "Total ingested documents by outcome.",
		},
		[]string{"service", "source", "outcome"},
	)
	generationSweeps := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "helpdesk",
			Subsystem: "generation",
			Name:      "endpoint_attempts",
			Help:      "Distribution of endpoint candidates tried per generation call.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13},
		},
		[]string{"service"},
	)
	generationExhausted := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk",
			Subsystem: "generation",
			Name:      "exhausted_total",
			Help:      "Total generation calls that exhausted all endpoint candidates.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		resolutionsTotal,
		resolutionDuration,
		ingestTotal,
		generationSweeps,
		generationExhausted,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		resolutionsTotal:    resolutionsTotal,
		resolutionDuration:  resolutionDuration,
		ingestTotal:         ingestTotal,
		generationSweeps:    generationSweeps,
		generationExhausted: generationExhausted,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses id-bearing paths so metric cardinality stays flat.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/admin/documents/"):
		return "/admin/documents/{document_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordResolution(service, stage string, duration time.Duration) {
	if stage == "" {
		stage = "unknown"
	}
	m.resolutionsTotal.WithLabelValues(service, stage).Inc()
	m.resolutionDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordIngest(service, source string, processed bool) {
	outcome := "processed"
	if !processed {
		outcome = "failed"
	}
	m.ingestTotal.WithLabelValues(service, source, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordGenerationSweep(service string, attempts int, exhausted bool) {
	if attempts > 0 {
		m.generationSweeps.WithLabelValues(service).Observe(float64(attempts))
	}
	if exhausted {
		m.generationExhausted.WithLabelValues(service).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
