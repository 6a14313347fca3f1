package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code", "service"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "service"},
	)

	// Anchor submission metrics
	anchorSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anchor_submissions_total",
			Help: "Total number of anchor submissions to the consensus log",
		},
		[]string{"event_type", "status", "service"},
	)

	anchorSubmissionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "anchor_submission_duration_seconds",
			Help:    "Duration of anchor submissions in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
		[]string{"event_type", "service"},
	)

	// Mirror node read metrics
	mirrorQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mirror_queries_total",
			Help: "Total number of mirror node queries",
		},
		[]string{"status", "service"},
	)

	// Content store metrics
	contentFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetches_total",
			Help: "Total number of content-addressed storage fetches",
		},
		[]string{"status", "service"},
	)

	// Verification metrics
	verificationVerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_verdicts_total",
			Help: "Total number of authenticity verification verdicts",
		},
		[]string{"success", "service"},
	)

	// System metrics
	systemErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "system_errors_total",
			Help: "Total number of system errors",
		},
		[]string{"error_type", "service", "component"},
	)
)

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	serviceName string
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(serviceName string) *MetricsCollector {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		anchorSubmissionsTotal,
		anchorSubmissionDuration,
		mirrorQueriesTotal,
		contentFetchesTotal,
		verificationVerdictsTotal,
		systemErrors,
	)

	return &MetricsCollector{
		serviceName: serviceName,
	}
}

// RecordHTTPRequest records HTTP request metrics
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, endpoint, statusCode, m.serviceName).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, m.serviceName).Observe(duration.Seconds())
}

// RecordAnchorSubmission records anchor submission metrics
func (m *MetricsCollector) RecordAnchorSubmission(eventType, status string, duration time.Duration) {
	anchorSubmissionsTotal.WithLabelValues(eventType, status, m.serviceName).Inc()
	anchorSubmissionDuration.WithLabelValues(eventType, m.serviceName).Observe(duration.Seconds())
}

// RecordMirrorQuery records mirror node query metrics
func (m *MetricsCollector) RecordMirrorQuery(status string) {
	mirrorQueriesTotal.WithLabelValues(status, m.serviceName).Inc()
}

// RecordContentFetch records content fetch metrics
func (m *MetricsCollector) RecordContentFetch(status string) {
	contentFetchesTotal.WithLabelValues(status, m.serviceName).Inc()
}

// RecordVerificationVerdict records a verification verdict
func (m *MetricsCollector) RecordVerificationVerdict(success bool) {
	verificationVerdictsTotal.WithLabelValues(strconv.FormatBool(success), m.serviceName).Inc()
}

// RecordSystemError records system error metrics
func (m *MetricsCollector) RecordSystemError(errorType, component string) {
	systemErrors.WithLabelValues(errorType, m.serviceName, component).Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.Handler()
}

// HTTPMiddleware creates middleware for HTTP request metrics
func (m *MetricsCollector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		m.RecordHTTPRequest(r.Method, r.URL.Path, strconv.Itoa(wrapper.statusCode), time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
