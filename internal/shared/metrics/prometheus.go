package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	predictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dosage_predictions_total",
			Help: "Total number of dosage predictions by assigned class",
		},
		[]string{"class"},
	)

	predictionConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dosage_prediction_confidence",
			Help:    "Confidence of the predicted dosage class",
			Buckets: []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
		},
	)

	predictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dosage_prediction_duration_seconds",
			Help:    "End-to-end prediction duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	predictionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dosage_prediction_errors_total",
			Help: "Total number of failed predictions by error code",
		},
		[]string{"code"},
	)

	resolutionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "category_resolution_failures_total",
			Help: "Total number of categorical fields that failed vocabulary resolution",
		},
		[]string{"field"},
	)

	fuzzyResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "category_fuzzy_resolutions_total",
			Help: "Total number of categorical fields resolved by fuzzy match",
		},
		[]string{"field"},
	)

	artifactReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artifact_reloads_total",
			Help: "Total number of artifact load attempts",
		},
		[]string{"result"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware creates HTTP metrics middleware
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
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

// normalizePath normalizes URL paths for metrics to avoid cardinality explosion
func normalizePath(path string) string {
	if len(path) > 100 {
		return "/api/..."
	}
	return path
}

// --- Business metric helpers ---

// RecordPrediction records a completed prediction
func RecordPrediction(class int, confidence float64, duration time.Duration) {
	predictionsTotal.WithLabelValues(strconv.Itoa(class)).Inc()
	predictionConfidence.Observe(confidence)
	predictionDuration.Observe(duration.Seconds())
}

// RecordPredictionError records a failed prediction
func RecordPredictionError(code string) {
	predictionErrors.WithLabelValues(code).Inc()
}

// RecordResolutionFailure records a categorical field that failed resolution
func RecordResolutionFailure(field string) {
	resolutionFailures.WithLabelValues(field).Inc()
}

// RecordFuzzyResolution records a categorical field resolved by fuzzy match
func RecordFuzzyResolution(field string) {
	fuzzyResolutions.WithLabelValues(field).Inc()
}

// RecordArtifactReload records an artifact load attempt
func RecordArtifactReload(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	artifactReloads.WithLabelValues(result).Inc()
}
