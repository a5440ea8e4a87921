package httpx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "analysis_duration_seconds",
		Help:    "Wall time of the full analyze pipeline.",
		Buckets: prometheus.DefBuckets,
	})

	patternsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "patterns_detected_total",
		Help: "Detected anomaly patterns by type.",
	}, []string{"pattern_type"})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Instrument counts every request by final status.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		requestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
	})
}

func observeAnalysis(start time.Time) {
	analysisDuration.Observe(time.Since(start).Seconds())
}
