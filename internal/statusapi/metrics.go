package statusapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pagellm",
			Subsystem: "sidecar",
			Name:      "requests_total",
			Help:      "Sidecar HTTP requests",
		},
		[]string{"path", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pagellm",
			Subsystem: "sidecar",
			Name:      "request_duration_seconds",
			Help:      "Sidecar request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	engineUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pagellm",
			Subsystem: "engine",
			Name:      "up",
			Help:      "1 when the engine answers its health endpoint",
		},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, engineUp)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)
		path := routePatternOrPath(r)
		requestsTotal.WithLabelValues(path, strconv.Itoa(sr.status)).Inc()
		requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	})
}

// routePatternOrPath prefers the chi route pattern to keep label cardinality
// bounded.
func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
