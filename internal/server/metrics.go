package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the server-level Prometheus metrics. Calculation metrics
// are recorded by the arith package.
type Metrics struct {
	handler http.Handler
}

var (
	activeRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cfcalc_active_requests",
		Help: "Current number of active requests",
	})
	totalRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cfcalc_requests_total",
		Help: "Total number of requests received",
	})
	responsesByCode = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfcalc_http_responses_total",
		Help: "HTTP responses by endpoint and status code",
	}, []string{"path", "code"})
)

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{handler: promhttp.Handler()}
}

// IncrementActiveRequests increments the active and total request counts.
func (m *Metrics) IncrementActiveRequests() {
	activeRequests.Inc()
	totalRequests.Inc()
}

// DecrementActiveRequests decrements the active requests gauge.
func (m *Metrics) DecrementActiveRequests() {
	activeRequests.Dec()
}

// ObserveResponse counts a response for path with the given status.
func (m *Metrics) ObserveResponse(path string, status int) {
	responsesByCode.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

// WritePrometheus writes metrics in Prometheus text format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.metrics.WritePrometheus(w, r)
}

// metricsMiddleware tracks active requests and response codes.
func (s *Server) metricsMiddleware(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.metrics.ObserveResponse(path, rec.status)
	}
}
