package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerMetrics holds the HTTP collectors of one service
type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

// NewServerMetrics creates and registers the HTTP collectors
func NewServerMetrics(reg prometheus.Registerer, service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "market",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// Middleware records one observation per request, labelled by route template
func (m *ServerMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		m.Requests.WithLabelValues(handler, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	}
}

// TransitionCounter counts order lifecycle events by event key
type TransitionCounter struct {
	vec *prometheus.CounterVec
}

// NewTransitionCounter creates and registers the order transition counter
func NewTransitionCounter(reg prometheus.Registerer) *TransitionCounter {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market",
		Subsystem: "orders",
		Name:      "transitions_total",
		Help:      "Order lifecycle events committed, by event key.",
	}, []string{"event"})
	reg.MustRegister(vec)
	return &TransitionCounter{vec: vec}
}

// Inc counts one committed event. A nil counter is a no-op.
func (t *TransitionCounter) Inc(eventKey string) {
	if t == nil {
		return
	}
	t.vec.WithLabelValues(eventKey).Inc()
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
