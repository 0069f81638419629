package diagnostics

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	logins   *prometheus.CounterVec
	orders   prometheus.Counter
}

// NewMetrics registers the shop collectors plus the Go runtime ones
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_http_requests_total",
			Help: "HTTP requests by method, matched route and status code.",
		}, []string{"method", "route", "status"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		orders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_orders_total",
			Help: "Orders accepted.",
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.logins,
		m.orders,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// LoginAttempt counts a login by outcome
func (m *Metrics) LoginAttempt(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.logins.WithLabelValues(result).Inc()
}

// OrderPlaced counts an accepted order
func (m *Metrics) OrderPlaced() {
	m.orders.Inc()
}

// Middleware counts requests. Unmatched paths share the "fallback" route label.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "fallback"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
