package httpapi

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics counts requests per method, path and status code on a
// server-local registry so independent servers never collide.
type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

func newMetrics(registry *prometheus.Registry) *metrics {
	m := &metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "baiyuspace",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled, by method, path and status code.",
		}, []string{"method", "path", "code"}),
	}
	registry.MustRegister(m.requests)
	return m
}

func (m *metrics) observe(method, path string, status int) {
	if status == 0 {
		status = 200
	}
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}
