package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ActiveWebSockets tracks open notification sockets.
var ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "talenta_active_websockets",
	Help: "Number of open websocket connections",
})

var (
	promOnce sync.Once
	promHTTP *fiberprometheus.FiberPrometheus
)

// InitMetrics builds the HTTP request metrics collector. The collectors live
// in the default registry, so later calls return the first instance.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promHTTP = fiberprometheus.New(serviceName)
	})
	return promHTTP
}

// MetricsMiddleware records request metrics, skipping the scrape endpoint and
// websocket upgrades whose latency would skew the histograms.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	handler := p.Middleware
	return func(c *fiber.Ctx) error {
		switch c.Path() {
		case "/metrics", "/api/ws":
			return c.Next()
		}
		return handler(c)
	}
}
