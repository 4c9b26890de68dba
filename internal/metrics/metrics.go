// Package metrics exposes the server's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "parley_connections",
		Help: "Currently registered connections.",
	})

	Rooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "parley_rooms",
		Help: "Currently live rooms.",
	})

	Messages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parley_messages_total",
		Help: "Chat messages accepted for broadcast.",
	})

	Deliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parley_deliveries_total",
		Help: "Frames handed to connection send buffers.",
	})

	DroppedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parley_dropped_frames_total",
		Help: "Frames dropped because a send buffer was full.",
	})
)

// Handler exposes Prometheus metrics at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
