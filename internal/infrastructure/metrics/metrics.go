package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pairing counters. A fresh registry per instance
// keeps tests independent of global state.
type Metrics struct {
	registry *prometheus.Registry

	RoomsCreated   prometheus.Counter
	RoomsPaired    prometheus.Counter
	RoomsLeft      prometheus.Counter
	RoomsSwept     prometheus.Counter
	CodeExhaustion prometheus.Counter

	HTTPDuration *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RoomsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "pairing_rooms_created_total",
			Help: "Rooms created and placed in WAITING.",
		}),
		RoomsPaired: factory.NewCounter(prometheus.CounterOpts{
			Name: "pairing_rooms_paired_total",
			Help: "Rooms successfully transitioned WAITING to PAIRED.",
		}),
		RoomsLeft: factory.NewCounter(prometheus.CounterOpts{
			Name: "pairing_rooms_left_total",
			Help: "Rooms destroyed by an explicit leave.",
		}),
		RoomsSwept: factory.NewCounter(prometheus.CounterOpts{
			Name: "pairing_rooms_swept_total",
			Help: "Abandoned WAITING rooms reclaimed by the sweeper.",
		}),
		CodeExhaustion: factory.NewCounter(prometheus.CounterOpts{
			Name: "pairing_code_exhaustion_total",
			Help: "Creates that ran out of code generation attempts.",
		}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pairing_http_request_duration_seconds",
			Help:    "HTTP request duration by method and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

// Handler serves this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
