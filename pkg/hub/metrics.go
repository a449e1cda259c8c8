package hub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the hub's Prometheus instruments.
type metrics struct {
	connectedClients prometheus.Gauge
	clientsTotal     prometheus.Counter
	messagesRelayed  prometheus.Counter
	relayedBytes     prometheus.Counter
	relayErrors      *prometheus.CounterVec
}

// newMetrics registers the hub metrics with the given registry.
func newMetrics(registry prometheus.Registerer) *metrics {
	factory := promauto.With(registry)

	return &metrics{
		connectedClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "ripple",
			Subsystem: "hub",
			Name:      "connected_clients",
			Help:      "Clients currently attached to the hub.",
		}),

		clientsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ripple",
			Subsystem: "hub",
			Name:      "clients_total",
			Help:      "Total client connections accepted.",
		}),

		messagesRelayed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ripple",
			Subsystem: "hub",
			Name:      "messages_relayed_total",
			Help:      "Messages fanned out to peers.",
		}),

		relayedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ripple",
			Subsystem: "hub",
			Name:      "relayed_bytes_total",
			Help:      "Payload bytes fanned out to peers.",
		}),

		relayErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ripple",
			Subsystem: "hub",
			Name:      "relay_errors_total",
			Help:      "Errors while reading from or writing to clients.",
		}, []string{"kind"}),
	}
}
