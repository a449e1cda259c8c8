package netsync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine metrics, labeled by client id so several engines in one process
// stay distinguishable.
var (
	envelopesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ripple",
		Subsystem: "netsync",
		Name:      "envelopes_sent_total",
		Help:      "Delta envelopes sent to the channel.",
	}, []string{"client_id"})

	envelopesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ripple",
		Subsystem: "netsync",
		Name:      "envelopes_received_total",
		Help:      "Delta envelopes received and applied.",
	}, []string{"client_id"})

	envelopesIgnored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ripple",
		Subsystem: "netsync",
		Name:      "envelopes_ignored_total",
		Help:      "Received envelopes dropped by echo suppression.",
	}, []string{"client_id"})

	envelopesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ripple",
		Subsystem: "netsync",
		Name:      "envelopes_dropped_total",
		Help:      "Received payloads that failed to decode.",
	}, []string{"client_id"})
)
