// Package metrics defines the Prometheus collectors shared across the
// discovery mesh's services, registered on the default registry so every
// binary's existing promhttp.Handler() (see internal/httpserver) exposes
// them without extra wiring.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ScansCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "discovery",
			Subsystem: "collector",
			Name:      "scans_completed_total",
			Help:      "Autonomous scans completed, by collector and terminal status.",
		},
		[]string{"collector", "status"},
	)

	TargetsAnalyzed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "discovery",
			Subsystem: "collector",
			Name:      "targets_analyzed_total",
			Help:      "Targets analyzed, by collector and outcome (ok, failed).",
		},
		[]string{"collector", "outcome"},
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "discovery",
			Subsystem: "cloudevent",
			Name:      "events_published_total",
			Help:      "CloudEvents published, by routing key.",
		},
		[]string{"routing_key"},
	)

	ProcessorMessagesHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "discovery",
			Subsystem: "processor",
			Name:      "messages_handled_total",
			Help:      "Discovered events run through the five-stage pipeline, by entity kind.",
		},
		[]string{"entity"},
	)

	TransmitterBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "discovery",
			Subsystem: "transmitter",
			Name:      "batches_total",
			Help:      "Batches shipped to the egress destination, by terminal status.",
		},
		[]string{"status"},
	)

	TransmitterQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "discovery",
			Subsystem: "transmitter",
			Name:      "queue_depth",
			Help:      "Current number of approved events waiting to be batched.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		ScansCompleted,
		TargetsAnalyzed,
		EventsPublished,
		ProcessorMessagesHandled,
		TransmitterBatches,
		TransmitterQueueDepth,
	)
}
