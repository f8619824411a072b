package cloudevent

import "fmt"

// Exchange names, both durable topic exchanges.
const (
	ExchangeDiscovery  = "discovery.events"
	ExchangeProcessing = "processing.events"
)

// Queue names bound on the discovery exchange.
const (
	QueueEnrichServer     = "enrichment.server.queue"
	QueueEnrichRepository = "enrichment.repository.queue"
	QueueEnrichDatabase   = "enrichment.database.queue"
	QueueTransmitter      = "transmitter.approved"
)

// DiscoveredRoutingKey returns the "discovered.<entity>" routing key and
// matching dotted event type for an entity kind taxonomy.
func DiscoveredRoutingKey(entity string) (routingKey, eventType string) {
	return "discovered." + entity, "discovery." + entity + ".discovered"
}

// ScoredRoutingKey returns the "scored.<entity>" routing key and matching
// event type published by the processor on the processing exchange.
func ScoredRoutingKey(entity string) (routingKey, eventType string) {
	return "scored." + entity, "discovery." + entity + ".scored"
}

// ApprovedRoutingKey returns the routing key the transmitter consumes.
func ApprovedRoutingKey(entity string) string {
	return "approved." + entity
}

// CollectorSource returns the CloudEvent source path for a named collector.
func CollectorSource(name string) string {
	return fmt.Sprintf("/collectors/%s", name)
}

// ProcessorSource is the fixed source path used by the processor pipeline.
const ProcessorSource = "/platform/processor"
