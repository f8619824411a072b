package cloudevent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoveredRoutingKey(t *testing.T) {
	routingKey, eventType := DiscoveredRoutingKey("server")

	assert.Equal(t, "discovered.server", routingKey)
	assert.Equal(t, "discovery.server.discovered", eventType)
}

func TestScoredRoutingKey(t *testing.T) {
	routingKey, eventType := ScoredRoutingKey("database")

	assert.Equal(t, "scored.database", routingKey)
	assert.Equal(t, "discovery.database.scored", eventType)
}

func TestApprovedRoutingKey(t *testing.T) {
	assert.Equal(t, "approved.repository", ApprovedRoutingKey("repository"))
}

func TestCollectorSource(t *testing.T) {
	assert.Equal(t, "/collectors/nmap", CollectorSource("nmap"))
}

func TestProcessorSourceIsFixed(t *testing.T) {
	assert.Equal(t, "/platform/processor", ProcessorSource)
}
