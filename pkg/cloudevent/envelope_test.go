package cloudevent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPopulatesRequiredFields(t *testing.T) {
	env := New("/collectors/nmap", "discovery.server.discovered", "scan-1", map[string]interface{}{"ip": "10.0.0.1"})

	assert.Equal(t, SpecVersion, env.SpecVersion)
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, "/collectors/nmap", env.Source)
	assert.Equal(t, "discovery.server.discovered", env.Type)
	assert.Equal(t, ContentType, env.DataContentType)
	assert.Equal(t, "scan-1", env.Subject)
	assert.Empty(t, env.CorrelationID)

	_, err := time.Parse(time.RFC3339Nano, env.Time)
	assert.NoError(t, err)
}

func TestNewAllowsEmptyScanID(t *testing.T) {
	env := New("/platform/processor", "discovery.server.scored", "", nil)

	assert.Empty(t, env.Subject)
}

func TestNewGeneratesUniqueIDs(t *testing.T) {
	a := New("/collectors/nmap", "discovery.server.discovered", "scan-1", nil)
	b := New("/collectors/nmap", "discovery.server.discovered", "scan-1", nil)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestDerivedFromPreservesCorrelationAndSubject(t *testing.T) {
	original := New("/collectors/nmap", "discovery.server.discovered", "scan-7", map[string]interface{}{"ip": "10.0.0.1"})

	derived := DerivedFrom(original, ProcessorSource, "discovery.server.scored", map[string]interface{}{"overall_score": 0.8})

	require.NotEmpty(t, derived.ID)
	assert.NotEqual(t, original.ID, derived.ID)
	assert.Equal(t, original.ID, derived.CorrelationID)
	assert.Equal(t, original.Subject, derived.Subject)
	assert.Equal(t, ProcessorSource, derived.Source)
	assert.Equal(t, "discovery.server.scored", derived.Type)
}
