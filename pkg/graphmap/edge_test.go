package graphmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildEdgesMapsRelationshipsAndUpperSnakeCasesType(t *testing.T) {
	data := map[string]interface{}{
		"correlated_relationships": []interface{}{
			map[string]interface{}{
				"type":       "hosted-on",
				"source_id":  "service-1",
				"target_id":  "server-1",
				"confidence": 0.9,
				"evidence":   "shared hostname",
			},
		},
	}

	edges := BuildEdges(data)

	assert.Len(t, edges, 1)
	assert.Equal(t, "HOSTED_ON", edges[0].Type)
	assert.Equal(t, "service-1", edges[0].SourceID)
	assert.Equal(t, "server-1", edges[0].TargetID)
	assert.Equal(t, 0.9, edges[0].Confidence)
}

func TestBuildEdgesSkipsMalformedEntries(t *testing.T) {
	data := map[string]interface{}{
		"correlated_relationships": []interface{}{"not-a-map", 42, nil},
	}

	edges := BuildEdges(data)

	assert.Empty(t, edges)
}

func TestBuildEdgesHandlesMissingKey(t *testing.T) {
	edges := BuildEdges(map[string]interface{}{})

	assert.Empty(t, edges)
}
