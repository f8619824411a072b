package graphmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildNodeSelectsKindSpecificProperties(t *testing.T) {
	data := map[string]interface{}{
		"entity_id": "server-1",
		"hostname":  "db01.internal",
		"os_family": "linux",
		"enrichment": map[string]interface{}{
			"entity_label": "db01",
			"environment":  "production",
			"os_family":    "linux",
		},
		"scoring": map[string]interface{}{"overall_score": 0.82},
	}

	node := BuildNode("server", data)

	assert.Equal(t, "server-1", node.ID)
	assert.Equal(t, "db01", node.Label)
	assert.Equal(t, "server", node.Kind)
	assert.Equal(t, "db01.internal", node.Properties["hostname"])
	assert.Equal(t, "production", node.Properties["environment"])
	assert.Equal(t, 0.82, node.Properties["overall_score"])
	assert.NotContains(t, node.Properties, "port", "node must not pull properties outside its entity kind's key set")
}

func TestBuildNodeFallsBackToKindAsLabel(t *testing.T) {
	node := BuildNode("schema", map[string]interface{}{"entity_id": "schema-1"})

	assert.Equal(t, "schema", node.Label)
	assert.Empty(t, node.Properties)
}

func TestBuildNodePrunesEmptyValues(t *testing.T) {
	data := map[string]interface{}{
		"entity_id": "repo-1",
		"name":      "",
		"path":      "/srv/repo",
		"language":  []interface{}{},
	}

	node := BuildNode("repository", data)

	assert.NotContains(t, node.Properties, "name")
	assert.NotContains(t, node.Properties, "language")
	assert.Equal(t, "/srv/repo", node.Properties["path"])
}

func TestBuildNodeUnknownKindUsesDefaultKeys(t *testing.T) {
	data := map[string]interface{}{"entity_id": "x-1", "name": "widget", "hostname": "h1"}

	node := BuildNode("widget", data)

	assert.Equal(t, "widget", node.Properties["name"])
	assert.Equal(t, "h1", node.Properties["hostname"])
}
