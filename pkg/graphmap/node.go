// Package graphmap transforms a scored discovered event into the node,
// relationship-edge, and claim payloads downstream graph tooling imports.
package graphmap

import "github.com/r3e-network/discovery-pipeline/pkg/processor"

// Node is one entity in the graph payload.
type Node struct {
	ID         string                 `json:"id"`
	Label      string                 `json:"label"`
	Kind       string                 `json:"kind"`
	Properties map[string]interface{} `json:"properties"`
}

// entityPropertyKeys selects the subset of data relevant to kind's node
// representation.
var entityPropertyKeys = map[string][]string{
	"server":      {"hostname", "os_family", "ip_address", "hardware"},
	"service":     {"hostname", "port", "name", "banner"},
	"database":    {"hostname", "port", "name"},
	"schema":      {"name", "tables"},
	"repository":  {"name", "path", "language"},
	"codebase":    {"name", "language", "frameworks"},
	"dependency":  {"name", "version"},
	"application": {"name", "environment"},
}

// BuildNode constructs the graph node for one scored event, pruning empty
// scalars and empty collections from its properties.
func BuildNode(entityKind string, data map[string]interface{}) Node {
	entityID, _ := data["entity_id"].(string)
	enrichment, _ := data["enrichment"].(map[string]interface{})
	label, _ := enrichment["entity_label"].(string)
	if label == "" {
		label = entityKind
	}

	keys := entityPropertyKeys[entityKind]
	if keys == nil {
		keys = []string{"name", "hostname"}
	}

	properties := map[string]interface{}{}
	for _, k := range keys {
		if v, ok := data[k]; ok && !isEmpty(v) {
			properties[k] = v
		}
	}
	if enrichment != nil {
		for _, k := range []string{"environment", "technology", "db_category", "os_family"} {
			if v, ok := enrichment[k]; ok && !isEmpty(v) {
				properties[k] = v
			}
		}
	}
	if scoring, ok := data["scoring"].(map[string]interface{}); ok {
		properties["overall_score"] = scoring["overall_score"]
	}

	return Node{ID: entityID, Label: label, Kind: entityKind, Properties: properties}
}

func isEmpty(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []interface{}:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	default:
		return false
	}
}

// EntityIDFromEventType is a thin re-export so callers outside processor
// don't need to import it directly for routing decisions.
func EntityKind(eventType string) string {
	return processor.EntityFromEventType(eventType)
}
