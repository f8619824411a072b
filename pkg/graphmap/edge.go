package graphmap

import "strings"

// Edge is a directed relationship between two entity IDs.
type Edge struct {
	Type       string  `json:"type"`
	SourceID   string  `json:"source_id"`
	TargetID   string  `json:"target_id"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence"`
}

// BuildEdges maps data["correlated_relationships"] (as attached by the
// processor's correlation stage) into graph edges, upper-snake-casing the
// relationship type name.
func BuildEdges(data map[string]interface{}) []Edge {
	raw, _ := data["correlated_relationships"].([]interface{})
	edges := make([]Edge, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		typ, _ := m["type"].(string)
		source, _ := m["source_id"].(string)
		target, _ := m["target_id"].(string)
		confidence, _ := m["confidence"].(float64)
		evidence, _ := m["evidence"].(string)

		edges = append(edges, Edge{
			Type:       upperSnakeCase(typ),
			SourceID:   source,
			TargetID:   target,
			Confidence: confidence,
			Evidence:   evidence,
		})
	}
	return edges
}

func upperSnakeCase(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
}
