package processor

import "context"

// Relationship types.
const (
	RelConnectsTo = "connects_to"
	RelDeployedOn = "deployed_on"
	RelDependsOn  = "depends_on"
	RelHosts      = "hosts"
	RelUses       = "uses"
	RelPartOf     = "part_of"
)

type relationship struct {
	Type       string  `json:"type"`
	SourceID   string  `json:"source_id"`
	TargetID   string  `json:"target_id"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence"`
}

func dedupeKey(r relationship) string {
	return r.Type + "|" + r.SourceID + "|" + r.TargetID
}

// applyCorrelation runs stage 5: derive this event's entity ID, look up
// co-located entities in store by hostname/IP, emit relationships, and
// record this entity for future lookups.
func applyCorrelation(ctx context.Context, entityKind string, data map[string]interface{}, store CorrelationStore) {
	hostname, _ := data["hostname"].(string)
	ip, _ := data["ip_address"].(string)
	name, _ := data["name"].(string)

	entityID := DeterministicID(entityKind, hostname, ip, name)

	existing, _ := data["correlated_relationships"].([]interface{})
	seen := map[string]bool{}
	rels := make([]relationship, 0, len(existing))
	for _, raw := range existing {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		r := relationship{
			Type:       str(m["type"]),
			SourceID:   str(m["source_id"]),
			TargetID:   str(m["target_id"]),
			Confidence: flt(m["confidence"]),
			Evidence:   str(m["evidence"]),
		}
		key := dedupeKey(r)
		if seen[key] {
			continue
		}
		seen[key] = true
		rels = append(rels, r)
	}

	for _, peer := range store.ByHost(ctx, hostname, ip) {
		if peer.EntityID == entityID {
			continue
		}
		r := relationshipFor(entityKind, entityID, peer)
		if r == nil {
			continue
		}
		key := dedupeKey(*r)
		if seen[key] {
			continue
		}
		seen[key] = true
		rels = append(rels, *r)
	}

	store.Upsert(ctx, Snapshot{EntityID: entityID, Kind: entityKind, Hostname: hostname, IPAddress: ip})

	out := make([]interface{}, len(rels))
	for i, r := range rels {
		out[i] = map[string]interface{}{
			"type": r.Type, "source_id": r.SourceID, "target_id": r.TargetID,
			"confidence": r.Confidence, "evidence": r.Evidence,
		}
	}
	data["correlated_relationships"] = out
	data["entity_id"] = entityID
}

// relationshipFor derives the edge between a newly-seen entity of kind and a
// previously-seen peer sharing its host/IP, or nil if no rule applies.
func relationshipFor(kind, entityID string, peer Snapshot) *relationship {
	switch {
	case kind == "database" && peer.Kind == "server":
		return &relationship{Type: RelHosts, SourceID: peer.EntityID, TargetID: entityID, Confidence: 0.75, Evidence: "shared host/ip"}
	case kind == "service" && peer.Kind == "database":
		return &relationship{Type: RelDependsOn, SourceID: entityID, TargetID: peer.EntityID, Confidence: 0.5, Evidence: "shared host/ip"}
	case kind == "service" && peer.Kind == "server":
		return &relationship{Type: RelDeployedOn, SourceID: entityID, TargetID: peer.EntityID, Confidence: 0.75, Evidence: "shared host/ip"}
	case kind == "repository" && peer.Kind == "codebase":
		return &relationship{Type: RelPartOf, SourceID: entityID, TargetID: peer.EntityID, Confidence: 0.5, Evidence: "shared repository scan"}
	default:
		return nil
	}
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func flt(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
