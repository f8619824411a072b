package graphmap

import "sort"

// Claim types.
const (
	ClaimIdentity       = "identity"
	ClaimProperty       = "property"
	ClaimRelationship   = "relationship"
	ClaimClassification = "classification"
	ClaimMetric         = "metric"
	ClaimStatus         = "status"
)

// Confidence tiers, the fixed scale used across claims.
const (
	ConfidenceVerified   = 1.0
	ConfidenceHigh       = 0.9
	ConfidenceMediumHigh = 0.75
	ConfidenceMedium     = 0.5
	ConfidenceLow        = 0.25
	ConfidenceInferred   = 0.1
)

const DefaultMaxClaims = 50

// Claim is a typed, confidence-tagged assertion about an entity.
type Claim struct {
	EntityID   string      `json:"entity_id"`
	Type       string      `json:"type"`
	Attribute  string      `json:"attribute"`
	Value      interface{} `json:"value"`
	Confidence float64     `json:"confidence"`
	Source     string      `json:"source"`
}

// BuildClaims emits up to maxClaims claims for one scored event, sorted by
// descending confidence; if the cap is hit the lowest-confidence claims are
// dropped.
func BuildClaims(entityKind string, data map[string]interface{}, maxClaims int) []Claim {
	if maxClaims <= 0 {
		maxClaims = DefaultMaxClaims
	}
	entityID, _ := data["entity_id"].(string)
	source := "processor"

	var claims []Claim

	claims = append(claims, Claim{entityID, ClaimIdentity, "entity_id", entityID, ConfidenceVerified, source})
	claims = append(claims, Claim{entityID, ClaimClassification, "kind", entityKind, ConfidenceVerified, source})

	if enrichment, ok := data["enrichment"].(map[string]interface{}); ok {
		for _, attr := range []string{"environment", "technology", "db_category", "os_family"} {
			if v, ok := enrichment[attr]; ok && !isEmpty(v) {
				claims = append(claims, Claim{entityID, ClaimProperty, attr, v, ConfidenceMediumHigh, source})
			}
		}
	}

	if metadata, ok := data["metadata"].(map[string]interface{}); ok {
		if candidate, _ := metadata["database_candidate"].(bool); candidate {
			confidence, _ := metadata["candidate_confidence"].(float64)
			claims = append(claims, Claim{entityID, ClaimClassification, "database_candidate", true, confidence, source})
		}
	}

	if scoring, ok := data["scoring"].(map[string]interface{}); ok {
		for _, attr := range []string{"complexity_score", "risk_score", "effort_score", "overall_score"} {
			if v, ok := scoring[attr]; ok {
				claims = append(claims, Claim{entityID, ClaimMetric, attr, v, ConfidenceHigh, source})
			}
		}
	}

	for _, edge := range BuildEdges(data) {
		claims = append(claims, Claim{
			EntityID:   edge.SourceID,
			Type:       ClaimRelationship,
			Attribute:  edge.Type,
			Value:      edge.TargetID,
			Confidence: edge.Confidence,
			Source:     source,
		})
	}

	claims = append(claims, Claim{entityID, ClaimStatus, "last_seen", data["entity_id"], ConfidenceInferred, source})

	sort.SliceStable(claims, func(i, j int) bool {
		return claims[i].Confidence > claims[j].Confidence
	})
	if len(claims) > maxClaims {
		claims = claims[:maxClaims]
	}
	return claims
}
