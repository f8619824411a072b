package graphmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildClaimsIncludesIdentityAndClassification(t *testing.T) {
	data := map[string]interface{}{"entity_id": "server-1"}

	claims := BuildClaims("server", data, 0)

	require.NotEmpty(t, claims)
	var sawIdentity, sawClassification bool
	for _, c := range claims {
		if c.Type == ClaimIdentity && c.Attribute == "entity_id" {
			sawIdentity = true
			assert.Equal(t, ConfidenceVerified, c.Confidence)
		}
		if c.Type == ClaimClassification && c.Attribute == "kind" {
			sawClassification = true
			assert.Equal(t, "server", c.Value)
		}
	}
	assert.True(t, sawIdentity)
	assert.True(t, sawClassification)
}

func TestBuildClaimsSortsByDescendingConfidence(t *testing.T) {
	data := map[string]interface{}{
		"entity_id": "server-1",
		"enrichment": map[string]interface{}{
			"environment": "production",
		},
		"scoring": map[string]interface{}{"overall_score": 0.4},
	}

	claims := BuildClaims("server", data, 0)

	for i := 1; i < len(claims); i++ {
		assert.GreaterOrEqual(t, claims[i-1].Confidence, claims[i].Confidence)
	}
}

func TestBuildClaimsRespectsMaxClaimsCap(t *testing.T) {
	data := map[string]interface{}{
		"entity_id": "server-1",
		"enrichment": map[string]interface{}{
			"environment": "production",
			"technology":  "postgres",
			"db_category": "relational",
			"os_family":   "linux",
		},
		"scoring": map[string]interface{}{
			"complexity_score": 1, "risk_score": 2, "effort_score": 3, "overall_score": 4,
		},
	}

	claims := BuildClaims("server", data, 2)

	assert.Len(t, claims, 2)
}

func TestBuildClaimsIncludesRelationshipClaimsFromEdges(t *testing.T) {
	data := map[string]interface{}{
		"entity_id": "service-1",
		"correlated_relationships": []interface{}{
			map[string]interface{}{"type": "hosted-on", "source_id": "service-1", "target_id": "server-1", "confidence": 0.9},
		},
	}

	claims := BuildClaims("service", data, 0)

	var found bool
	for _, c := range claims {
		if c.Type == ClaimRelationship && c.Attribute == "HOSTED_ON" {
			found = true
			assert.Equal(t, "server-1", c.Value)
		}
	}
	assert.True(t, found)
}
