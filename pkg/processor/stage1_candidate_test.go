package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidateIdentificationPortAndBannerPromotion(t *testing.T) {
	data := map[string]interface{}{
		"port":   5432,
		"banner": "PostgreSQL 14.2",
		"metadata": map[string]interface{}{
			"database_candidate":   true,
			"candidate_type":       "postgresql",
			"candidate_confidence": 0.5,
		},
	}

	applyCandidateIdentification(data)

	metadata := data["metadata"].(map[string]interface{})
	assert.Equal(t, 0.85, metadata["candidate_confidence"])
	assert.Equal(t, "port_and_banner", metadata["validation_method"])
}

func TestCandidateIdentificationBannerMismatch(t *testing.T) {
	data := map[string]interface{}{
		"port":   5432,
		"banner": "Apache/2.4",
		"metadata": map[string]interface{}{
			"database_candidate":   true,
			"candidate_type":       "postgresql",
			"candidate_confidence": 0.5,
		},
	}

	applyCandidateIdentification(data)

	metadata := data["metadata"].(map[string]interface{})
	assert.Equal(t, 0.5, metadata["candidate_confidence"])
	assert.Equal(t, true, metadata["banner_mismatch"])
	assert.Equal(t, "port_only", metadata["validation_method"])
}

func TestCandidateIdentificationIsIdempotent(t *testing.T) {
	data := map[string]interface{}{
		"port":   5432,
		"banner": "PostgreSQL 14.2",
		"metadata": map[string]interface{}{},
	}

	applyCandidateIdentification(data)
	first := data["metadata"].(map[string]interface{})["candidate_confidence"]

	applyCandidateIdentification(data)
	second := data["metadata"].(map[string]interface{})["candidate_confidence"]

	assert.Equal(t, first, second)
}

func TestCandidateIdentificationUnknownPortLeavesRecordUnchanged(t *testing.T) {
	data := map[string]interface{}{
		"port":     9999,
		"metadata": map[string]interface{}{},
	}

	applyCandidateIdentification(data)

	metadata := data["metadata"].(map[string]interface{})
	assert.Nil(t, metadata["database_candidate"])
}
