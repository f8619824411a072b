package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3e-network/discovery-pipeline/pkg/cloudevent"
)

func TestPipelineProcessIsIdempotent(t *testing.T) {
	pipeline := NewPipeline(NewMemoryStore(), nil)

	env := cloudevent.New("/collectors/db-inspector", "discovery.database.discovered", "scan-1", map[string]interface{}{
		"hostname":          "prod-db-01",
		"port":               5432,
		"banner":             "PostgreSQL 14.2",
		"connection_string":  "postgres://prod-db-01/app",
	})

	err := pipeline.Process(context.Background(), env)
	require.NoError(t, err)
	firstPass := cloneMap(env.Data)

	env.Data = cloneMap(firstPass)
	err = pipeline.Process(context.Background(), env)
	require.NoError(t, err)

	assert.Equal(t, firstPass["metadata"], env.Data["metadata"])
	assert.Equal(t, firstPass["enrichment"], env.Data["enrichment"])
	assert.Equal(t, firstPass["scoring"], env.Data["scoring"])
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func TestPipelineScoresWithinBounds(t *testing.T) {
	pipeline := NewPipeline(NewMemoryStore(), nil)

	env := cloudevent.New("/collectors/network-scanner", "discovery.server.discovered", "scan-2", map[string]interface{}{
		"hostname": "dev-web-01",
	})

	err := pipeline.Process(context.Background(), env)
	require.NoError(t, err)

	scoring := env.Data["scoring"].(map[string]interface{})
	for _, key := range []string{"complexity_score", "risk_score", "effort_score", "overall_score"} {
		score := scoring[key].(int)
		assert.GreaterOrEqual(t, score, 1)
		assert.LessOrEqual(t, score, 10)
	}
}
