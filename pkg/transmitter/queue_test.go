package transmitter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/r3e-network/discovery-pipeline/pkg/cloudevent"
)

func envWithID(id string) cloudevent.Envelope {
	return cloudevent.Envelope{ID: id}
}

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue()
	q.Enqueue(envWithID("a"))
	q.Enqueue(envWithID("b"))
	q.Enqueue(envWithID("c"))

	batch := q.DequeueUpTo(2)

	assert.Len(t, batch, 2)
	assert.Equal(t, "a", batch[0].ID)
	assert.Equal(t, "b", batch[1].ID)
	assert.Equal(t, 1, q.Len())
}

func TestQueueRequeueFrontPreservesOrder(t *testing.T) {
	q := NewQueue()
	q.Enqueue(envWithID("c"))

	q.RequeueFront([]cloudevent.Envelope{envWithID("a"), envWithID("b")})

	batch := q.DequeueUpTo(3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{batch[0].ID, batch[1].ID, batch[2].ID})
}

func TestEncodeRawShapesMetadata(t *testing.T) {
	items := []cloudevent.Envelope{envWithID("a"), envWithID("b")}

	body, err := EncodeBatch(items, EncodingRaw, 50)

	assert.NoError(t, err)
	assert.Equal(t, "raw", body["format"])
	metadata := body["metadata"].(map[string]interface{})
	assert.Equal(t, 2, metadata["item_count"])
}

func TestGzipRoundTripsUnderHardLimit(t *testing.T) {
	body, _ := EncodeBatch([]cloudevent.Envelope{envWithID("a")}, EncodingRaw, 50)
	gzipped, err := Gzip(body)

	assert.NoError(t, err)
	assert.NotEmpty(t, gzipped)
	assert.Less(t, len(gzipped), 10*1024*1024)
}
