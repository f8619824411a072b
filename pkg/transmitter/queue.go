// Package transmitter implements the batching egress service: FIFO queue,
// batch ledger, gzip HTTPS POST with retry and circuit breaker.
package transmitter

import (
	"sync"

	"github.com/r3e-network/discovery-pipeline/pkg/cloudevent"
)

// Queue is the transmitter's in-memory FIFO. It is protected by its own
// mutex rather than relying on single-threaded execution, since this
// implementation runs the flush loop on its own goroutine.
type Queue struct {
	mu    sync.Mutex
	items []cloudevent.Envelope
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Enqueue(env cloudevent.Envelope) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, env)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// DequeueUpTo removes and returns up to n items in FIFO order.
func (q *Queue) DequeueUpTo(n int) []cloudevent.Envelope {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > len(q.items) {
		n = len(q.items)
	}
	batch := q.items[:n]
	q.items = q.items[n:]
	return batch
}

// RequeueFront restores items to the head of the queue in their original
// order, used when a batch must be retried or was rejected for size.
func (q *Queue) RequeueFront(items []cloudevent.Envelope) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(append([]cloudevent.Envelope{}, items...), q.items...)
}
