// Package queue holds admitted-but-not-yet-dispatched analysis requests
// in priority order with stable FIFO ordering inside each class.
package queue

import (
	"sync"

	"github.com/steveyegge/mentor/internal/types"
)

// Queue is a stable priority-ordered list. Expected depth is small (the
// drain removes one request per second), so an ordered slice beats a heap:
// insertion is a simple scan and FIFO stability comes for free.
type Queue struct {
	mu    sync.Mutex
	items []*types.AnalysisRequest
}

// New creates an empty queue
func New() *Queue {
	return &Queue{}
}

// Enqueue inserts the request before the first strictly less urgent
// element, preserving arrival order among equal priorities.
func (q *Queue) Enqueue(req *types.AnalysisRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pos := len(q.items)
	for i, existing := range q.items {
		if req.Priority.MoreUrgentThan(existing.Priority) {
			pos = i
			break
		}
	}

	q.items = append(q.items, nil)
	copy(q.items[pos+1:], q.items[pos:])
	q.items[pos] = req
}

// Dequeue removes and returns the most urgent request, or nil when empty.
func (q *Queue) Dequeue() *types.AnalysisRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	req := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return req
}

// Len returns the number of queued requests
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
