package queue

import (
	"context"
	"sync"
)

// MemoryQueue is an in-process Queue for development and tests. Jobs are
// kept in arrival order, giving per-producer FIFO.
type MemoryQueue struct {
	mu   sync.Mutex
	jobs [][]byte
}

// NewMemoryQueue creates an empty in-memory queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

// Enqueue serializes the job and appends it to the in-memory list.
func (q *MemoryQueue) Enqueue(ctx context.Context, job Job) error {
	body, err := Encode(job)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, body)
	return nil
}

// Drain removes and returns all queued job bodies in FIFO order.
func (q *MemoryQueue) Drain() [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	jobs := q.jobs
	q.jobs = nil
	return jobs
}

// Len returns the number of queued jobs.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}
