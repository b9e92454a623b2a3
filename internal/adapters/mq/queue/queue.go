// Package queue holds ranking jobs waiting for a worker.
//
// The queue is in-memory and bounded; a full queue rejects new jobs instead
// of blocking the submitter.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Job is the payload type flowing through the queue.
type Job = model.Job

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job. It returns ErrFull or ErrClosed instead of blocking.
	Enqueue(ctx context.Context, j Job) error

	// Dequeue returns the channel workers receive jobs from. The channel is
	// closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Close stops accepting jobs. Queued jobs remain readable.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a job to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return fmt.Errorf("enqueue %s: %w", j.ID, err)
	}

	select {
	case q.jobs <- j:
		metrics.RecordQueueEnqueue()
		q.updateGauges()
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns the job channel shared by all consumers.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Job {
	return q.jobs
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return q.updateGauges()
}

// Cap returns the queue capacity.
func (q *InMemoryQueue) Cap() int { return q.capacity }

func (q *InMemoryQueue) updateGauges() int {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
