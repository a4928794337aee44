// Package queue holds the bounded in-memory queue feeding the rescore
// workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/reten/internal/domain/model"
	"github.com/okian/reten/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
)

// Profile is the payload type flowing through the queue.
type Profile = model.Profile

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a profile to the queue.
	// Returns false if the queue is full and the profile was not enqueued.
	Enqueue(ctx context.Context, p Profile) bool

	// Dequeue returns a channel that receives profiles as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Profile

	// Len returns the current number of queued profiles.
	Len(ctx context.Context) int

	// Close stops the queue; no new profiles can be enqueued afterwards.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	profiles chan Profile
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
	q.profiles = make(chan Profile, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return q
}

// Enqueue adds a profile to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, p Profile) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return false
	}

	select {
	case q.profiles <- p:
		metrics.RecordQueueEnqueue()
		q.publishDepth()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		return false
	default:
		metrics.RecordQueueEnqueueError()
		return false // queue is full
	}
}

// Dequeue returns a channel that receives profiles as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Profile {
	out := make(chan Profile)
	go func() {
		defer close(out)
		for p := range q.profiles {
			select {
			case out <- p:
				metrics.RecordQueueDequeue()
				q.publishDepth()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued profiles.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.profiles)
}

// Close stops the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.profiles)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) publishDepth() {
	size := len(q.profiles)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
