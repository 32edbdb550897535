// Package queue buffers transport-delivered messages until the engine
// promotes them to the active surface.
//
// Arrival order is preserved: FIFO by delivery, not by createdAt, since
// position derivation tolerates out-of-order admission. Promotion is
// paced by the Pacer so a burst never floods the surface.
package queue

import (
	"context"
	"sync"

	"github.com/nvake/drift/internal/domain/model"
	"github.com/nvake/drift/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 4096
)

// Message is the payload type flowing through the queue.
type Message = model.Message

// Queue provides non-blocking enqueue and single-step dequeue semantics.
type Queue interface {
	// Enqueue appends a message to the buffer.
	// Returns false if the queue is full and the message was not enqueued.
	Enqueue(ctx context.Context, m Message) bool

	// DequeueOne removes and returns the oldest buffered message.
	// The second return is false when the buffer is empty.
	DequeueOne(ctx context.Context) (Message, bool)

	// Len returns the current number of buffered messages.
	Len(ctx context.Context) int

	// Reset drops every buffered message. Called on channel switch.
	Reset(ctx context.Context)
}

// InMemoryQueue implements Queue with a mutex-guarded slice.
type InMemoryQueue struct {
	mu       sync.Mutex
	items    []Message
	capacity int
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}

	// Apply all options
	for _, opt := range opts {
		opt(q)
	}

	// Initialize metrics
	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueDepth(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue appends a message to the buffer.
func (q *InMemoryQueue) Enqueue(ctx context.Context, m Message) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity {
		metrics.RecordQueueDropped()
		metrics.RecordErrorByComponent("queue", "capacity_exceeded")
		return false
	}

	q.items = append(q.items, m)
	q.publishDepth()
	return true
}

// DequeueOne removes and returns the oldest buffered message.
func (q *InMemoryQueue) DequeueOne(ctx context.Context) (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Message{}, false
	}

	m := q.items[0]
	// Shift rather than reslice so the backing array doesn't pin
	// every message ever buffered.
	copy(q.items, q.items[1:])
	q.items = q.items[:len(q.items)-1]

	q.publishDepth()
	return m, true
}

// Len returns the current number of buffered messages.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Reset drops every buffered message.
func (q *InMemoryQueue) Reset(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = q.items[:0]
	q.publishDepth()
}

// publishDepth refreshes the depth gauges. Must hold q.mu.
func (q *InMemoryQueue) publishDepth() {
	depth := len(q.items)
	metrics.UpdateQueueDepth(depth)
	metrics.UpdateQueueUtilization(float64(depth) / float64(q.capacity))
}
