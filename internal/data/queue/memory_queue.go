package queue

import (
	"context"
	"io"
	"sync"
	"time"

	"reqcheck/internal/core/ports"
)

var _ ports.ChangeQueue = (*MemoryQueue)(nil)

// MemoryQueue is a bounded, non-blocking queue of change batches.
type MemoryQueue struct {
	ch     chan ports.ChangeBatch
	mu     sync.RWMutex
	closed bool
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryQueue{ch: make(chan ports.ChangeBatch, capacity)}
}

func (q *MemoryQueue) Enqueue(batch ports.ChangeBatch) ports.EnqueueResult {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ports.EnqueueDropped
	}
	select {
	case q.ch <- batch:
		return ports.EnqueueAccepted
	default:
		return ports.EnqueueDropped
	}
}

// DequeueBatch waits up to wait for the first batch, then takes whatever
// else is immediately available up to maxItems. It returns io.EOF once the
// queue is closed and drained.
func (q *MemoryQueue) DequeueBatch(ctx context.Context, maxItems int, wait time.Duration) ([]ports.ChangeBatch, error) {
	if maxItems <= 0 {
		maxItems = 1
	}
	batches := make([]ports.ChangeBatch, 0, maxItems)

	var timer <-chan time.Time
	if wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		timer = t.C
	}

	select {
	case b, ok := <-q.ch:
		if !ok {
			return nil, io.EOF
		}
		batches = append(batches, b)
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		if wait <= 0 {
			return nil, nil
		}
		select {
		case b, ok := <-q.ch:
			if !ok {
				return nil, io.EOF
			}
			batches = append(batches, b)
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer:
			return nil, nil
		}
	}

	for len(batches) < maxItems {
		select {
		case b, ok := <-q.ch:
			if !ok {
				return batches, io.EOF
			}
			batches = append(batches, b)
		default:
			return batches, nil
		}
	}

	return batches, nil
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.ch)
	return nil
}

func (q *MemoryQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.ch)
}
