package queue

import (
	"context"
	"errors"
)

// memoryBacklog is how many undelivered jobs the in-process queue holds
// before Push starts rejecting.
const memoryBacklog = 1024

// MemoryDriver keeps jobs in a channel inside the API process. It is the
// default driver until boot swaps in Redis; jobs do not survive a restart.
type MemoryDriver struct {
	jobs chan []byte
}

func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{jobs: make(chan []byte, memoryBacklog)}
}

// Push enqueues payload, rejecting when the backlog is full rather than
// blocking a request handler.
func (d *MemoryDriver) Push(payload []byte) error {
	select {
	case d.jobs <- payload:
		return nil
	default:
		return errors.New("queue: memory backlog full")
	}
}

// Pop blocks until a job arrives or ctx is cancelled.
func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case payload := <-d.jobs:
		return payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
