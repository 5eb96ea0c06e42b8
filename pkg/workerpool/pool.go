// Package workerpool bounds the goroutines used for background fan-out,
// such as warming the catalogue cache one category at a time. When every
// worker is busy and the backlog is full, Submit reports backpressure
// instead of blocking the caller.
package workerpool

import (
	"errors"
	"sync"

	"github.com/changyuyeo/fitbody/pkg/logger"
)

// ErrPoolFull is returned by Submit when the backlog is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit and SubmitWait after Shutdown.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool runs submitted jobs on a fixed set of worker goroutines.
type Pool struct {
	jobs     chan func()
	quit     chan struct{}
	workers  sync.WaitGroup
	stopOnce sync.Once
}

// New starts a pool with the given worker count. The backlog holds twice
// that many jobs so short bursts are absorbed without rejections.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}

	p := &Pool{
		jobs: make(chan func(), workers*2),
		quit: make(chan struct{}),
	}
	p.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go p.drain()
	}
	return p
}

// Submit enqueues job without blocking. It returns ErrPoolFull when the
// backlog is at capacity and ErrPoolClosed after Shutdown.
func (p *Pool) Submit(job func()) error {
	select {
	case <-p.quit:
		return ErrPoolClosed
	default:
	}

	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until the job is accepted or the pool shuts down.
func (p *Pool) SubmitWait(job func()) error {
	select {
	case <-p.quit:
		return ErrPoolClosed
	case p.jobs <- job:
		return nil
	}
}

// Shutdown rejects further submissions, finishes the backlog and returns
// once every worker has exited. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.stopOnce.Do(func() {
		close(p.quit)
		close(p.jobs)
		p.workers.Wait()
	})
}

func (p *Pool) drain() {
	defer p.workers.Done()
	for job := range p.jobs {
		run(job)
	}
}

// run keeps a panicking job from taking its worker down with it.
func run(job func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: job panicked", "panic", r)
		}
	}()
	job()
}
