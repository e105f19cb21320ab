// Package pool implements the fixed-or-scalable worker pool that drains a
// shared FIFO task queue for the processing pipeline. It is a plain
// channel-based pool rather than the mutex/condition-variable queue the
// reference design describes: a buffered channel already gives FIFO
// delivery to the first free worker with none of the bookkeeping a
// hand-rolled queue+condvar pair would need.
package pool

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/haukzero/punp/pkg/contract"
)

// Task is a parameterless unit of work submitted via Submit.
type Task func()

// 🎯 Pool is a set of worker goroutines draining a single task channel.
// Exceptions inside a task are recovered and logged; they never take down
// a worker. A Pool must be created with New and shut down exactly once
// with Shutdown.
type Pool struct {
	logger *zerolog.Logger

	tasks chan Task

	mu      sync.Mutex
	workers int
	active  atomic.Int64

	stopped atomic.Bool
	eg      errgroup.Group
}

// 🏭 New creates a Pool with the given initial worker count and starts its
// goroutines draining the internal task channel. The channel buffers up
// to 4096 pending tasks; once it is full, Submit blocks until a worker
// takes a task off the queue.
func New(logger *zerolog.Logger, size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		logger: logger,
		tasks:  make(chan Task, 4096),
	}
	p.Scale(size)
	return p
}

// 🔍 Scale grows the worker set to n, starting additional goroutines as
// needed. Shrinking is not supported, matching the reference contract.
// Each worker goroutine is tracked by the pool's errgroup.Group so that
// Shutdown can join every one of them with a single Wait.
func (p *Pool) Scale(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.workers < n {
		p.workers++
		p.eg.Go(p.loop)
	}
}

func (p *Pool) loop() error {
	for task := range p.tasks {
		p.active.Add(1)
		p.runTask(task)
		p.active.Add(-1)
	}
	return nil
}

// runTask executes a single task inside a catch-all recover, so a panic
// in caller-supplied work logs and is discarded instead of terminating
// the worker.
func (p *Pool) runTask(task Task) {
	defer func() {
		if r := recover(); r != nil {
			if p.logger != nil {
				p.logger.Error().Interface("panic", r).Msg("worker pool task panicked")
			}
		}
	}()
	task()
}

// 🏃 Submit enqueues a fire-and-forget task. It returns ErrPoolShutdown if
// called after Shutdown.
func (p *Pool) Submit(task Task) error {
	if p.stopped.Load() {
		return errors.Errorf("submit: %w", contract.ErrPoolShutdown)
	}
	p.tasks <- task
	return nil
}

// 📦 SubmitWithCallback enqueues a producer task; once it runs (on a worker
// goroutine) its return value is handed to continuation, which also runs
// on a worker goroutine. This is how the processor chains preprocessing
// into page-task fan-out without blocking the submitting goroutine.
func SubmitWithCallback[T any](p *Pool, produce func() T, continuation func(T)) error {
	return p.Submit(func() {
		continuation(produce())
	})
}

// WorkerCount reports the current size of the worker set.
func (p *Pool) WorkerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.workers
}

// IdleCount approximates the number of workers not currently running a
// task. It is inherently racy (a worker may pick up new work the instant
// after this is read) and is meant only for admission-control heuristics
// like the writeback pipeline's batch sizing.
func (p *Pool) IdleCount() int {
	idle := p.WorkerCount() - int(p.active.Load())
	if idle < 0 {
		return 0
	}
	return idle
}

// HasIdle reports whether at least one worker is currently idle and the
// pool has not been shut down.
func (p *Pool) HasIdle() bool {
	return !p.stopped.Load() && p.IdleCount() > 0
}

// ⚡ Shutdown signals stop, closes the task channel so workers drain
// remaining tasks and exit, then joins every worker goroutine via the
// pool's errgroup.Group. Shutdown is idempotent.
func (p *Pool) Shutdown() {
	if p.stopped.Swap(true) {
		_ = p.eg.Wait()
		return
	}
	close(p.tasks)
	_ = p.eg.Wait()
}
