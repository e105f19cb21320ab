// Package writeback runs the single dispatcher that serializes a file's
// processed pages to disk once its last page finishes, coexisting with
// the worker pool that produced those pages.
package writeback

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/haukzero/punp/pkg/contract"
	"github.com/haukzero/punp/pkg/pool"
)

// job pairs a notification with the channel its caller is waiting on.
// done is buffered (capacity 1) so dispatch never blocks on a caller that
// stopped listening.
type job struct {
	notification contract.WritebackNotification
	done         chan error
}

// Pipeline is the dedicated writeback dispatcher. It is safe to enqueue
// into from any goroutine; Shutdown drains pending jobs before returning.
type Pipeline struct {
	logger *zerolog.Logger
	pool   *pool.Pool

	queue   chan job
	stopped atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New starts the dispatcher goroutine, draining notifications against the
// given pool for batched writeback when workers are idle.
func New(logger *zerolog.Logger, p *pool.Pool) *Pipeline {
	pl := &Pipeline{
		logger: logger,
		pool:   p,
		queue:  make(chan job, 4096),
		stopCh: make(chan struct{}),
	}
	pl.wg.Add(1)
	go pl.loop()
	return pl
}

// Enqueue submits a file for writeback and returns a channel that
// receives the outcome exactly once: nil on success (including the
// total_replacements == 0 no-op case), or the write error.
func (pl *Pipeline) Enqueue(file *contract.FileContent, totalReplacements int) <-chan error {
	done := make(chan error, 1)
	j := job{
		notification: contract.WritebackNotification{File: file, TotalReplacements: totalReplacements},
		done:         done,
	}
	if pl.stopped.Load() {
		done <- errors.Errorf("enqueue writeback: %w", contract.ErrPoolShutdown)
		return done
	}
	pl.queue <- j
	return done
}

// loop is the dispatcher thread: it prefers routing writeback work onto
// idle pool workers, batching as many queued jobs as there are idle
// workers, and otherwise writes inline so a slow disk never stalls the
// whole pipeline waiting on a worker that will not free up soon.
func (pl *Pipeline) loop() {
	defer pl.wg.Done()
	for {
		select {
		case j := <-pl.queue:
			pl.dispatch(j)
		case <-pl.stopCh:
			pl.drain()
			return
		}
	}
}

func (pl *Pipeline) drain() {
	for {
		select {
		case j := <-pl.queue:
			pl.dispatch(j)
		default:
			return
		}
	}
}

func (pl *Pipeline) dispatch(first job) {
	batch := []job{first}
	if idle := pl.pool.IdleCount(); idle > 1 {
		for len(batch) < idle {
			select {
			case j := <-pl.queue:
				batch = append(batch, j)
			default:
				goto submit
			}
		}
	}

submit:
	if pl.pool.HasIdle() {
		for _, j := range batch {
			j := j
			if err := pl.pool.Submit(func() { pl.write(j) }); err != nil {
				pl.write(j)
			}
		}
		return
	}
	for _, j := range batch {
		pl.write(j)
	}
}

// write performs the actual writeback task: a no-op for files with no
// replacements, otherwise a full overwrite with the concatenated
// processed pages.
func (pl *Pipeline) write(j job) {
	n := j.notification
	if n.TotalReplacements == 0 {
		j.done <- nil
		return
	}

	content := n.File.String()
	err := os.WriteFile(n.File.Path, []byte(content), 0o644)
	if err != nil {
		err = errors.Errorf("writeback %s: %w", n.File.Path, err)
		if pl.logger != nil {
			pl.logger.Error().Err(err).Str("file", n.File.Path).Msg("writeback failed")
		}
	}
	j.done <- err
}

// Shutdown signals the dispatcher to drain and exit, then waits for it.
// Shutdown does not stop the underlying pool; callers shut that down
// separately once writeback has drained.
func (pl *Pipeline) Shutdown() {
	if pl.stopped.Swap(true) {
		pl.wg.Wait()
		return
	}
	close(pl.stopCh)
	pl.wg.Wait()
}
