package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed set of goroutines that render independent tiles.
//
// Work items must not call ExecuteAll on the same pool: a worker blocked
// waiting for its own queue would deadlock a single-worker pool.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	// queue is shared by every worker.
	queue chan func()

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool

	// mu orders enqueues against Close: ExecuteAll holds it for reading
	// while sending, Close for writing while stopping the workers.
	mu sync.RWMutex
}

// NewWorkerPool creates a pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &WorkerPool{
		workers: workers,
		queue:   make(chan func(), max(workers*4, 8)),
		done:    make(chan struct{}),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			// Drain so that no ExecuteAll caller waits forever.
			for {
				select {
				case work := <-p.queue:
					work()
				default:
					return
				}
			}
		case work := <-p.queue:
			work()
		}
	}
}

// ExecuteAll runs every item and returns when all have completed.
//
// Items that cannot be queued immediately run on the calling goroutine, and
// a closed pool runs everything inline, so ExecuteAll always completes the
// work it was given, even when Close runs concurrently.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}
	if len(work) == 1 {
		work[0]()
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(work))
	inline := make([]func(), 0, len(work))

	p.mu.RLock()
	closed := !p.running.Load()
	for _, fn := range work {
		wrapped := func() {
			defer wg.Done()
			fn()
		}
		if closed {
			inline = append(inline, wrapped)
			continue
		}
		select {
		case p.queue <- wrapped:
		default:
			inline = append(inline, wrapped)
		}
	}
	p.mu.RUnlock()

	for _, fn := range inline {
		fn()
	}
	wg.Wait()
}

// Close stops the workers after the queued work has run.
// Close is safe to call multiple times and concurrently with ExecuteAll.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
