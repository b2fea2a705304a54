package media

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrQueueFull is returned by Submit when every worker is busy and the
	// backlog is at capacity.
	ErrQueueFull = errors.New("media: derivation queue is full")
	// ErrQueueClosed is returned by Submit after Shutdown.
	ErrQueueClosed = errors.New("media: derivation queue is closed")
)

// Queue runs derivation jobs on a fixed number of workers. The backlog holds
// twice as many jobs as there are workers; Submit never blocks.
type Queue struct {
	log *slog.Logger

	mu     sync.RWMutex
	closed bool
	jobs   chan func()
	wg     sync.WaitGroup
	once   sync.Once
}

func NewQueue(workers int, log *slog.Logger) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = slog.Default()
	}

	q := &Queue{
		log:  log,
		jobs: make(chan func(), workers*2),
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

func (q *Queue) Submit(job func()) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting jobs and waits until the backlog is drained or
// ctx is done. It is safe to call more than once.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.jobs)
		q.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for job := range q.jobs {
		q.run(job)
	}
}

func (q *Queue) run(job func()) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("derivation job panicked", "panic", r)
		}
	}()
	job()
}
