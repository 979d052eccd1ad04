package queue

import (
	"context"
	"log/slog"
	"sync"

	"github.com/agentboxes/ap2-sandbox/pkg/jobs"
	"github.com/agentboxes/ap2-sandbox/pkg/metrics"
)

// MemoryQueue is the in-process backend: one shared unbounded FIFO drained
// by N worker goroutines. Nothing survives a restart. Stop pushes one nil
// sentinel per worker; each worker consumes exactly one sentinel and exits,
// so jobs ahead of the sentinels still drain while anything enqueued after
// Stop is dropped.
type MemoryQueue struct {
	processor   *jobs.Processor
	metrics     *metrics.Collector
	concurrency int
	logger      *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending []*jobs.SimulationJob // nil entry = shutdown sentinel
	started bool
	wg      sync.WaitGroup
}

// NewMemoryQueue creates the in-process queue. Concurrency below 1 is
// clamped to 1.
func NewMemoryQueue(deps Deps) *MemoryQueue {
	concurrency := deps.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	q := &MemoryQueue{
		processor:   deps.Processor,
		metrics:     deps.Metrics,
		concurrency: concurrency,
		logger:      slog.Default().With("component", "queue.memory"),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Start implements Backend.
func (q *MemoryQueue) Start(ctx context.Context) error {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return nil
	}
	q.started = true
	q.mu.Unlock()

	for i := 0; i < q.concurrency; i++ {
		q.wg.Add(1)
		go q.worker()
	}

	q.logger.InfoContext(ctx, "memory queue started", "workers", q.concurrency)
	return nil
}

// Stop implements Backend.
func (q *MemoryQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return nil
	}
	q.started = false
	for i := 0; i < q.concurrency; i++ {
		q.pending = append(q.pending, nil)
	}
	q.cond.Broadcast()
	q.mu.Unlock()

	q.wg.Wait()
	q.logger.InfoContext(ctx, "memory queue stopped")
	return nil
}

// Enqueue implements Backend.
func (q *MemoryQueue) Enqueue(ctx context.Context, job jobs.SimulationJob) error {
	q.metrics.IncrementEnqueued(ctx)

	q.mu.Lock()
	q.pending = append(q.pending, &job)
	q.cond.Signal()
	q.mu.Unlock()
	return nil
}

func (q *MemoryQueue) worker() {
	defer q.wg.Done()
	for {
		job := q.dequeue()
		if job == nil {
			return
		}
		q.processor.Process(context.Background(), *job)
	}
}

func (q *MemoryQueue) dequeue() *jobs.SimulationJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.pending) == 0 {
		q.cond.Wait()
	}
	job := q.pending[0]
	q.pending = q.pending[1:]
	return job
}
