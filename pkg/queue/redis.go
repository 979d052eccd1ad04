package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/atomic"

	"github.com/agentboxes/ap2-sandbox/pkg/jobs"
	"github.com/agentboxes/ap2-sandbox/pkg/metrics"
)

const (
	defaultQueueName  = "simulation-jobs"
	defaultPopTimeout = time.Second
)

// envelope is the durable wire format: one JSON document per job pushed to
// the named list.
type envelope struct {
	SimulationID string         `json:"simulation_id"`
	Payload      map[string]any `json:"payload"`
}

func encodeJob(job jobs.SimulationJob) ([]byte, error) {
	return json.Marshal(envelope{
		SimulationID: job.SimulationID.String(),
		Payload:      job.Payload,
	})
}

func decodeJob(data string) (jobs.SimulationJob, error) {
	var env envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return jobs.SimulationJob{}, fmt.Errorf("malformed job envelope: %w", err)
	}
	id, err := uuid.Parse(env.SimulationID)
	if err != nil {
		return jobs.SimulationJob{}, fmt.Errorf("malformed simulation id %q: %w", env.SimulationID, err)
	}
	return jobs.SimulationJob{SimulationID: id, Payload: env.Payload}, nil
}

// RedisQueue is the durable backend: jobs are RPUSHed to a named list and
// workers BLPOP with a timeout while a running flag is set. Delivery is
// at-least-once for jobs already pushed; there is no acknowledgment
// protocol, so a job popped by a worker that dies mid-processing is lost.
type RedisQueue struct {
	processor  *jobs.Processor
	metrics    *metrics.Collector
	client     *redis.Client
	queueName  string
	popTimeout time.Duration

	concurrency int
	running     *atomic.Bool
	wg          sync.WaitGroup
	logger      *slog.Logger
}

// NewRedisQueue connects to the redis URL in cfg and prepares the worker
// pool. The connection is not exercised until Start.
func NewRedisQueue(deps Deps, cfg RedisConfig) (*RedisQueue, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	queueName := cfg.QueueName
	if queueName == "" {
		queueName = defaultQueueName
	}
	popTimeout := cfg.PopTimeout
	if popTimeout <= 0 {
		popTimeout = defaultPopTimeout
	}
	concurrency := deps.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &RedisQueue{
		processor:   deps.Processor,
		metrics:     deps.Metrics,
		client:      redis.NewClient(opts),
		queueName:   queueName,
		popTimeout:  popTimeout,
		concurrency: concurrency,
		running:     atomic.NewBool(false),
		logger:      slog.Default().With("component", "queue.redis"),
	}, nil
}

// Start implements Backend.
func (q *RedisQueue) Start(ctx context.Context) error {
	if !q.running.CAS(false, true) {
		return nil
	}

	for i := 0; i < q.concurrency; i++ {
		q.wg.Add(1)
		go q.worker()
	}

	q.logger.InfoContext(ctx, "redis queue listening",
		"queue", q.queueName,
		"workers", q.concurrency,
	)
	return nil
}

// Stop implements Backend. The current blocking pop of each worker is
// allowed to run out its timeout window before the worker observes the flag.
func (q *RedisQueue) Stop(ctx context.Context) error {
	if !q.running.CAS(true, false) {
		return nil
	}

	q.wg.Wait()
	if err := q.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}

	q.logger.InfoContext(ctx, "redis queue stopped")
	return nil
}

// Enqueue implements Backend.
func (q *RedisQueue) Enqueue(ctx context.Context, job jobs.SimulationJob) error {
	q.metrics.IncrementEnqueued(ctx)

	data, err := encodeJob(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := q.client.RPush(ctx, q.queueName, data).Err(); err != nil {
		return fmt.Errorf("push job: %w", err)
	}
	return nil
}

func (q *RedisQueue) worker() {
	defer q.wg.Done()
	ctx := context.Background()

	for q.running.Load() {
		res, err := q.client.BLPop(ctx, q.popTimeout, q.queueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // timeout, re-check the running flag
			}
			if !q.running.Load() {
				return
			}
			q.logger.Error("blocking pop failed", "error", err)
			time.Sleep(q.popTimeout)
			continue
		}

		// res[0] is the list name, res[1] the envelope.
		job, err := decodeJob(res[1])
		if err != nil {
			q.logger.Error("dropping undecodable job", "error", err)
			continue
		}
		q.processor.Process(ctx, job)
	}
}
