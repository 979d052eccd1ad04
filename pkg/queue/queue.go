// Package queue delivers simulation jobs to a worker pool. Two transports
// share one contract: an in-process FIFO for single-node sandboxes and a
// redis list for at-least-once delivery across restarts.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentboxes/ap2-sandbox/pkg/jobs"
	"github.com/agentboxes/ap2-sandbox/pkg/metrics"
)

// Backend is the common queue contract. Both implementations must be
// substitutable with identical externally observable job outcomes.
type Backend interface {
	// Start spins up the fixed-size worker pool. Idempotent.
	Start(ctx context.Context) error
	// Stop signals workers to exit after in-flight work finishes, then
	// joins them. Idempotent. In-flight jobs always run to completion.
	Stop(ctx context.Context) error
	// Enqueue counts the job and hands it to the transport. Fire-and-forget:
	// it returns as soon as the transport acknowledges.
	Enqueue(ctx context.Context, job jobs.SimulationJob) error
}

// Built-in backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Deps carries the collaborators every backend needs.
type Deps struct {
	Processor   *jobs.Processor
	Metrics     *metrics.Collector
	Concurrency int
}

// RedisConfig parameterizes the durable redis backend.
type RedisConfig struct {
	URL        string
	QueueName  string
	PopTimeout time.Duration
}

// Factory constructs a custom backend registered by name.
type Factory func(deps Deps) (Backend, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a custom backend constructible by name through New.
// It replaces dynamic plugin loading: external transports register
// themselves at init time.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New creates the backend selected by name. An empty name selects the
// in-process queue.
func New(name string, deps Deps, redisCfg RedisConfig) (Backend, error) {
	switch name {
	case "", BackendMemory:
		return NewMemoryQueue(deps), nil
	case BackendRedis:
		return NewRedisQueue(deps, redisCfg)
	}

	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown queue backend %q (register it with queue.Register)", name)
	}
	return factory(deps)
}
