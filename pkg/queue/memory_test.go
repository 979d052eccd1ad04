package queue

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentboxes/ap2-sandbox/pkg/artifacts"
	"github.com/agentboxes/ap2-sandbox/pkg/connector"
	"github.com/agentboxes/ap2-sandbox/pkg/jobs"
	"github.com/agentboxes/ap2-sandbox/pkg/metrics"
	"github.com/agentboxes/ap2-sandbox/pkg/store"
	"github.com/agentboxes/ap2-sandbox/pkg/trust"
)

type harness struct {
	store     *store.SimulationStore
	metrics   *metrics.Collector
	processor *jobs.Processor
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		store:   store.NewSimulationStore(),
		metrics: metrics.NewCollector(),
	}
	trustProvider, err := trust.New("")
	require.NoError(t, err)

	h.processor = jobs.NewProcessor(
		h.store,
		artifacts.NewMemoryRepository(),
		trustProvider,
		connector.NewCardSimulator(),
		h.metrics,
	)
	return h
}

func (h *harness) enqueueJob(t *testing.T, backend Backend, payload map[string]any) uuid.UUID {
	t.Helper()

	record := h.store.Create(uuid.New(), payload)
	err := backend.Enqueue(context.Background(), jobs.SimulationJob{
		SimulationID: record.ID,
		Payload:      payload,
	})
	require.NoError(t, err)
	return record.ID
}

func TestMemoryQueue_DrainsAllJobs(t *testing.T) {
	h := newHarness(t)
	q := NewMemoryQueue(Deps{Processor: h.processor, Metrics: h.metrics, Concurrency: 4})

	ctx := context.Background()
	require.NoError(t, q.Start(ctx))

	const n = 25
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		payload := map[string]any{"cart": map[string]any{}}
		if i%5 == 0 {
			payload["payment_method"] = map[string]any{"simulateFailure": true}
		}
		ids = append(ids, h.enqueueJob(t, q, payload))
	}

	// Stop drains everything enqueued before the sentinels.
	require.NoError(t, q.Stop(ctx))

	for _, id := range ids {
		record, ok := h.store.Get(id)
		require.True(t, ok)
		assert.NotEqual(t, store.StatusQueued, record.Status, "job %s never ran", id)
	}

	snap := h.metrics.Snapshot()
	assert.Equal(t, int64(n), snap.Enqueued)
	assert.Equal(t, snap.Enqueued, snap.Completed+snap.Failed)
	assert.Equal(t, int64(5), snap.Failed)
}

func TestMemoryQueue_StartStopIdempotent(t *testing.T) {
	h := newHarness(t)
	q := NewMemoryQueue(Deps{Processor: h.processor, Metrics: h.metrics, Concurrency: 1})

	ctx := context.Background()
	require.NoError(t, q.Start(ctx))
	require.NoError(t, q.Start(ctx))
	require.NoError(t, q.Stop(ctx))
	require.NoError(t, q.Stop(ctx))
}

func TestMemoryQueue_ClampsConcurrency(t *testing.T) {
	h := newHarness(t)
	q := NewMemoryQueue(Deps{Processor: h.processor, Metrics: h.metrics, Concurrency: 0})

	ctx := context.Background()
	require.NoError(t, q.Start(ctx))

	id := h.enqueueJob(t, q, map[string]any{"cart": map[string]any{}})

	deadline := time.Now().Add(5 * time.Second)
	for {
		record, ok := h.store.Get(id)
		require.True(t, ok)
		if record.Status != store.StatusQueued {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("job never left the queued state")
		}
		time.Sleep(10 * time.Millisecond)
	}

	require.NoError(t, q.Stop(ctx))
}

func TestNew_SelectsBackend(t *testing.T) {
	h := newHarness(t)
	deps := Deps{Processor: h.processor, Metrics: h.metrics, Concurrency: 1}

	backend, err := New(BackendMemory, deps, RedisConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryQueue{}, backend)

	backend, err = New("", deps, RedisConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryQueue{}, backend)

	_, err = New("kafka", deps, RedisConfig{})
	assert.Error(t, err)
}
