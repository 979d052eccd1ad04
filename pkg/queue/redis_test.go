package queue

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentboxes/ap2-sandbox/pkg/jobs"
	"github.com/agentboxes/ap2-sandbox/pkg/store"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	job := jobs.SimulationJob{
		SimulationID: uuid.New(),
		Payload: map[string]any{
			"cart":           map[string]any{"items": []any{}},
			"payment_method": map[string]any{"simulateFailure": true},
		},
	}

	data, err := encodeJob(job)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"simulation_id"`)

	decoded, err := decodeJob(string(data))
	require.NoError(t, err)
	assert.Equal(t, job.SimulationID, decoded.SimulationID)
	assert.Equal(t, job.Payload, decoded.Payload)
}

func TestDecodeJob_Malformed(t *testing.T) {
	_, err := decodeJob("{not json")
	assert.ErrorContains(t, err, "malformed job envelope")

	_, err = decodeJob(`{"simulation_id":"not-a-uuid","payload":{}}`)
	assert.ErrorContains(t, err, "malformed simulation id")
}

func TestNewRedisQueue_InvalidURL(t *testing.T) {
	h := newHarness(t)
	_, err := NewRedisQueue(
		Deps{Processor: h.processor, Metrics: h.metrics},
		RedisConfig{URL: "://not-a-url"},
	)
	assert.ErrorContains(t, err, "invalid redis url")
}

func TestNewRedisQueue_Defaults(t *testing.T) {
	h := newHarness(t)
	q, err := NewRedisQueue(
		Deps{Processor: h.processor, Metrics: h.metrics},
		RedisConfig{URL: "redis://localhost:6379/0"},
	)
	require.NoError(t, err)
	assert.Equal(t, "simulation-jobs", q.queueName)
	assert.Equal(t, time.Second, q.popTimeout)
	assert.Equal(t, 1, q.concurrency)
}

// TestRedisQueue_Integration requires a running Redis.
// We skip if connection fails.
func TestRedisQueue_Integration(t *testing.T) {
	h := newHarness(t)
	q, err := NewRedisQueue(
		Deps{Processor: h.processor, Metrics: h.metrics, Concurrency: 2},
		RedisConfig{
			URL:        "redis://localhost:6379/0",
			QueueName:  "simulation-jobs-test",
			PopTimeout: 200 * time.Millisecond,
		},
	)
	require.NoError(t, err)

	ctx := context.Background()
	if _, err := q.client.Ping(ctx).Result(); err != nil {
		t.Skip("Skipping Redis integration test: redis not available")
	}
	q.client.Del(ctx, q.queueName)

	require.NoError(t, q.Start(ctx))

	id := h.enqueueJob(t, q, map[string]any{"cart": map[string]any{}})

	deadline := time.Now().Add(5 * time.Second)
	for {
		record, ok := h.store.Get(id)
		require.True(t, ok)
		if record.Status == store.StatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job stuck in %s", record.Status)
		}
		time.Sleep(20 * time.Millisecond)
	}

	require.NoError(t, q.Stop(ctx))
}
