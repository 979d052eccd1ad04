// Package metrics tracks simulation throughput for the process lifetime.
// Counters reset only on restart and are never persisted.
package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Collector is the process-wide counter set shared by every worker. The
// local counters are the source of truth for Snapshot; when a meter is
// attached the same increments are mirrored to OpenTelemetry.
type Collector struct {
	mu               sync.Mutex
	enqueued         int64
	completed        int64
	failed           int64
	byBackend        map[string]int64
	connectorSuccess map[string]int64
	connectorFailure map[string]int64

	enqueuedCtr  metric.Int64Counter
	completedCtr metric.Int64Counter
	failedCtr    metric.Int64Counter
	connectorCtr metric.Int64Counter
}

// Snapshot is a read-only copy of the counters, shaped for the health surface.
type Snapshot struct {
	Enqueued           int64            `json:"enqueued"`
	Completed          int64            `json:"completed"`
	Failed             int64            `json:"failed"`
	CompletedByBackend map[string]int64 `json:"completed_by_backend"`
	ConnectorSuccess   map[string]int64 `json:"connector_success"`
	ConnectorFailure   map[string]int64 `json:"connector_failure"`
}

// NewCollector creates a collector without OpenTelemetry mirroring.
func NewCollector() *Collector {
	return &Collector{
		byBackend:        make(map[string]int64),
		connectorSuccess: make(map[string]int64),
		connectorFailure: make(map[string]int64),
	}
}

// NewCollectorWithMeter creates a collector that mirrors every increment to
// the given meter.
func NewCollectorWithMeter(meter metric.Meter) (*Collector, error) {
	c := NewCollector()

	var err error
	c.enqueuedCtr, err = meter.Int64Counter("simulation.jobs.enqueued",
		metric.WithDescription("Simulation jobs accepted by the queue"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}
	c.completedCtr, err = meter.Int64Counter("simulation.jobs.completed",
		metric.WithDescription("Simulation jobs that reached the completed state"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}
	c.failedCtr, err = meter.Int64Counter("simulation.jobs.failed",
		metric.WithDescription("Simulation jobs that reached the failed state"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}
	c.connectorCtr, err = meter.Int64Counter("simulation.connector.results",
		metric.WithDescription("Connector call outcomes by connector and result"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// IncrementEnqueued counts a job handed to the queue transport.
func (c *Collector) IncrementEnqueued(ctx context.Context) {
	c.mu.Lock()
	c.enqueued++
	c.mu.Unlock()

	if c.enqueuedCtr != nil {
		c.enqueuedCtr.Add(ctx, 1)
	}
}

// IncrementCompleted counts a completed job, attributed to the repository
// backend that persisted its artifacts.
func (c *Collector) IncrementCompleted(ctx context.Context, backend string) {
	c.mu.Lock()
	c.completed++
	c.byBackend[backend]++
	c.mu.Unlock()

	if c.completedCtr != nil {
		c.completedCtr.Add(ctx, 1, metric.WithAttributes(attribute.String("backend", backend)))
	}
}

// IncrementFailed counts a failed job.
func (c *Collector) IncrementFailed(ctx context.Context) {
	c.mu.Lock()
	c.failed++
	c.mu.Unlock()

	if c.failedCtr != nil {
		c.failedCtr.Add(ctx, 1)
	}
}

// RecordConnectorSuccess counts a successful connector call.
func (c *Collector) RecordConnectorSuccess(ctx context.Context, connector string) {
	c.mu.Lock()
	c.connectorSuccess[connector]++
	c.mu.Unlock()

	if c.connectorCtr != nil {
		c.connectorCtr.Add(ctx, 1, metric.WithAttributes(
			attribute.String("connector", connector),
			attribute.String("outcome", "success"),
		))
	}
}

// RecordConnectorFailure counts a failed connector call.
func (c *Collector) RecordConnectorFailure(ctx context.Context, connector string) {
	c.mu.Lock()
	c.connectorFailure[connector]++
	c.mu.Unlock()

	if c.connectorCtr != nil {
		c.connectorCtr.Add(ctx, 1, metric.WithAttributes(
			attribute.String("connector", connector),
			attribute.String("outcome", "failure"),
		))
	}
}

// Snapshot returns a copy of the current counters. Mutating the returned
// maps does not affect the collector.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Enqueued:           c.enqueued,
		Completed:          c.completed,
		Failed:             c.failed,
		CompletedByBackend: copyCounts(c.byBackend),
		ConnectorSuccess:   copyCounts(c.connectorSuccess),
		ConnectorFailure:   copyCounts(c.connectorFailure),
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
