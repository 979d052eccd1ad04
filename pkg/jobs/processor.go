package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/agentboxes/ap2-sandbox/pkg/artifacts"
	"github.com/agentboxes/ap2-sandbox/pkg/canonicalize"
	"github.com/agentboxes/ap2-sandbox/pkg/connector"
	"github.com/agentboxes/ap2-sandbox/pkg/mandate"
	"github.com/agentboxes/ap2-sandbox/pkg/metrics"
	"github.com/agentboxes/ap2-sandbox/pkg/store"
	"github.com/agentboxes/ap2-sandbox/pkg/trust"
)

const (
	defaultMerchantID = "merchant-default"
	defaultAgentID    = "agent-default"
)

// Processor orchestrates the pipeline for one job. Every stage returns an
// explicit error; any failure lands the record in the failed state and the
// worker moves on.
type Processor struct {
	store      *store.SimulationStore
	repository artifacts.Repository
	trust      trust.Provider
	connector  connector.Connector
	metrics    *metrics.Collector
	logger     *slog.Logger
}

// NewProcessor wires the pipeline's collaborators together.
func NewProcessor(
	st *store.SimulationStore,
	repository artifacts.Repository,
	trustProvider trust.Provider,
	conn connector.Connector,
	collector *metrics.Collector,
) *Processor {
	return &Processor{
		store:      st,
		repository: repository,
		trust:      trustProvider,
		connector:  conn,
		metrics:    collector,
		logger:     slog.Default().With("component", "jobs"),
	}
}

// Process runs the pipeline for one job and records the terminal state.
// It never returns an error: failures become failed records, and the worker
// loop keeps running.
func (p *Processor) Process(ctx context.Context, job SimulationJob) {
	if err := p.run(ctx, job); err != nil {
		p.fail(ctx, job, err)
	}
}

func (p *Processor) run(ctx context.Context, job SimulationJob) error {
	payload := job.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	requestContext := mandate.Context(payload)
	merchantID := stringOr(requestContext["merchantId"], defaultMerchantID)
	agentID := stringOr(requestContext["agentId"], defaultAgentID)

	// Advisory only: the decision is recorded in artifact metadata and
	// never gates the pipeline.
	trusted := p.trust.Verify(ctx, merchantID, agentID)

	intent := mandate.BuildIntent(payload)
	cart, err := mandate.BuildCart(intent, payload)
	if err != nil {
		return fmt.Errorf("build cart mandate: %w", err)
	}
	payment := mandate.BuildPayment(intent, cart, payload)

	result, err := p.connector.Run(ctx, payment)
	if err != nil {
		var connErr *connector.Error
		if errors.As(err, &connErr) {
			p.metrics.RecordConnectorFailure(ctx, p.connector.Name())
		}
		return fmt.Errorf("run %s connector: %w", p.connector.Name(), err)
	}
	p.metrics.RecordConnectorSuccess(ctx, p.connector.Name())

	intentPayload, err := asPayload(intent)
	if err != nil {
		return fmt.Errorf("encode intent mandate: %w", err)
	}
	cartPayload, err := asPayload(cart)
	if err != nil {
		return fmt.Errorf("encode cart mandate: %w", err)
	}
	paymentPayload, err := asPayload(payment)
	if err != nil {
		return fmt.Errorf("encode payment mandate: %w", err)
	}
	connectorPayload, err := asPayload(result)
	if err != nil {
		return fmt.Errorf("encode connector result: %w", err)
	}
	// The payment hash covers the connector echo: the audit trail binds the
	// processor's answer to the mandate that produced it.
	paymentPayload["connector"] = connectorPayload

	intentHash, err := canonicalize.CanonicalHash(intentPayload)
	if err != nil {
		return fmt.Errorf("hash intent mandate: %w", err)
	}
	cartHash, err := canonicalize.CanonicalHash(cartPayload)
	if err != nil {
		return fmt.Errorf("hash cart mandate: %w", err)
	}
	paymentHash, err := canonicalize.CanonicalHash(paymentPayload)
	if err != nil {
		return fmt.Errorf("hash payment mandate: %w", err)
	}

	artifact := &artifacts.SimulationArtifact{
		Intent:    &artifacts.MandateEnvelope{Hash: intentHash, Payload: intentPayload},
		Cart:      &artifacts.MandateEnvelope{Hash: cartHash, Payload: cartPayload},
		Payment:   &artifacts.MandateEnvelope{Hash: paymentHash, Payload: paymentPayload},
		Connector: connectorPayload,
		Metadata: map[string]any{
			"context": requestContext,
			"trust": map[string]any{
				"merchantId": merchantID,
				"agentId":    agentID,
				"trusted":    trusted,
			},
		},
	}

	descriptor, err := p.repository.Save(ctx, job.SimulationID, artifact)
	if err != nil {
		return fmt.Errorf("persist artifacts: %w", err)
	}
	backend := "unknown"
	if len(descriptor) > 0 {
		storage := make(map[string]any, len(descriptor))
		for k, v := range descriptor {
			storage[k] = v
		}
		artifact.Metadata["storage"] = storage
		if b := descriptor["backend"]; b != "" {
			backend = b
		}
	}

	_, err = p.store.Update(job.SimulationID, store.Update{
		Status: store.StatusCompleted,
		Logs: []string{
			"Generated mandate hashes (stub)",
			fmt.Sprintf("Artifacts persisted via %s backend", backend),
		},
		MandateHashes: map[string]string{
			"intent":  intentHash,
			"cart":    cartHash,
			"payment": paymentHash,
		},
		Artifacts: artifact,
	})
	if err != nil {
		return fmt.Errorf("update simulation record: %w", err)
	}

	p.metrics.IncrementCompleted(ctx, backend)
	return nil
}

// fail records the terminal failed state. Hashes are cleared and the error
// text is surfaced on the record.
func (p *Processor) fail(ctx context.Context, job SimulationJob, cause error) {
	p.logger.ErrorContext(ctx, "simulation job failed",
		"simulation_id", job.SimulationID,
		"error", cause,
	)

	_, err := p.store.Update(job.SimulationID, store.Update{
		Status:        store.StatusFailed,
		Logs:          []string{"Simulation failed", cause.Error()},
		MandateHashes: map[string]string{},
		Error:         cause.Error(),
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to record simulation failure",
			"simulation_id", job.SimulationID,
			"error", err,
		)
	}

	p.metrics.IncrementFailed(ctx)
}

// asPayload round-trips a value through JSON into a generic map, giving the
// hashing and artifact layers the same representation a reader of the stored
// JSON would see.
func asPayload(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}
