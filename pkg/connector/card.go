package connector

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/agentboxes/ap2-sandbox/pkg/mandate"
)

const (
	cardConnectorName = "card"
	defaultLast4      = "4242"
	defaultCurrency   = "USD"
)

// CardSimulator simulates a card payment connector.
//
// Flags read from the mandate's method map:
//   - simulateDelay: milliseconds to suspend before responding
//   - simulateFailure: fail the call with *Error
//   - requireStepUp: succeed with status requires_step_up
//   - last4: card suffix echoed in the response (default "4242")
//
// A negative mandate amount also fails the call.
type CardSimulator struct{}

// NewCardSimulator returns the card connector simulator.
func NewCardSimulator() *CardSimulator {
	return &CardSimulator{}
}

// Name implements Connector.
func (c *CardSimulator) Name() string { return cardConnectorName }

// Run implements Connector.
func (c *CardSimulator) Run(ctx context.Context, m mandate.PaymentMandate) (*Result, error) {
	method := m.Method
	if method == nil {
		method = map[string]any{}
	}

	// Simulated network latency. Other workers keep running; only this
	// goroutine suspends.
	if delay := numberValue(method["simulateDelay"]); delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(delay * float64(time.Millisecond))):
		}
	}

	if boolValue(method["simulateFailure"]) || m.Amount.IsNegative() {
		return nil, &Error{Connector: cardConnectorName, Reason: "simulated connector failure"}
	}

	status := StatusAuthorized
	if boolValue(method["requireStepUp"]) {
		status = StatusRequiresStepUp
	}

	currency := defaultCurrency
	if ctxMap, ok := m.Metadata["context"].(map[string]any); ok {
		if s, ok := ctxMap["currency"].(string); ok && s != "" {
			currency = s
		}
	}

	last4 := defaultLast4
	if s, ok := method["last4"].(string); ok && s != "" {
		last4 = s
	}

	return &Result{
		Status:             status,
		ProcessorReference: uuid.NewString(),
		Payload: map[string]any{
			"cardLast4": last4,
			"amount":    m.Amount.StringFixed(2),
			"currency":  currency,
		},
	}, nil
}

func boolValue(v any) bool {
	b, _ := v.(bool)
	return b
}

func numberValue(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, _ := t.Float64()
		return f
	default:
		return 0
	}
}
