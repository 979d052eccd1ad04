package connector

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentboxes/ap2-sandbox/pkg/mandate"
)

func paymentMandate(method map[string]any, amount string) mandate.PaymentMandate {
	return mandate.PaymentMandate{
		ID:          "pm-1",
		IntentID:    "in-1",
		CartID:      "ct-1",
		Method:      method,
		Amount:      decimal.RequireFromString(amount),
		RequestedAt: time.Now().UTC(),
		Metadata:    map[string]any{"context": map[string]any{}},
	}
}

func TestCardSimulator_Authorized(t *testing.T) {
	sim := NewCardSimulator()
	result, err := sim.Run(context.Background(), paymentMandate(map[string]any{}, "20.00"))
	require.NoError(t, err)

	assert.Equal(t, StatusAuthorized, result.Status)
	assert.NotEmpty(t, result.ProcessorReference)
	assert.Equal(t, "4242", result.Payload["cardLast4"])
	assert.Equal(t, "20.00", result.Payload["amount"])
	assert.Equal(t, "USD", result.Payload["currency"])
}

func TestCardSimulator_RequireStepUp(t *testing.T) {
	sim := NewCardSimulator()
	result, err := sim.Run(context.Background(), paymentMandate(map[string]any{"requireStepUp": true}, "5.00"))
	require.NoError(t, err)
	assert.Equal(t, StatusRequiresStepUp, result.Status)
}

func TestCardSimulator_SimulateFailure(t *testing.T) {
	sim := NewCardSimulator()
	_, err := sim.Run(context.Background(), paymentMandate(map[string]any{"simulateFailure": true}, "5.00"))
	require.Error(t, err)

	var connErr *Error
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "card", connErr.Connector)
}

func TestCardSimulator_NegativeAmount(t *testing.T) {
	sim := NewCardSimulator()
	_, err := sim.Run(context.Background(), paymentMandate(map[string]any{}, "-1.00"))

	var connErr *Error
	require.ErrorAs(t, err, &connErr)
}

func TestCardSimulator_PayloadOverrides(t *testing.T) {
	m := paymentMandate(map[string]any{"last4": "9999"}, "7.50")
	m.Metadata = map[string]any{"context": map[string]any{"currency": "EUR"}}

	sim := NewCardSimulator()
	result, err := sim.Run(context.Background(), m)
	require.NoError(t, err)

	assert.Equal(t, "9999", result.Payload["cardLast4"])
	assert.Equal(t, "EUR", result.Payload["currency"])
	assert.Equal(t, "7.50", result.Payload["amount"])
}

func TestCardSimulator_SimulateDelay(t *testing.T) {
	sim := NewCardSimulator()

	start := time.Now()
	_, err := sim.Run(context.Background(), paymentMandate(map[string]any{"simulateDelay": float64(50)}, "1.00"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestCardSimulator_DelayHonorsCancellation(t *testing.T) {
	sim := NewCardSimulator()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := sim.Run(ctx, paymentMandate(map[string]any{"simulateDelay": float64(5000)}, "1.00"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCardSimulator_NilMethod(t *testing.T) {
	m := paymentMandate(nil, "3.00")

	sim := NewCardSimulator()
	result, err := sim.Run(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, StatusAuthorized, result.Status)
}
