// Package connector simulates external payment processors. The card simulator
// is flag-driven: the payment method map embedded in the request decides
// whether the call delays, fails, or demands step-up authentication.
package connector

import (
	"context"
	"fmt"

	"github.com/agentboxes/ap2-sandbox/pkg/mandate"
)

// Result statuses returned by a successful connector run.
const (
	StatusAuthorized     = "authorized"
	StatusRequiresStepUp = "requires_step_up"
)

// Result is the outcome of a connector call.
type Result struct {
	Status             string         `json:"status"`
	ProcessorReference string         `json:"processor_reference"`
	Payload            map[string]any `json:"payload"`
}

// Error marks a failure raised by a payment connector. The job processor
// branches on this type to record connector-failure metrics before failing
// the simulation.
type Error struct {
	Connector string
	Reason    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s connector: %s", e.Connector, e.Reason)
}

// Connector executes a payment mandate against an external processor.
type Connector interface {
	// Name identifies the connector in metrics and logs.
	Name() string
	// Run executes the mandate. Failures of the processor itself are
	// returned as *Error; anything else is an infrastructure error.
	Run(ctx context.Context, m mandate.PaymentMandate) (*Result, error)
}
