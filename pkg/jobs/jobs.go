// Package jobs runs the end-to-end processing pipeline for one simulation:
// trust check, mandate construction, connector call, canonical hashing,
// artifact persistence, and the terminal record-store update.
package jobs

import (
	"github.com/google/uuid"
)

// SimulationJob pairs a simulation id with its raw request payload.
// Immutable once enqueued.
type SimulationJob struct {
	SimulationID uuid.UUID      `json:"simulation_id"`
	Payload      map[string]any `json:"payload"`
}
