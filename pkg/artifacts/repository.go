package artifacts

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the contract for artifact persistence keyed by
// simulation id. All backends expose identical semantics; only the returned
// backend descriptor differs.
type Repository interface {
	// Save persists the artifact, replacing any prior value for the id.
	// The returned descriptor names the backend and where the bundle lives.
	Save(ctx context.Context, simulationID uuid.UUID, artifact *SimulationArtifact) (map[string]string, error)
	// Fetch retrieves the stored artifact, or nil when none exists.
	// A missing artifact is an absent result, not an error.
	Fetch(ctx context.Context, simulationID uuid.UUID) (*SimulationArtifact, error)
}
