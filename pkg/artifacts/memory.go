package artifacts

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps artifacts in an in-process map. Everything is lost
// on restart; it exists for tests and single-node sandboxes.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[uuid.UUID]*SimulationArtifact
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[uuid.UUID]*SimulationArtifact)}
}

// Save implements Repository.
func (r *MemoryRepository) Save(_ context.Context, simulationID uuid.UUID, artifact *SimulationArtifact) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[simulationID] = artifact
	return map[string]string{"backend": "memory"}, nil
}

// Fetch implements Repository.
func (r *MemoryRepository) Fetch(_ context.Context, simulationID uuid.UUID) (*SimulationArtifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store[simulationID], nil
}
