package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileRepository is a filesystem-backed Repository. Each simulation is one
// pretty-printed JSON document at <root>/<simulation_id>.json.
type FileRepository struct {
	root string
}

// NewFileRepository creates the repository, ensuring the root directory exists.
func NewFileRepository(root string) (*FileRepository, error) {
	//nolint:gosec // G301: 0755 is intentional for shared artifact directory
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to ensure artifact dir: %w", err)
	}
	return &FileRepository{root: root}, nil
}

func (r *FileRepository) path(simulationID uuid.UUID) string {
	return filepath.Join(r.root, simulationID.String()+".json")
}

// Save implements Repository.
func (r *FileRepository) Save(_ context.Context, simulationID uuid.UUID, artifact *SimulationArtifact) (map[string]string, error) {
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal artifact: %w", err)
	}

	path := r.path(simulationID)

	// Write to temp, then rename, so readers never see a partial document.
	tmpPath := path + ".tmp"
	//nolint:gosec // G306: 0644 is intentional for readable artifact files
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return nil, fmt.Errorf("failed to commit artifact: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return map[string]string{"backend": "filesystem", "path": abs}, nil
}

// Fetch implements Repository.
func (r *FileRepository) Fetch(_ context.Context, simulationID uuid.UUID) (*SimulationArtifact, error) {
	data, err := os.ReadFile(r.path(simulationID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var artifact SimulationArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	return &artifact, nil
}
