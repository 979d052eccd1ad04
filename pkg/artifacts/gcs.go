//go:build gcp

package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSRepository implements Repository using Google Cloud Storage.
// Each simulation is one JSON object at <prefix><id>.json.
type GCSRepository struct {
	client *storage.Client
	bucket string
	prefix string
}

// GCSRepositoryConfig holds configuration for GCSRepository.
type GCSRepositoryConfig struct {
	Bucket string
	Prefix string // Optional key prefix
}

// NewGCSRepository creates a GCS-backed artifact repository.
// Credentials come from Application Default Credentials.
func NewGCSRepository(ctx context.Context, cfg GCSRepositoryConfig) (*GCSRepository, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSRepository{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (r *GCSRepository) objectKey(simulationID uuid.UUID) string {
	return r.prefix + simulationID.String() + ".json"
}

// Save implements Repository.
func (r *GCSRepository) Save(ctx context.Context, simulationID uuid.UUID, artifact *SimulationArtifact) (map[string]string, error) {
	data, err := json.Marshal(artifact)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal artifact: %w", err)
	}

	key := r.objectKey(simulationID)
	w := r.client.Bucket(r.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("gcs write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gcs close failed: %w", err)
	}

	return map[string]string{"backend": "gcs", "bucket": r.bucket, "key": key}, nil
}

// Fetch implements Repository.
func (r *GCSRepository) Fetch(ctx context.Context, simulationID uuid.UUID) (*SimulationArtifact, error) {
	key := r.objectKey(simulationID)
	reader, err := r.client.Bucket(r.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("gcs get failed for %s: %w", simulationID, err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("gcs read failed for %s: %w", simulationID, err)
	}

	var artifact SimulationArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	return &artifact, nil
}
