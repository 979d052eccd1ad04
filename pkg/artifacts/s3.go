package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// S3Repository implements Repository using AWS S3 (or any S3-compatible
// object store). Each simulation is one JSON object at <prefix><id>.json.
type S3Repository struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3RepositoryConfig holds configuration for S3Repository.
type S3RepositoryConfig struct {
	Bucket   string
	Region   string
	Endpoint string // Optional custom endpoint (for MinIO, LocalStack, etc.)
	Prefix   string // Optional key prefix
}

// NewS3Repository creates an S3-backed artifact repository.
func NewS3Repository(ctx context.Context, cfg S3RepositoryConfig) (*S3Repository, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	clientOpts := func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO/LocalStack
		}
	}

	return &S3Repository{
		client: s3.NewFromConfig(awsCfg, clientOpts),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (r *S3Repository) objectKey(simulationID uuid.UUID) string {
	return r.prefix + simulationID.String() + ".json"
}

// Save implements Repository.
func (r *S3Repository) Save(ctx context.Context, simulationID uuid.UUID, artifact *SimulationArtifact) (map[string]string, error) {
	data, err := json.Marshal(artifact)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal artifact: %w", err)
	}

	key := r.objectKey(simulationID)
	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 put failed: %w", err)
	}

	return map[string]string{"backend": "s3", "bucket": r.bucket, "key": key}, nil
}

// Fetch implements Repository.
func (r *S3Repository) Fetch(ctx context.Context, simulationID uuid.UUID) (*SimulationArtifact, error) {
	key := r.objectKey(simulationID)
	result, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("s3 get failed for %s: %w", simulationID, err)
	}
	defer func() { _ = result.Body.Close() }()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read failed for %s: %w", simulationID, err)
	}

	var artifact SimulationArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	return &artifact, nil
}
