package artifacts

import (
	"context"
	"fmt"
	"sync"
)

// BackendType selects an artifact storage backend.
type BackendType string

const (
	BackendMemory     BackendType = "memory"
	BackendFilesystem BackendType = "filesystem"
	BackendS3         BackendType = "s3"
	BackendGCS        BackendType = "gcs"
)

// Config selects and parameterizes a repository backend.
type Config struct {
	Backend  string // one of the BackendType values, or a registered name
	Root     string // filesystem: artifact root directory
	Bucket   string // s3/gcs: bucket name
	Prefix   string // s3/gcs: optional key prefix
	Endpoint string // s3: optional custom endpoint (MinIO, LocalStack)
	Region   string // s3: region
}

// Factory constructs a custom repository registered by name.
type Factory func(ctx context.Context) (Repository, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a custom repository constructible by name through New.
// External backends register themselves at init time; this replaces dynamic
// plugin loading by import path.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New creates the repository selected by cfg.Backend. An empty backend
// selects the ephemeral in-memory store.
func New(ctx context.Context, cfg Config) (Repository, error) {
	switch BackendType(cfg.Backend) {
	case "", BackendMemory:
		return NewMemoryRepository(), nil
	case BackendFilesystem:
		root := cfg.Root
		if root == "" {
			root = "data/simulations"
		}
		return NewFileRepository(root)
	case BackendS3:
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("bucket is required for the s3 artifact backend")
		}
		return NewS3Repository(ctx, S3RepositoryConfig{
			Bucket:   cfg.Bucket,
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
			Prefix:   cfg.Prefix,
		})
	case BackendGCS:
		return newGCSRepository(ctx, cfg)
	}

	registryMu.RLock()
	factory, ok := registry[cfg.Backend]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown artifact repository %q (register it with artifacts.Register)", cfg.Backend)
	}
	return factory(ctx)
}
