//go:build gcp

package artifacts

import (
	"context"
	"fmt"
)

func newGCSRepository(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required for the gcs artifact backend")
	}
	return NewGCSRepository(ctx, GCSRepositoryConfig{
		Bucket: cfg.Bucket,
		Prefix: cfg.Prefix,
	})
}
