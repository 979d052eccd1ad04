//go:build !gcp

package artifacts

import (
	"context"
	"fmt"
)

func newGCSRepository(ctx context.Context, cfg Config) (Repository, error) {
	return nil, fmt.Errorf("GCS artifact storage is not enabled in this build (use -tags gcp)")
}
