// Package artifact stores uploaded sources and approval artifacts in object
// storage. A filesystem implementation backs development and tests; MinIO
// backs deployments.
package artifact

import (
	"context"
	"io"
)

// Store is the object storage contract the rest of the system uses.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
