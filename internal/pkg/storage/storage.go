package storage

import (
	"context"
	"io"
)

// Storage is the minimal interface screenshot handling needs.
type Storage interface {
	// Put stores an object under the given key.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Get retrieves an object by key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object by key. Returns nil if it doesn't exist.
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for a stored object.
	GetURL(key string) string
}
