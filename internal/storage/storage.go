// Package storage persists uploaded meme images in S3-compatible object
// storage so analysis records can reference a stable URL instead of carrying
// base64 payloads. Optional; when disabled the data URL is stored directly.
package storage

import (
	"context"
	"io"
)

// ObjectStorage is the interface for storing uploaded meme images.
type ObjectStorage interface {
	// Upload stores an object under key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// GetURL returns the public URL for an uploaded object.
	GetURL(key string) string

	// Delete removes an object.
	Delete(ctx context.Context, key string) error

	// Exists checks whether an object is already stored.
	Exists(ctx context.Context, key string) (bool, error)
}
