// Package storage keeps uploaded objects (profile pictures) outside the
// database. Rows only reference objects by key.
package storage

import (
	"context"
	"errors"
	"fmt"

	"chocoapi/internal/config"
)

// ErrObjectNotFound is returned when no object is stored under a key
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore stores opaque objects under slash-separated keys such as
// "profile_pics/<uuid>.jpg".
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType, cacheControl string) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete is a no-op for missing keys
	Delete(ctx context.Context, key string) error
	// URL returns where clients can fetch the object
	URL(key string) string
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case config.StorageDriverR2:
		return NewR2Store(ctx, cfg.R2)
	case config.StorageDriverFilesystem, "":
		return NewFilesystemStore(ctx, cfg.BaseDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
