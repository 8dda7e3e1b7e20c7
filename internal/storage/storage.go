// Package storage provides artifact storage backends for archiving
// benchmark outputs (result JSON, reports, data files).
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/formbench/formbench/internal/config"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrUploadFailed   = errors.New("upload failed")
	ErrDownloadFailed = errors.New("download failed")
	ErrDeleteFailed   = errors.New("delete failed")
)

// ArtifactStore abstracts where benchmark artifacts are archived.
// Implementations include S3 and the local filesystem.
type ArtifactStore interface {
	// Upload copies a local file to objectPath in the store.
	Upload(ctx context.Context, localPath, objectPath string) error

	// Download copies an object from the store to localPath.
	Download(ctx context.Context, objectPath, localPath string) error

	// Exists reports whether an object exists in the store.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// List returns all object paths under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes an object. Deleting a missing object is not an
	// error.
	Delete(ctx context.Context, objectPath string) error
}

// New creates the artifact store selected by cfg. An empty type means
// no archiving and returns a nil store.
func New(ctx context.Context, cfg config.StorageConfig) (ArtifactStore, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case "local":
		return NewLocalStore(cfg.Path)
	case "s3":
		return NewS3Store(ctx, cfg.S3.Bucket, S3Config{
			Region:   cfg.S3.Region,
			Endpoint: cfg.S3.Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
