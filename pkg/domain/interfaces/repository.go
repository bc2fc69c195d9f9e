package interfaces

import (
	"context"
	"io"
)

// Repository defines the interface for data persistence
type Repository interface {
	ModelDefinition() ModelDefinitionRepository
	Upload() UploadRepository

	Close() error
}

// BlobStorage stores uploaded file contents
type BlobStorage interface {
	Put(ctx context.Context, key string, contentType string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
