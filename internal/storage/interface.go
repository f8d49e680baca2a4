package storage

import (
	"context"
	"io"
)

// ContentTypeXML is the content type of import artifacts.
const ContentTypeXML = "application/xml"

// Encoder is anything that can stream itself as an artifact body.
type Encoder interface {
	Encode(w io.Writer) error
}

// ArtifactStore persists serialized import documents where the import job picks them up.
type ArtifactStore interface {
	// Write replaces the artifact at key and returns its location
	Write(ctx context.Context, key string, doc Encoder) (string, error)

	// Remove deletes the artifact at key; a missing artifact is not an error
	Remove(ctx context.Context, key string) error

	// Exists checks if an artifact exists
	Exists(ctx context.Context, key string) (bool, error)
}

// ObjectStorage defines the interface for object storage operations
type ObjectStorage interface {
	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// GetURL returns the URL for accessing an object
	GetURL(key string) string

	// Delete deletes an object from storage
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)
}
