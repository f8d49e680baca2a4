package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/timmy/tmimport/internal/config"
)

// NewArtifactStore creates the ArtifactStore selected by artifact.backend.
// Parameters:
//   - ctx: context used while loading cloud credentials.
//   - artifact: backend selection and local root.
//   - objects: S3-compatible settings, used by the s3 backend only.
// Returns:
//   - ArtifactStore: initialized store.
//   - error: non-nil if the backend is unknown or the client cannot be created.
func NewArtifactStore(ctx context.Context, artifact config.ArtifactConfig, objects config.StorageConfig) (ArtifactStore, error) {
	switch artifact.Backend {
	case "local", "":
		return NewLocalStore(artifact.Root), nil
	case "s3":
		s3Storage, err := NewStorage(ctx, &S3Config{
			Type:      StorageType(objects.Type),
			Endpoint:  objects.Endpoint,
			AccessKey: objects.AccessKey,
			SecretKey: objects.SecretKey,
			UseSSL:    objects.UseSSL,
			Bucket:    objects.Bucket,
			Region:    objects.Region,
		})
		if err != nil {
			return nil, err
		}
		return NewObjectStore(s3Storage, objects.Prefix), nil
	default:
		return nil, fmt.Errorf("unsupported artifact backend %q", artifact.Backend)
	}
}

// NewStorage creates an ObjectStorage instance based on the configuration.
func NewStorage(ctx context.Context, cfg *S3Config) (ObjectStorage, error) {
	if cfg.Type == "" {
		cfg.Type = detectStorageType(cfg.Endpoint)
	}
	return NewS3Storage(ctx, cfg)
}

// detectStorageType attempts to detect the storage type from the endpoint
func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case endpoint == "", strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}
