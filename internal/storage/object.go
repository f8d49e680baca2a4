package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/timmy/tmimport/internal/domain"
)

// ObjectStore writes artifacts to an object storage bucket.
type ObjectStore struct {
	objects ObjectStorage
	prefix  string
}

// NewObjectStore wraps objects; every key is placed below prefix.
func NewObjectStore(objects ObjectStorage, prefix string) *ObjectStore {
	return &ObjectStore{objects: objects, prefix: prefix}
}

func (s *ObjectStore) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// Write encodes doc in memory, removes any object already stored at key and uploads the new body.
func (s *ObjectStore) Write(ctx context.Context, key string, doc Encoder) (string, error) {
	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		return "", fmt.Errorf("%w: failed to encode %s: %v", domain.ErrStorage, key, err)
	}

	objectKey := s.objectKey(key)
	exists, err := s.objects.Exists(ctx, objectKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if exists {
		if err := s.objects.Delete(ctx, objectKey); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
		}
	}

	if err := s.objects.Upload(ctx, objectKey, bytes.NewReader(buf.Bytes()), int64(buf.Len()), ContentTypeXML); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return s.objects.GetURL(objectKey), nil
}

// Remove deletes the object at key.
func (s *ObjectStore) Remove(ctx context.Context, key string) error {
	if err := s.objects.Delete(ctx, s.objectKey(key)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

// Exists checks if an object exists at key.
func (s *ObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := s.objects.Exists(ctx, s.objectKey(key))
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return ok, nil
}
