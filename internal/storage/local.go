package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/timmy/tmimport/internal/domain"
)

// LocalStore writes artifacts below a root directory on the local filesystem.
type LocalStore struct {
	root string
}

// NewLocalStore creates a LocalStore rooted at root.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Path returns the filesystem path of key.
// Returns:
//   - string: cleaned path below the store root.
//   - error: wraps domain.ErrStorage if key resolves to the root itself or outside it.
func (s *LocalStore) Path(key string) (string, error) {
	root := filepath.Clean(s.root)
	p := filepath.Join(root, filepath.FromSlash(key))
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: key %q escapes artifact root", domain.ErrStorage, key)
	}
	return p, nil
}

// Write replaces the file at key with the encoded document.
// Parameters:
//   - ctx: checked before any filesystem work starts.
//   - key: slash separated artifact key, e.g. src/textmaster/product/D1.xml.
//   - doc: document to encode.
// Returns:
//   - string: absolute or root-relative path of the written file.
//   - error: wraps domain.ErrStorage; no partial file is left behind.
func (s *LocalStore) Write(ctx context.Context, key string, doc Encoder) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.Path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("%w: failed to create directory for %s: %v", domain.ErrStorage, key, err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: failed to remove previous %s: %v", domain.ErrStorage, key, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create %s: %v", domain.ErrStorage, key, err)
	}

	if err := doc.Encode(f); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("%w: failed to write %s: %v", domain.ErrStorage, key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: failed to close %s: %v", domain.ErrStorage, key, err)
	}

	return path, nil
}

// Remove deletes the file at key.
func (s *LocalStore) Remove(ctx context.Context, key string) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: failed to remove %s: %v", domain.ErrStorage, key, err)
	}
	return nil
}

// Exists checks if the file at key exists.
func (s *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	path, err := s.Path(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%w: failed to stat %s: %v", domain.ErrStorage, key, err)
}
