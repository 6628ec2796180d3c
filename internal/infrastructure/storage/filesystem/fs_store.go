// Package filesystem implements the artifact store on the local filesystem.
// Keys map to paths under a root directory; writes go through a temp file
// and rename so readers never observe a partial artifact.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openpbrl/openpbrl/internal/infrastructure/storage"
	"github.com/openpbrl/openpbrl/pkg/errors"
)

// fsStore stores artifacts as files under a root directory
type fsStore struct {
	root string
}

// NewStore creates a filesystem-backed artifact store rooted at root
func NewStore(root string) (storage.ArtifactStore, error) {
	if root == "" {
		return nil, errors.NewValidationError(errors.CodeInvalidParameter, "storage root cannot be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.WrapInfrastructureError(err, errors.ErrArtifactPutFailed.Code,
			"failed to create storage root")
	}
	return &fsStore{root: root}, nil
}

// path maps a key to a file path under the root, rejecting escapes
func (s *fsStore) path(key string) (string, error) {
	if key == "" {
		return "", errors.NewValidationError(errors.CodeInvalidParameter, "artifact key cannot be empty")
	}
	clean := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(clean, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", errors.NewValidationError(errors.CodeInvalidParameter,
			fmt.Sprintf("artifact key escapes storage root: %s", key))
	}
	return clean, nil
}

// Get returns the payload stored at key
func (s *fsStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FromCodef(errors.ErrArtifactNotFound, "%s", key)
		}
		return nil, errors.FromCode(errors.ErrArtifactGetFailed).WithCause(err).WithDetails("key", key)
	}
	return data, nil
}

// Put stores the payload at key atomically (temp file + rename)
func (s *fsStore) Put(ctx context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.FromCode(errors.ErrArtifactPutFailed).WithCause(err).WithDetails("key", key)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return errors.FromCode(errors.ErrArtifactPutFailed).WithCause(err).WithDetails("key", key)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.FromCode(errors.ErrArtifactPutFailed).WithCause(err).WithDetails("key", key)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.FromCode(errors.ErrArtifactPutFailed).WithCause(err).WithDetails("key", key)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.FromCode(errors.ErrArtifactPutFailed).WithCause(err).WithDetails("key", key)
	}
	return nil
}

// Exists reports whether an artifact is stored at key
func (s *fsStore) Exists(ctx context.Context, key string) (bool, error) {
	path, err := s.path(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.FromCode(errors.ErrArtifactGetFailed).WithCause(err).WithDetails("key", key)
	}
	return true, nil
}

// Delete removes the artifact at key
func (s *fsStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.FromCode(errors.ErrArtifactPutFailed).WithCause(err).WithDetails("key", key)
	}
	return nil
}

// Ping checks that the root directory is accessible
func (s *fsStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.root); err != nil {
		return errors.FromCode(errors.ErrArtifactGetFailed).WithCause(err)
	}
	return nil
}

// Close releases nothing for a filesystem store
func (s *fsStore) Close() error {
	return nil
}
