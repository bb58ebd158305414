package scratch

import (
	"fmt"
	"io"
	"os"

	"whisper-audio-service/domain/storage"
)

// Store implements storage.ArtifactStore on a local scratch directory.
// Files in the directory are the only state; there is no index.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir, creating it if necessary.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the scratch directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Path resolves a filename inside the scratch directory.
func (s *Store) Path(filename string) (string, error) {
	return storage.SafeJoin(s.dir, filename)
}

// Exists reports whether the artifact is present.
func (s *Store) Exists(filename string) bool {
	path, err := s.Path(filename)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Size returns the artifact's byte size.
func (s *Store) Size(filename string) (int64, error) {
	path, err := s.Path(filename)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", storage.ErrNotFound, filename)
		}
		return 0, fmt.Errorf("failed to stat %s: %w", filename, err)
	}
	return info.Size(), nil
}

// OpenRead opens the artifact for streaming.
func (s *Store) OpenRead(filename string) (io.ReadCloser, error) {
	path, err := s.Path(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, filename)
		}
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	return f, nil
}

// Delete removes the artifact. A missing file is success so the
// delivery endpoint and the sweeper can both attempt deletion.
func (s *Store) Delete(filename string) error {
	path, err := s.Path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", filename, err)
	}
	return nil
}

// List enumerates all artifacts currently in the store.
func (s *Store) List() ([]storage.ArtifactInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list scratch directory: %w", err)
	}

	artifacts := make([]storage.ArtifactInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Entry disappeared between ReadDir and Info; skip it.
			continue
		}
		artifacts = append(artifacts, storage.ArtifactInfo{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return artifacts, nil
}

// Ensure Store implements storage.ArtifactStore
var _ storage.ArtifactStore = (*Store)(nil)
