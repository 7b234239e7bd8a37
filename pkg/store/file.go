package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	rerrors "github.com/matzehuels/rundown/pkg/errors"
)

// FileStore keeps one JSON file per key in a directory. Writes go to a
// temporary file that is renamed over the target, so a crash never leaves a
// half-written document behind.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file store rooted at dir. The directory will be
// created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := rerrors.ValidatePath(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageErr(err, "create store dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the documents.
func (s *FileStore) Dir() string { return s.dir }

// Get reads the document stored under key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr(err, "read %s", key)
	}
	return data, true, nil
}

// Set atomically replaces the document stored under key.
func (s *FileStore) Set(ctx context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := atomicWriteFile(s.dir, key+".*.tmp", path, data, 0o644); err != nil {
		return storageErr(err, "write %s", key)
	}
	return nil
}

// Delete removes the document stored under key.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return storageErr(err, "remove %s", key)
	}
	return nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

// Backend reports [BackendFile].
func (s *FileStore) Backend() Backend { return BackendFile }

func (s *FileStore) path(key string) (string, error) {
	if err := rerrors.ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

var _ Store = (*FileStore)(nil)
