package wallet

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Store is the single-slot persistence backend for the device wallet. One
// slot per store, fixed key: writes replace the previous payload wholesale.
type Store interface {
	Read(ctx context.Context) ([]byte, bool, error)
	Write(ctx context.Context, payload []byte) error
	Delete(ctx context.Context) error
}

// FileStore persists the wallet slot as a single file on the local disk.
type FileStore struct {
	path string
}

// NewFileStore builds a file-backed wallet store rooted at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Read(_ context.Context) ([]byte, bool, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (s *FileStore) Write(_ context.Context, payload []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, payload, 0o600)
}

func (s *FileStore) Delete(_ context.Context) error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryStore keeps the wallet slot in process memory. Used in tests and on
// platforms without persistent local storage configured.
type MemoryStore struct {
	mu      sync.Mutex
	payload []byte
	set     bool
}

// NewMemoryStore builds an empty in-memory wallet store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Read(_ context.Context) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return nil, false, nil
	}
	return append([]byte(nil), s.payload...), true, nil
}

func (s *MemoryStore) Write(_ context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = append([]byte(nil), payload...)
	s.set = true
	return nil
}

func (s *MemoryStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = nil
	s.set = false
	return nil
}
