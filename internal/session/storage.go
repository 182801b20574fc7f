package session

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Storage is the injected key-value persistence capability. Keys are opaque
// strings; values are serialized blobs. Implementations must be safe for
// single-threaded use only — the store never locks.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// FileStorage persists keys into one JSON file under the user cache dir.
//
//	macOS:   ~/Library/Caches/solterm/session.json
//	Linux:   ~/.cache/solterm/session.json
//	Windows: %LocalAppData%\solterm\session.json
type FileStorage struct {
	path string
}

// DefaultFileStorage returns file storage at the per-user cache location.
func DefaultFileStorage() *FileStorage {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return &FileStorage{path: filepath.Join(dir, "solterm", "session.json")}
}

// NewFileStorage returns file storage at an explicit path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) load() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return make(map[string]string)
	}
	return m
}

func (s *FileStorage) save(m map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStorage) Get(key string) (string, bool) {
	m := s.load()
	v, ok := m[key]
	return v, ok
}

func (s *FileStorage) Set(key, value string) error {
	m := s.load()
	m[key] = value
	return s.save(m)
}

func (s *FileStorage) Remove(key string) error {
	m := s.load()
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return s.save(m)
}

// MemStorage is an in-memory Storage for tests.
type MemStorage struct {
	data map[string]string
	// FailWrites makes every Set return an error, for exercising the
	// swallow-on-persist-failure path.
	FailWrites bool
}

// NewMemStorage creates an empty in-memory storage.
func NewMemStorage() *MemStorage {
	return &MemStorage{data: make(map[string]string)}
}

func (s *MemStorage) Get(key string) (string, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *MemStorage) Set(key, value string) error {
	if s.FailWrites {
		return errQuotaExceeded
	}
	s.data[key] = value
	return nil
}

func (s *MemStorage) Remove(key string) error {
	delete(s.data, key)
	return nil
}
