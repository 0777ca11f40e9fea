package credstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var _ Store = (*FileStore)(nil)

type fileEntry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileStore persists credentials as a JSON file so a session survives process
// restarts, the way browser cookies survive page loads. The file is written
// with 0600 permissions; a missing or unreadable file is treated as empty.
type FileStore struct {
	mu      sync.Mutex
	path    string
	nowTime func() time.Time
}

// FileStoreOption defines a function type to modify the FileStore instance.
type FileStoreOption func(*FileStore)

// WithFileNowTime sets the now time function (primarily for testing)
func WithFileNowTime(nowFunc func() time.Time) FileStoreOption {
	return func(s *FileStore) {
		s.nowTime = nowFunc
	}
}

// NewFileStore creates a credential store backed by the file at path.
func NewFileStore(path string, options ...FileStoreOption) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("[NewFileStore] path is required")
	}

	store := &FileStore{
		path:    path,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(store)
	}
	return store, nil
}

func (s *FileStore) Set(key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	entries[key] = fileEntry{
		Value:     value,
		ExpiresAt: s.nowTime().Add(ttl),
	}
	return s.save(entries)
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.load()[key]
	if !ok {
		return "", false
	}
	if s.nowTime().After(e.ExpiresAt) {
		return "", false
	}
	return e.Value, true
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return s.save(entries)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// load reads the backing file. Corrupt or missing files yield an empty map
// rather than an error - stale credential caches should never wedge startup.
func (s *FileStore) load() map[string]fileEntry {
	entries := make(map[string]fileEntry)

	b, err := os.ReadFile(s.path)
	if err != nil {
		return entries
	}
	if err := json.Unmarshal(b, &entries); err != nil {
		return make(map[string]fileEntry)
	}
	return entries
}

func (s *FileStore) save(entries map[string]fileEntry) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}
