package credstore

import (
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of Store. It is the cookie
// analogue for processes that do not persist credentials across restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	nowTime func() time.Time
}

// MemoryStoreOption defines a function type to modify the MemoryStore instance.
type MemoryStoreOption func(*MemoryStore)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.nowTime = nowFunc
	}
}

// NewMemoryStore creates a new in-memory credential store.
func NewMemoryStore(options ...MemoryStoreOption) *MemoryStore {
	store := &MemoryStore{
		entries: make(map[string]entry),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(store)
	}
	return store
}

func (s *MemoryStore) Set(key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		value:     value,
		expiresAt: s.nowTime().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return "", false
	}
	if s.nowTime().After(e.expiresAt) {
		_ = s.Delete(key)
		return "", false
	}
	return e.value, true
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]entry)
	return nil
}
