package credstore

import "time"

// Well-known entry keys. The store is a scoped key space; these are the only
// keys the session manager writes.
const (
	KeyToken     = "token"
	KeyUser      = "user"
	KeyAutoLogin = "autoLogin"
)

// DefaultTTL is how long persisted credentials live unless the caller says otherwise.
const DefaultTTL = 24 * time.Hour

// Store defines the interface for persisted credential storage.
// Every entry carries its own expiry; an expired entry behaves as absent.
// The store is owned exclusively by the session manager - other components
// read authentication state through the manager's in-memory snapshot.
type Store interface {
	// Set writes an entry that expires after ttl. ttl <= 0 means DefaultTTL.
	Set(key, value string, ttl time.Duration) error

	// Get returns the entry value and whether a live entry exists.
	Get(key string) (string, bool)

	// Delete removes an entry. Deleting a missing entry is not an error.
	Delete(key string) error

	// Clear removes every entry.
	Clear() error
}
