package credstore_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dogseek/dogseek-go/session/credstore"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	store := credstore.NewMemoryStore()

	require.NoError(t, store.Set(credstore.KeyToken, "tok", 0))

	value, ok := store.Get(credstore.KeyToken)
	require.True(t, ok)
	require.Equal(t, "tok", value)

	require.NoError(t, store.Delete(credstore.KeyToken))
	_, ok = store.Get(credstore.KeyToken)
	require.False(t, ok)
}

func TestMemoryStoreEntriesExpire(t *testing.T) {
	now := time.Now()
	store := credstore.NewMemoryStore(credstore.WithNowTime(func() time.Time { return now }))

	require.NoError(t, store.Set(credstore.KeyToken, "tok", time.Hour))

	_, ok := store.Get(credstore.KeyToken)
	require.True(t, ok)

	now = now.Add(time.Hour + time.Second)
	_, ok = store.Get(credstore.KeyToken)
	require.False(t, ok, "entry past its ttl must not be returned")
}

func TestMemoryStoreZeroTTLUsesDefault(t *testing.T) {
	now := time.Now()
	store := credstore.NewMemoryStore(credstore.WithNowTime(func() time.Time { return now }))

	require.NoError(t, store.Set(credstore.KeyUser, "{}", 0))

	now = now.Add(23 * time.Hour)
	_, ok := store.Get(credstore.KeyUser)
	require.True(t, ok)

	now = now.Add(2 * time.Hour)
	_, ok = store.Get(credstore.KeyUser)
	require.False(t, ok)
}

func TestMemoryStoreClear(t *testing.T) {
	store := credstore.NewMemoryStore()
	require.NoError(t, store.Set(credstore.KeyToken, "tok", 0))
	require.NoError(t, store.Set(credstore.KeyUser, "{}", 0))

	require.NoError(t, store.Clear())

	_, ok := store.Get(credstore.KeyToken)
	require.False(t, ok)
	_, ok = store.Get(credstore.KeyUser)
	require.False(t, ok)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "dogseek.json")

	store, err := credstore.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(credstore.KeyToken, "tok", time.Hour))
	require.NoError(t, store.Set(credstore.KeyAutoLogin, "true", time.Hour))

	// a second store over the same path sees the persisted entries
	reopened, err := credstore.NewFileStore(path)
	require.NoError(t, err)

	value, ok := reopened.Get(credstore.KeyToken)
	require.True(t, ok)
	require.Equal(t, "tok", value)
	value, ok = reopened.Get(credstore.KeyAutoLogin)
	require.True(t, ok)
	require.Equal(t, "true", value)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreEntriesExpire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dogseek.json")
	now := time.Now()

	store, err := credstore.NewFileStore(path, credstore.WithFileNowTime(func() time.Time { return now }))
	require.NoError(t, err)
	require.NoError(t, store.Set(credstore.KeyToken, "tok", time.Minute))

	now = now.Add(2 * time.Minute)
	_, ok := store.Get(credstore.KeyToken)
	require.False(t, ok)
}

func TestFileStoreToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dogseek.json")
	require.NoError(t, os.WriteFile(path, []byte("not json{"), 0o600))

	store, err := credstore.NewFileStore(path)
	require.NoError(t, err)

	_, ok := store.Get(credstore.KeyToken)
	require.False(t, ok)

	// writing through the corrupt file replaces it
	require.NoError(t, store.Set(credstore.KeyToken, "tok", time.Hour))
	value, ok := store.Get(credstore.KeyToken)
	require.True(t, ok)
	require.Equal(t, "tok", value)
}

func TestFileStoreClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dogseek.json")

	store, err := credstore.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(credstore.KeyToken, "tok", time.Hour))

	require.NoError(t, store.Clear())
	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, store.Clear(), "clearing an already-empty store is fine")
}

func TestFileStoreRequiresPath(t *testing.T) {
	_, err := credstore.NewFileStore("")
	require.Error(t, err)
}
