package dogseek_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	dogseek "github.com/dogseek/dogseek-go"
	"github.com/dogseek/dogseek-go/session"
	"github.com/dogseek/dogseek-go/session/credstore"
)

// registryFixture fakes enough of the registry backend to drive the full
// login, browse, expire, refresh, retry sequence through the assembled SDK.
type registryFixture struct {
	server *httptest.Server

	mu         sync.Mutex
	validToken string

	refreshCalls atomic.Int32
	noticeCalls  atomic.Int32
}

func newRegistryFixture(t *testing.T) *registryFixture {
	t.Helper()

	f := &registryFixture{validToken: "token-1"}
	mux := http.NewServeMux()

	userJSON := map[string]any{"id": 1, "userid": "dogperson", "nickName": "보리맘", "role": "USER"}

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			UserID   string `json:"userid"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "password123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "rt-1", HttpOnly: true})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"accessToken": f.currentToken(), "user": userJSON})
	})

	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		if _, err := r.Cookie("refresh_token"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		f.validToken = "token-2"
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": "token-2"})
	})

	mux.HandleFunc("/api/mypage/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(userJSON)
	})

	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {})

	mux.HandleFunc("/api/notices", func(w http.ResponseWriter, r *http.Request) {
		f.noticeCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+f.currentToken() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 1, "title": "입양 공고"}]`))
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *registryFixture) currentToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validToken
}

func (f *registryFixture) expireToken() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validToken = "retired"
}

func TestClientLoginBrowseRefreshRetry(t *testing.T) {
	f := newRegistryFixture(t)
	store := credstore.NewMemoryStore()

	client, err := dogseek.New(f.server.URL, dogseek.WithCredentialStore(store))
	require.NoError(t, err)

	sess, err := client.Sessions.Login(context.Background(), session.Credentials{
		UserID:   "dogperson",
		Password: "password123",
	})
	require.NoError(t, err)
	require.True(t, sess.Authenticated)
	require.Equal(t, "보리맘", sess.User.Nickname)

	list, err := client.Notices.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Zero(t, f.refreshCalls.Load())

	// backend retires the access token; next call hits a 401, refreshes
	// silently, and retries without surfacing anything to the caller
	f.expireToken()
	list, err = client.Notices.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.Equal(t, int32(1), f.refreshCalls.Load())
	require.Equal(t, "token-2", client.Sessions.Current().AccessToken)

	token, ok := store.Get(credstore.KeyToken)
	require.True(t, ok)
	require.Equal(t, "token-2", token)
}

func TestClientBootstrapAcrossRestart(t *testing.T) {
	f := newRegistryFixture(t)
	store := credstore.NewMemoryStore()

	first, err := dogseek.New(f.server.URL, dogseek.WithCredentialStore(store))
	require.NoError(t, err)
	_, err = first.Sessions.Login(context.Background(), session.Credentials{
		UserID:   "dogperson",
		Password: "password123",
	})
	require.NoError(t, err)

	// a second client over the same store comes up already authenticated
	second, err := dogseek.New(f.server.URL, dogseek.WithCredentialStore(store))
	require.NoError(t, err)
	sess := second.Sessions.Bootstrap(context.Background())

	require.True(t, sess.Authenticated)
	require.Equal(t, "dogperson", sess.User.UserID)
}

func TestClientRequiresBaseURL(t *testing.T) {
	_, err := dogseek.New("")
	require.Error(t, err)
}
