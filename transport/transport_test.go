package transport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dogseek/dogseek-go/apierr"
	"github.com/dogseek/dogseek-go/session"
	"github.com/dogseek/dogseek-go/session/credstore"
	"github.com/dogseek/dogseek-go/transport"
)

const (
	staleToken = "stale-token"
	freshToken = "fresh-token"
)

// authFixture is a fake backend whose protected endpoint only accepts the
// token it currently considers valid.
type authFixture struct {
	server *httptest.Server

	mu         sync.Mutex
	validToken string

	protectedCalls atomic.Int32
	refreshCalls   atomic.Int32
	logoutCalls    atomic.Int32

	rejectRefresh bool
	refreshToken  string // token handed out by /auth/refresh

	receivedBodies   [][]byte
	receivedRequests []http.Header
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{validToken: staleToken, refreshToken: freshToken}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/notices", func(w http.ResponseWriter, r *http.Request) {
		f.protectedCalls.Add(1)
		body, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.receivedBodies = append(f.receivedBodies, body)
		f.receivedRequests = append(f.receivedRequests, r.Header.Clone())
		valid := "Bearer " + f.validToken
		f.mu.Unlock()

		if r.Header.Get("Authorization") != valid {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		if f.rejectRefresh {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		f.validToken = f.refreshToken
		token := f.refreshToken
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": token})
	})

	mux.HandleFunc("/api/mypage/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 1, "userid": "dogperson", "nickName": "집사", "role": "USER"}`))
	})

	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logoutCalls.Add(1)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

// newClient returns an http.Client routed through the auth transport, with the
// manager seeded from stored credentials holding token.
func newClient(t *testing.T, f *authFixture, token string, options ...transport.Option) (*http.Client, *session.Manager) {
	t.Helper()

	store := credstore.NewMemoryStore()
	require.NoError(t, store.Set(credstore.KeyToken, token, 0))
	require.NoError(t, store.Set(credstore.KeyUser, `{"id":"1","userid":"dogperson","nickname":"집사","role":"USER"}`, 0))

	manager, err := session.NewManager(f.server.URL, store)
	require.NoError(t, err)
	sess := manager.Bootstrap(context.Background())
	require.True(t, sess.Authenticated)

	rt, err := transport.New(manager, options...)
	require.NoError(t, err)
	return &http.Client{Transport: rt}, manager
}

func (f *authFixture) get(t *testing.T, client *http.Client, path string) *http.Response {
	t.Helper()

	resp, err := client.Get(f.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRoundTripAttachesCredentialAndRequestID(t *testing.T) {
	f := newAuthFixture(t)
	client, _ := newClient(t, f, staleToken)

	resp := f.get(t, client, "/api/notices")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(1), f.protectedCalls.Load())
	require.Zero(t, f.refreshCalls.Load())

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Equal(t, "Bearer "+staleToken, f.receivedRequests[0].Get("Authorization"))
	require.NotEmpty(t, f.receivedRequests[0].Get("X-Request-ID"))
}

func TestUnauthorizedTriggersRefreshAndSingleRetry(t *testing.T) {
	f := newAuthFixture(t)
	client, manager := newClient(t, f, "revoked-token")

	resp := f.get(t, client, "/api/notices")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, int32(1), f.refreshCalls.Load())
	require.Equal(t, int32(2), f.protectedCalls.Load())
	require.Equal(t, freshToken, manager.Current().AccessToken)

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Equal(t, "Bearer "+freshToken, f.receivedRequests[1].Get("Authorization"))
	require.Equal(t, f.receivedRequests[0].Get("X-Request-ID"), f.receivedRequests[1].Get("X-Request-ID"),
		"the retry reuses the first attempt's request id")
}

// A 401 on the retried request is returned as-is. One 401, one refresh, one
// resend, never a loop.
func TestSecondUnauthorizedIsNotRetried(t *testing.T) {
	f := newAuthFixture(t)
	f.refreshToken = "still-revoked"
	client, _ := newClient(t, f, "revoked-token")

	resp := f.get(t, client, "/api/notices")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	require.Equal(t, int32(1), f.refreshCalls.Load())
	require.Equal(t, int32(2), f.protectedCalls.Load())
}

func TestRefreshFailureForcesLogout(t *testing.T) {
	f := newAuthFixture(t)
	f.rejectRefresh = true

	var hookCalls atomic.Int32
	client, manager := newClient(t, f, "revoked-token",
		transport.WithOnAuthExpired(func() { hookCalls.Add(1) }))

	_, err := client.Get(f.server.URL + "/api/notices")
	require.ErrorIs(t, err, apierr.ErrRefreshExpired)

	require.Equal(t, int32(1), f.refreshCalls.Load())
	require.Equal(t, int32(1), f.protectedCalls.Load())
	require.Equal(t, int32(1), hookCalls.Load())
	require.False(t, manager.Current().Authenticated)
}

func TestCanceledRequestDoesNotRefresh(t *testing.T) {
	f := newAuthFixture(t)
	client, _ := newClient(t, f, "revoked-token")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.server.URL+"/api/notices", nil)
	require.NoError(t, err)

	_, err = client.Do(req) //nolint:bodyclose // the request never completes
	require.Error(t, err)
	require.Zero(t, f.refreshCalls.Load())
}

func TestRetryReplaysRequestBody(t *testing.T) {
	f := newAuthFixture(t)
	client, _ := newClient(t, f, "revoked-token")

	payload := []byte(`{"title":"잃어버린 강아지를 찾습니다"}`)
	resp, err := client.Post(f.server.URL+"/api/notices", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.receivedBodies, 2)
	require.Equal(t, payload, f.receivedBodies[0])
	require.Equal(t, payload, f.receivedBodies[1], "the retried request carries the same body")
}

func TestCallerRequestIsNotMutated(t *testing.T) {
	f := newAuthFixture(t)
	client, _ := newClient(t, f, staleToken)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/api/notices", nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Empty(t, req.Header.Get("Authorization"))
	require.Empty(t, req.Header.Get("X-Request-ID"))
}

func TestNewRequiresSessionManager(t *testing.T) {
	_, err := transport.New(nil)
	require.Error(t, err)
}
