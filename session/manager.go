package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dogseek/dogseek-go/apierr"
	"github.com/dogseek/dogseek-go/session/credstore"
)

// Backend endpoints the manager talks to.
const (
	loginPath   = "/auth/login"
	refreshPath = "/auth/refresh"
	logoutPath  = "/auth/logout"
	profilePath = "/api/mypage/me"
)

const (
	defaultTimeout = 10 * time.Second

	// expirySkew is subtracted from a token's exp claim so a token about to
	// expire is not trusted during bootstrap.
	expirySkew = 30 * time.Second
)

// Manager is the single source of truth for "who is logged in, with what
// credential". It owns the credential store; every other component reads
// authentication state through Current().
type Manager struct {
	mu      sync.RWMutex
	current Session

	store         credstore.Store
	baseURL       string
	httpClient    *http.Client
	credentialTTL time.Duration
	nowTime       func() time.Time
	logger        zerolog.Logger
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithHTTPClient replaces the manager's HTTP client. The client should carry a
// cookie jar - the refresh credential is an httpOnly cookie the backend sets
// on login and expects back on refresh and logout.
func WithHTTPClient(client *http.Client) ManagerOption {
	return func(m *Manager) {
		m.httpClient = client
	}
}

// WithTimeout sets the network timeout for login/refresh/logout calls.
func WithTimeout(timeout time.Duration) ManagerOption {
	return func(m *Manager) {
		m.httpClient.Timeout = timeout
	}
}

// WithCredentialTTL sets how long stored credentials live.
func WithCredentialTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.credentialTTL = ttl
	}
}

// NewManager initializes a Manager against the backend at baseURL, persisting
// credentials in store. Optional configuration can be provided via options.
func NewManager(baseURL string, store credstore.Store, options ...ManagerOption) (*Manager, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[NewManager] baseURL is required")
	}
	if store == nil {
		return nil, errors.New("[NewManager] credential store is required")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "[NewManager] cookiejar.New")
	}

	manager := &Manager{
		store:   store,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: defaultTimeout,
		},
		credentialTTL: credstore.DefaultTTL,
		nowTime:       time.Now,
		logger:        zerolog.Nop(),
	}

	for _, opt := range options {
		opt(manager)
	}

	return manager, nil
}

// Current returns a snapshot of the session. The snapshot does not alias
// manager state; mutating it has no effect.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := m.current
	if m.current.User != nil {
		user := *m.current.User
		snapshot.User = &user
	}
	return snapshot
}

// Bootstrap restores the session at process start. Stored token+user hydrate
// the session without touching the network. Failing that, a silent refresh is
// attempted only when the autoLogin flag is set; any failure there degrades to
// a clean logged-out state rather than an error.
func (m *Manager) Bootstrap(ctx context.Context) Session {
	token, hasToken := m.store.Get(credstore.KeyToken)
	userJSON, hasUser := m.store.Get(credstore.KeyUser)

	// user is only trusted when token is also present
	if hasToken && hasUser {
		var user UserSummary
		if err := json.Unmarshal([]byte(userJSON), &user); err == nil && !m.tokenExpired(token) {
			m.setAuthenticated(token, &user)
			m.logger.Debug().Str("userid", user.UserID).Msg("session restored from credential store")
			return m.Current()
		}
	}

	if flag, ok := m.store.Get(credstore.KeyAutoLogin); !ok || flag != "true" {
		return m.Current()
	}

	if _, err := m.Refresh(ctx); err != nil {
		m.logger.Debug().Err(err).Msg("auto-login refresh failed")
		m.Logout()
	}
	return m.Current()
}

// Login exchanges credentials for a session. On failure no state is written
// and the session stays unauthenticated.
func (m *Manager) Login(ctx context.Context, creds Credentials) (Session, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return Session{}, errors.Wrap(err, "[Manager.Login] marshal credentials")
	}

	resp, err := m.post(ctx, loginPath, bytes.NewReader(body))
	if err != nil {
		return Session{}, apierr.Wrapf(apierr.ErrNetwork, "[Manager.Login] %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return Session{}, errors.Wrap(apierr.ErrInvalidCredentials, "[Manager.Login]")
	}

	var payload struct {
		AccessToken string       `json:"accessToken"`
		User        *UserSummary `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Session{}, errors.Wrap(err, "[Manager.Login] decode response")
	}
	if payload.AccessToken == "" || payload.User == nil {
		return Session{}, errors.New("[Manager.Login] login response missing accessToken or user")
	}

	if err := m.persist(payload.AccessToken, payload.User); err != nil {
		_ = m.store.Clear()
		return Session{}, errors.Wrap(err, "[Manager.Login] persist credentials")
	}
	if creds.AutoLogin {
		if err := m.store.Set(credstore.KeyAutoLogin, "true", m.credentialTTL); err != nil {
			m.logger.Warn().Err(err).Msg("failed to persist autoLogin flag")
		}
	}

	m.setAuthenticated(payload.AccessToken, payload.User)
	m.logger.Info().Str("userid", payload.User.UserID).Msg("login succeeded")
	return m.Current(), nil
}

// Logout clears the credential store and the in-memory session, then notifies
// the backend on a detached goroutine. Notification failures are discarded;
// logging out locally never blocks on the network. Safe to call repeatedly.
func (m *Manager) Logout() {
	m.clearSession()
	if err := m.store.Clear(); err != nil {
		m.logger.Warn().Err(err).Msg("failed to clear credential store")
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.httpClient.Timeout)
		defer cancel()

		resp, err := m.post(ctx, logoutPath, nil)
		if err != nil {
			m.logger.Debug().Err(err).Msg("logout notification failed")
			return
		}
		drain(resp.Body)
		_ = resp.Body.Close()
	}()
}

// Refresh exchanges the ambient refresh cookie for a new access token, then
// re-fetches the profile so the stored identity matches the new credential.
// The caller decides whether a failure means logout.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	resp, err := m.post(ctx, refreshPath, nil)
	if err != nil {
		return "", apierr.Wrapf(apierr.ErrNetwork, "[Manager.Refresh] %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return "", errors.Wrap(apierr.ErrRefreshExpired, "[Manager.Refresh]")
	}

	var payload struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", errors.Wrap(err, "[Manager.Refresh] decode response")
	}
	if payload.AccessToken == "" {
		return "", errors.Wrap(apierr.ErrRefreshExpired, "[Manager.Refresh] response missing accessToken")
	}

	user, err := m.fetchProfile(ctx, payload.AccessToken)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.Refresh] fetch profile")
	}

	if err := m.persist(payload.AccessToken, user); err != nil {
		return "", errors.Wrap(err, "[Manager.Refresh] persist credentials")
	}

	m.setAuthenticated(payload.AccessToken, user)
	m.logger.Debug().Str("userid", user.UserID).Msg("access token refreshed")
	return payload.AccessToken, nil
}

// AttachCredential adds the authorization header when a token is present and
// leaves the request untouched otherwise.
func (m *Manager) AttachCredential(req *http.Request) {
	if token := m.Current().AccessToken; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (m *Manager) fetchProfile(ctx context.Context, token string) (*UserSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+profilePath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, apierr.Wrapf(apierr.ErrNetwork, "%v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp.Body)
		return nil, apierr.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return nil, errors.Errorf("profile fetch returned %d", resp.StatusCode)
	}

	var user UserSummary
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, errors.Wrap(err, "decode profile")
	}
	return &user, nil
}

func (m *Manager) post(ctx context.Context, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return m.httpClient.Do(req)
}

func (m *Manager) persist(token string, user *UserSummary) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := m.store.Set(credstore.KeyToken, token, m.tokenTTL(token)); err != nil {
		return err
	}
	return m.store.Set(credstore.KeyUser, string(userJSON), m.credentialTTL)
}

// tokenTTL bounds the stored token's lifetime by its exp claim, so a token the
// backend issued with a short expiry is not kept around for the full day.
func (m *Manager) tokenTTL(token string) time.Duration {
	exp, ok := tokenExpiry(token)
	if !ok {
		return m.credentialTTL
	}
	ttl := exp.Sub(m.nowTime())
	if ttl <= 0 || ttl > m.credentialTTL {
		return m.credentialTTL
	}
	return ttl
}

func (m *Manager) tokenExpired(token string) bool {
	exp, ok := tokenExpiry(token)
	if !ok {
		return false
	}
	return m.nowTime().After(exp.Add(-expirySkew))
}

// tokenExpiry reads the exp claim without verifying the signature - the
// client has no key material and treats tokens as opaque otherwise.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (m *Manager) setAuthenticated(token string, user *UserSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = Session{
		Authenticated: true,
		AccessToken:   token,
		User:          user,
	}
}

func (m *Manager) clearSession() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = Session{}
}

func drain(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 32*1024))
}
