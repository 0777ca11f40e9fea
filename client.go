// Package dogseek is the client SDK for the lost/found and adoptable-dog
// registry service. It bundles the session lifecycle (login, silent refresh,
// logout), the retry-on-401 request policy, and typed clients for each of the
// backend's resources.
package dogseek

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dogseek/dogseek-go/account"
	"github.com/dogseek/dogseek-go/admin"
	"github.com/dogseek/dogseek-go/dogs"
	"github.com/dogseek/dogseek-go/inquiries"
	"github.com/dogseek/dogseek-go/internal/config"
	"github.com/dogseek/dogseek-go/internal/rest"
	"github.com/dogseek/dogseek-go/lostpets"
	"github.com/dogseek/dogseek-go/notices"
	"github.com/dogseek/dogseek-go/session"
	"github.com/dogseek/dogseek-go/session/credstore"
	"github.com/dogseek/dogseek-go/shelters"
	"github.com/dogseek/dogseek-go/transport"
)

// Client is the SDK entry point. Construct it once and share it; all state
// lives in the session manager, which is passed explicitly to everything
// that needs it rather than through a global.
type Client struct {
	Sessions  *session.Manager
	Inquiries *inquiries.Client
	Notices   *notices.Client
	LostPets  *lostpets.Client
	Dogs      *dogs.Client
	Shelters  *shelters.Client
	Account   *account.Client
	Admin     *admin.Client

	// HTTP is the client carrying the auth transport, for callers that need
	// an endpoint the typed clients do not cover.
	HTTP *http.Client
}

type settings struct {
	store         credstore.Store
	logger        zerolog.Logger
	timeout       time.Duration
	credentialTTL time.Duration
	onAuthExpired func()
}

// Option defines a function type to modify the Client settings.
type Option func(*settings)

// WithCredentialStore replaces the default in-memory credential store.
func WithCredentialStore(store credstore.Store) Option {
	return func(s *settings) {
		s.store = store
	}
}

// WithLogger sets the logger shared by the session manager, the transport
// and the resource clients. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithTimeout sets the network timeout for every request.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.timeout = timeout
	}
}

// WithCredentialTTL sets how long persisted credentials live. Defaults to
// one day.
func WithCredentialTTL(ttl time.Duration) Option {
	return func(s *settings) {
		s.credentialTTL = ttl
	}
}

// WithOnAuthExpired sets the hook invoked when a refresh fails after a 401
// and the client is forcibly logged out - the place to send the user to the
// login page.
func WithOnAuthExpired(hook func()) Option {
	return func(s *settings) {
		s.onAuthExpired = hook
	}
}

// New creates a fully wired client against the backend at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	s := settings{
		store:         credstore.NewMemoryStore(),
		logger:        zerolog.Nop(),
		timeout:       10 * time.Second,
		credentialTTL: credstore.DefaultTTL,
	}
	for _, opt := range options {
		opt(&s)
	}

	sessions, err := session.NewManager(baseURL, s.store,
		session.WithLogger(s.logger),
		session.WithTimeout(s.timeout),
		session.WithCredentialTTL(s.credentialTTL),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[dogseek.New] session manager")
	}

	authTransport, err := transport.New(sessions,
		transport.WithLogger(s.logger),
		transport.WithOnAuthExpired(s.onAuthExpired),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[dogseek.New] transport")
	}

	httpClient := &http.Client{
		Transport: authTransport,
		Timeout:   s.timeout,
	}

	restClient, err := rest.New(baseURL, httpClient, rest.WithLogger(s.logger))
	if err != nil {
		return nil, errors.Wrap(err, "[dogseek.New] rest client")
	}

	return &Client{
		Sessions:  sessions,
		Inquiries: inquiries.NewClient(restClient),
		Notices:   notices.NewClient(restClient),
		LostPets:  lostpets.NewClient(restClient),
		Dogs:      dogs.NewClient(restClient),
		Shelters:  shelters.NewClient(restClient),
		Account:   account.NewClient(restClient),
		Admin:     admin.NewClient(restClient),
		HTTP:      httpClient,
	}, nil
}

// NewFromEnv creates a client from environment configuration (and a .env
// file when present). A configured credentials file selects the persistent
// store, so sessions survive restarts.
func NewFromEnv(options ...Option) (*Client, error) {
	cfg := config.New()

	base := []Option{
		WithTimeout(cfg.GetHTTPTimeout()),
		WithCredentialTTL(cfg.GetCredentialTTL()),
	}
	if path := cfg.GetCredentialsFile(); path != "" {
		store, err := credstore.NewFileStore(path)
		if err != nil {
			return nil, errors.Wrap(err, "[dogseek.NewFromEnv] credential store")
		}
		base = append(base, WithCredentialStore(store))
	}

	return New(cfg.GetBaseURL(), append(base, options...)...)
}
