// Package transport applies the client's single retry-on-401 policy to every
// outbound request: attach the current credential, and on an authorization
// failure refresh exactly once, resend exactly once, otherwise force logout.
package transport

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dogseek/dogseek-go/session"
)

const requestIDHeader = "X-Request-ID"

// retriedKey marks a request that has already been through the refresh+retry
// path. The marker rides on the request context so concurrent requests stay
// independent of each other.
type retriedKey struct{}

var _ http.RoundTripper = (*Transport)(nil)

// Transport is an http.RoundTripper that consults the session manager for
// credentials and owns the refresh-retry sequence for 401 responses.
type Transport struct {
	base          http.RoundTripper
	sessions      *session.Manager
	onAuthExpired func()
	logger        zerolog.Logger
}

// Option defines a function type to modify the Transport instance.
type Option func(*Transport)

// WithBase sets the underlying round tripper. Defaults to http.DefaultTransport.
func WithBase(base http.RoundTripper) Option {
	return func(t *Transport) {
		t.base = base
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

// WithOnAuthExpired sets the hook invoked after a forced logout, typically to
// send the user to the login entry point.
func WithOnAuthExpired(hook func()) Option {
	return func(t *Transport) {
		t.onAuthExpired = hook
	}
}

// New creates a Transport backed by the given session manager.
func New(sessions *session.Manager, options ...Option) (*Transport, error) {
	if sessions == nil {
		return nil, errors.New("[transport.New] session manager is required")
	}

	transport := &Transport{
		base:     http.DefaultTransport,
		sessions: sessions,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(transport)
	}
	return transport, nil
}

// RoundTrip sends the request with the current credential attached. A 401
// response triggers at most one silent refresh followed by exactly one
// resend; a failed refresh forces logout and rejects the request. A second
// 401 is returned to the caller untouched.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID := req.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	resp, err := t.base.RoundTrip(t.prepare(req, req.Context(), requestID))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// An aborted request never enters the refresh path, and a request that
	// already went through it is rejected as-is to rule out retry loops.
	if req.Context().Err() != nil || wasRetried(req.Context()) {
		return resp, nil
	}
	// A body without a replay function cannot be resent.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	t.logger.Debug().
		Str("request_id", requestID).
		Str("url", req.URL.String()).
		Msg("401 received, attempting token refresh")

	token, err := t.sessions.Refresh(req.Context())
	if err != nil {
		discard(resp)
		t.sessions.Logout()
		if t.onAuthExpired != nil {
			t.onAuthExpired()
		}
		return nil, errors.Wrap(err, "[Transport.RoundTrip] refresh after 401")
	}
	discard(resp)

	retry := t.prepare(req, context.WithValue(req.Context(), retriedKey{}, true), requestID)
	retry.Header.Set("Authorization", "Bearer "+token)
	return t.base.RoundTrip(retry)
}

// prepare clones the request so the caller's copy is never mutated, restores
// a replayable body, and attaches the request id and current credential.
func (t *Transport) prepare(req *http.Request, ctx context.Context, requestID string) *http.Request {
	out := req.Clone(ctx)
	if req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			out.Body = body
		}
	}
	out.Header.Set(requestIDHeader, requestID)
	t.sessions.AttachCredential(out)
	return out
}

func wasRetried(ctx context.Context) bool {
	retried, _ := ctx.Value(retriedKey{}).(bool)
	return retried
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 32*1024))
	_ = resp.Body.Close()
}
