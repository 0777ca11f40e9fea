// Package rest holds the HTTP plumbing shared by the typed resource clients.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dogseek/dogseek-go/apierr"
)

const maxResponseBytes = 4 << 20

// Client issues JSON and multipart requests against the registry backend.
// The *http.Client it wraps is expected to carry the auth transport, so
// every call goes through credential attachment and the 401 retry policy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a rest client rooted at baseURL.
func New(baseURL string, httpClient *http.Client, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[rest.New] baseURL is required")
	}
	if httpClient == nil {
		return nil, errors.New("[rest.New] http client is required")
	}

	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.DoJSON(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.DoJSON(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) PutJSON(ctx context.Context, path string, body, out any) error {
	return c.DoJSON(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) PatchJSON(ctx context.Context, path string, body, out any) error {
	return c.DoJSON(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.DoJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// DoJSON sends a JSON request and decodes a JSON response into out when out
// is non-nil.
func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[rest.DoJSON] encode request body")
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.urlFor(path, query), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// FormFile is a file part of a multipart request.
type FormFile struct {
	Field   string
	Name    string
	Content io.Reader
}

// DoMultipart sends a multipart/form-data request, used for endpoints that
// accept an image alongside JSON-encoded fields.
func (c *Client) DoMultipart(ctx context.Context, method, path string, fields map[string]string, files []FormFile, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for field, value := range fields {
		if err := writer.WriteField(field, value); err != nil {
			return errors.Wrap(err, "[rest.DoMultipart] write field")
		}
	}
	for _, file := range files {
		part, err := writer.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return errors.Wrap(err, "[rest.DoMultipart] create file part")
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return errors.Wrap(err, "[rest.DoMultipart] copy file content")
		}
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "[rest.DoMultipart] close writer")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.urlFor(path, nil), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierr.Wrapf(apierr.ErrNetwork, "[rest.send] %s %s: %v", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(req, resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrapf(err, "[rest.send] decode %s %s response", req.Method, req.URL.Path)
	}
	return nil
}

func (c *Client) statusError(req *http.Request, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	c.logger.Debug().
		Int("status", status).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Msg("api error response")

	switch status {
	case http.StatusUnauthorized:
		return apierr.Wrapf(apierr.ErrUnauthorized, "%s %s (%d): %s", req.Method, req.URL.Path, status, msg)
	case http.StatusForbidden:
		return apierr.Wrapf(apierr.ErrPermissionDenied, "%s %s (%d): %s", req.Method, req.URL.Path, status, msg)
	case http.StatusNotFound:
		return apierr.Wrapf(apierr.ErrNotFound, "%s %s (%d): %s", req.Method, req.URL.Path, status, msg)
	default:
		return errors.Errorf("%s %s: api error (%d): %s", req.Method, req.URL.Path, status, msg)
	}
}

func (c *Client) urlFor(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
