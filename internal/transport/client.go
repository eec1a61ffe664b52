// Package transport provides the HTTP plumbing shared by the registry
// client and the upstream feed clients.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/moh-tz/hfrsync/pkg/constants"
	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/logging"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication.
type Client struct {
	http    *http.Client
	auth    Authenticator
	service string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// New creates a new transport client. service names the remote end in errors.
func New(service string, auth Authenticator, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		http:    &http.Client{Timeout: DefaultHTTPTimeout},
		auth:    auth,
		service: service,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the name used for this client in errors.
func (c *Client) Service() string {
	return c.service
}

// Do performs an HTTP request with authentication applied.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	c.auth.Apply(req)

	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapAPI(c.service, req.URL.Redacted(), 0, err)
	}
	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	return c.Do(ctx, req)
}

// GetJSON performs a GET request and decodes the JSON body into target.
func (c *Client) GetJSON(ctx context.Context, url string, target any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	return DecodeResponse(resp, c.service, target)
}

// PostJSON encodes body as JSON, posts it, and decodes the response into
// target when target is non-nil.
func (c *Client) PostJSON(ctx context.Context, url string, body, target any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.WrapParse("json", "request body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.WrapResource("create", "request", "POST "+url, err)
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return DecodeResponse(resp, c.service, target)
}

// DecodeResponse decodes a JSON response into the target structure. Any
// status outside 2xx is returned as an APIError carrying the body. A nil
// target discards the body.
func DecodeResponse(resp *http.Response, service string, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	endpoint := ""
	if resp.Request != nil && resp.Request.URL != nil {
		endpoint = resp.Request.URL.Redacted()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &errors.APIError{
			Service:    service,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    truncate(string(body), 512),
		}
	}

	if target == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", endpoint, err)
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
