// Package transport is the HTTP client shared by collaborators that fetch
// remote documents. Every request carries the collector's User-Agent and
// Accept-Language headers and is bounded by a timeout.
package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/agentstation/congressmap/pkg/constants"
	"github.com/agentstation/congressmap/pkg/errors"
)

// Client performs GET requests on behalf of collaborators.
type Client struct {
	http *http.Client
	auth Authenticator
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithAuth sets the authenticator.
func WithAuth(a Authenticator) Option {
	return func(c *Client) {
		if a != nil {
			c.auth = a
		}
	}
}

// WithHTTPClient replaces the underlying client, keeping its timeout unless
// WithTimeout is applied afterwards.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a client with the default timeout and no authentication.
func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{Timeout: constants.HTTPTimeout},
		auth: NoAuth{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET request with the standard headers applied.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	SetHeaders(req)
	c.auth.Apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewTimeoutError("GET "+url, "", err.Error())
		}
		return nil, errors.WrapIO("fetch", url, err)
	}
	return resp, nil
}

// SetHeaders applies the collector's identification headers.
func SetHeaders(req *http.Request) {
	req.Header.Set("User-Agent", constants.UserAgent)
	req.Header.Set("Accept-Language", constants.AcceptLanguage)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")
	}
}
