package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mkosuda/spinneret/internal/config"
)

// Response is the result of fetching a URL: status, headers, and the body
// bytes read up to the configured cap.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Header contains the response headers.
	Header http.Header

	// Body is the response body, truncated at the body size cap.
	Body []byte
}

// ContentType returns the declared Content-Type header, empty if absent.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// IsSuccess reports whether the response status is exactly 200 OK.
// The admission pipeline admits nothing else, redirects included.
func (r *Response) IsSuccess() bool {
	return r.StatusCode == http.StatusOK
}

// Fetcher retrieves a URL and returns its status, headers, and body.
// Implementations fail with an error on transport problems; non-2xx
// statuses are returned as responses, not errors, so the caller can apply
// its own status policy.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Response, error)
}

// Client is the HTTP Fetcher used in production crawls.
//
// Design decision: We wrap an http.Client rather than exposing one because:
//  1. The body size cap and per-request timeout are crawl policy, applied
//     uniformly no matter which component fetches
//  2. The no-redirect policy must hold for every request
//  3. Tests can still inject a custom http.Client (e.g. httptest)
type Client struct {
	// client is the underlying HTTP client.
	client *http.Client

	// userAgent is sent with every request and is the agent name matched
	// against robots.txt groups.
	userAgent string

	// maxBodySize limits how many body bytes are read.
	maxBodySize int64

	// timeout is the per-request timeout.
	timeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithUserAgent sets the User-Agent header for all requests.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum number of response body bytes read.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying http.Client. The redirect policy
// is reapplied, so the replacement still never follows redirects.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient creates an HTTP Fetcher with the default crawl policy: the
// spinneret User-Agent, the configured content cap, and no redirect
// following.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		client:      &http.Client{},
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxContentLength,
		timeout:     config.DefaultFetchTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Redirect statuses must reach the pipeline unmodified.
	c.client.CheckRedirect = func(_ *http.Request, _ []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return c
}

// Fetch retrieves rawURL. Transport errors are returned as errors; any
// HTTP response, success or not, is returned as a Response. The body is
// read through an io.LimitReader so oversized documents cost at most the
// cap plus one byte.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", rawURL, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
