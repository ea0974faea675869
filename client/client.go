// Package client provides the shared HTTP client for source APIs with
// retry, exponential backoff, DNS caching, and request pacing.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/dnscache"
)

// ErrRateLimited is returned after the retry budget is exhausted on
// 429 responses.
var ErrRateLimited = errors.New("rate limited by upstream")

// HTTPError represents a non-retryable HTTP error response.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error represents a 404 response.
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == 404
}

// RateLimiter controls request pacing.
type RateLimiter interface {
	// Wait blocks until the next request may be issued or ctx is done.
	Wait(ctx context.Context) error
}

// intervalLimiter enforces a minimum delay between requests. Used to
// stay under GitHub's authenticated hourly quota.
type intervalLimiter struct {
	interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

func (l *intervalLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	next := l.last.Add(l.interval)
	now := time.Now()
	if next.Before(now) {
		next = now
	}
	l.last = next
	l.mu.Unlock()

	d := time.Until(next)
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// NewIntervalLimiter returns a RateLimiter enforcing a minimum delay
// between requests.
func NewIntervalLimiter(interval time.Duration) RateLimiter {
	return &intervalLimiter{interval: interval}
}

// Client is an HTTP client with retry logic for source APIs.
type Client struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration
	limiter    RateLimiter
	authFn     func(url string) (headerName, headerValue string)
	breakers   *breakerPool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.client = c
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.client.Timeout = d
	}
}

// WithMaxRetries sets the maximum retry attempts.
func WithMaxRetries(n int) Option {
	return func(cl *Client) {
		cl.maxRetries = n
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
func WithBaseDelay(d time.Duration) Option {
	return func(cl *Client) {
		cl.baseDelay = d
	}
}

// WithRateLimiter sets a request pacer applied before every attempt.
func WithRateLimiter(l RateLimiter) Option {
	return func(cl *Client) {
		cl.limiter = l
	}
}

// WithAuthFunc sets a function that returns auth headers for a given URL.
// Return empty strings to skip authentication for that URL.
func WithAuthFunc(fn func(url string) (headerName, headerValue string)) Option {
	return func(cl *Client) {
		cl.authFn = fn
	}
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	// DNS cache with 5 minute refresh interval
	resolver := &dnscache.Resolver{}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			resolver.Refresh(true)
		}
	}()

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	c := &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					for _, ip := range ips {
						conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if err == nil {
							return conn, nil
						}
					}
					return nil, fmt.Errorf("failed to dial any resolved IP")
				},
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		userAgent:  "adoption-radar/1.0",
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultClient returns a client with sensible defaults:
// 30s timeout, 3 retries with exponential backoff, retry on 429 and 5xx.
func DefaultClient() *Client {
	return NewClient()
}

// WithUserAgent returns the client with the User-Agent header replaced.
func (c *Client) WithUserAgent(ua string) *Client {
	c.userAgent = ua
	return c
}

// GetJSON fetches url and decodes the response body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.GetBody(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}

// GetBody fetches url and returns the response body.
// 429 and 5xx responses are retried with exponential backoff and 10%
// jitter; other non-2xx statuses return an *HTTPError immediately.
func (c *Client) GetBody(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			jitter := time.Duration(float64(delay) * (rand.Float64() * 0.1))
			delay += jitter

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, retryable, err := c.doGet(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) doGet(ctx context.Context, url string) (body []byte, retryable bool, err error) {
	host := ""
	if c.breakers != nil {
		host = extractHost(url)
		if !c.breakers.ready(host) {
			return nil, false, fmt.Errorf("%s: %w", host, ErrUpstreamDown)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, false, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	if c.authFn != nil {
		if name, value := c.authFn(url); name != "" && value != "" {
			req.Header.Set(name, value)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.recordFailure(host)
		// Network errors are worth retrying.
		return nil, true, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			c.recordFailure(host)
			return nil, true, fmt.Errorf("reading %s: %w", url, err)
		}
		c.recordSuccess(host)
		return b, false, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		c.recordFailure(host)
		return nil, true, fmt.Errorf("%s: %w", url, ErrRateLimited)

	case resp.StatusCode >= 500:
		c.recordFailure(host)
		return nil, true, &HTTPError{StatusCode: resp.StatusCode, URL: url}

	default:
		// A 4xx means the upstream is answering; the breaker stays happy.
		c.recordSuccess(host)
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, false, &HTTPError{StatusCode: resp.StatusCode, URL: url, Body: string(b)}
	}
}

func (c *Client) recordSuccess(host string) {
	if c.breakers != nil {
		c.breakers.success(host)
	}
}

func (c *Client) recordFailure(host string) {
	if c.breakers != nil {
		c.breakers.fail(host)
	}
}
