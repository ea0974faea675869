package client

import (
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// ErrUpstreamDown is returned when a source host's circuit is open.
var ErrUpstreamDown = errors.New("upstream source unavailable")

// breakerPool tracks one circuit breaker per upstream host so a down
// source trips fast instead of burning the retry budget on every
// technology in the catalog.
type breakerPool struct {
	mu       sync.RWMutex
	breakers map[string]*circuit.Breaker
}

func newBreakerPool() *breakerPool {
	return &breakerPool{breakers: make(map[string]*circuit.Breaker)}
}

func (p *breakerPool) get(host string) *circuit.Breaker {
	p.mu.RLock()
	breaker, exists := p.breakers[host]
	p.mu.RUnlock()

	if exists {
		return breaker
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring write lock
	if breaker, exists := p.breakers[host]; exists {
		return breaker
	}

	// Trips after 5 consecutive failures, reopens on exponential backoff
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	breaker = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})

	p.breakers[host] = breaker
	return breaker
}

func (p *breakerPool) ready(host string) bool {
	return p.get(host).Ready()
}

func (p *breakerPool) success(host string) {
	p.get(host).Success()
}

func (p *breakerPool) fail(host string) {
	p.get(host).Fail()
}

// extractHost extracts a host from a URL for circuit breaker grouping.
func extractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}

// WithCircuitBreaker enables per-host circuit breaking. After 5
// consecutive failures a host's circuit opens and requests fail with
// ErrUpstreamDown until the reopen backoff elapses.
func WithCircuitBreaker() Option {
	return func(cl *Client) {
		cl.breakers = newBreakerPool()
	}
}

// BreakerStates returns the current state of circuit breakers, keyed
// by host, for health reporting. Nil when breaking is not enabled.
func (c *Client) BreakerStates() map[string]string {
	if c.breakers == nil {
		return nil
	}

	c.breakers.mu.RLock()
	defer c.breakers.mu.RUnlock()

	states := make(map[string]string)
	for host, breaker := range c.breakers.breakers {
		if breaker.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}
