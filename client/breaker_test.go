package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value": 7}`))
	}))
	defer server.Close()

	c := testClient(WithCircuitBreaker())

	var got struct {
		Value int `json:"value"`
	}
	if err := c.GetJSON(context.Background(), server.URL, &got); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if got.Value != 7 {
		t.Errorf("expected 7, got %d", got.Value)
	}

	states := c.BreakerStates()
	if len(states) != 1 {
		t.Fatalf("expected one breaker, got %d", len(states))
	}
	for _, state := range states {
		if state != "closed" {
			t.Errorf("expected closed breaker, got %s", state)
		}
	}
}

func TestBreakerTripsOnConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := testClient(WithCircuitBreaker(), WithMaxRetries(0))

	for i := 0; i < 5; i++ {
		if _, err := c.GetBody(context.Background(), server.URL); err == nil {
			t.Fatal("expected error from failing upstream")
		}
	}

	// The circuit is open now; the next call fails without a request.
	_, err := c.GetBody(context.Background(), server.URL)
	if !errors.Is(err, ErrUpstreamDown) {
		t.Fatalf("expected ErrUpstreamDown, got %v", err)
	}
}

func TestBreakerIgnores404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := testClient(WithCircuitBreaker())

	// Many missing packages are an answering upstream, not an outage.
	for i := 0; i < 10; i++ {
		_, err := c.GetBody(context.Background(), server.URL)
		if errors.Is(err, ErrUpstreamDown) {
			t.Fatal("404 responses must not trip the breaker")
		}
	}
}

func TestBreakerStatesDisabled(t *testing.T) {
	if states := testClient().BreakerStates(); states != nil {
		t.Errorf("expected nil states without breaking enabled, got %v", states)
	}
}

func TestExtractHost(t *testing.T) {
	if got := extractHost("https://api.github.com/repos/x/y"); got != "api.github.com" {
		t.Errorf("unexpected host: %q", got)
	}
	if got := extractHost("::bad::"); got != "::bad::" {
		t.Errorf("malformed URL should fall back to the raw string, got %q", got)
	}
}
