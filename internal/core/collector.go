package core

import (
	"context"
	"fmt"
	"sync"
)

// Collector is the interface implemented by all source collectors.
type Collector interface {
	// Source returns the source this collector observes.
	Source() Source

	// Collect fetches one SourceMetric for the technology. It returns
	// an error when the source is unavailable or the identifier is
	// unknown; callers record failures, they do not abort on them.
	Collect(ctx context.Context, spec TechnologySpec) (*SourceMetric, error)

	// URLs returns the URL builder for this source.
	URLs() URLBuilder
}

// Factory creates a collector instance for a given base URL.
type Factory func(baseURL string, client *Client) Collector

var (
	factories = make(map[Source]Factory)
	defaults  = make(map[Source]string)
	mu        sync.RWMutex
)

// Register adds a collector factory to the global registry.
// defaultURL is the default API base URL for the source.
func Register(source Source, defaultURL string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[source] = factory
	defaults[source] = defaultURL
}

// New creates a new collector for the given source.
// If baseURL is empty, the default API URL is used.
func New(source Source, baseURL string, client *Client) (Collector, error) {
	mu.RLock()
	factory, ok := factories[source]
	defaultURL := defaults[source]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown source: %s", source)
	}

	if baseURL == "" {
		baseURL = defaultURL
	}

	if client == nil {
		client = DefaultClient()
	}

	return factory(baseURL, client), nil
}

// SupportedSources returns all registered sources.
func SupportedSources() []Source {
	mu.RLock()
	defer mu.RUnlock()

	sources := make([]Source, 0, len(factories))
	for s := range factories {
		sources = append(sources, s)
	}
	return sources
}

// DefaultURL returns the default API base URL for a source.
func DefaultURL(source Source) string {
	mu.RLock()
	defer mu.RUnlock()
	return defaults[source]
}
