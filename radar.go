// Package radar tracks technology adoption across GitHub, npm, and
// PyPI, scores the confidence of each reading, and flags technologies
// whose visibility diverges from their usage.
//
// Data quality is the organizing idea: a source that was never
// configured, a source that failed to answer, and a source that
// reported zero are three different facts, and the scoring layer keeps
// them apart. Growth rates are only computed from at least two real
// snapshots; the package degrades to an explicit insufficient-data
// state rather than fabricating numbers.
//
// Basic usage:
//
//	import (
//		"context"
//		"github.com/adoptioncheck/radar"
//		_ "github.com/adoptioncheck/radar/internal/github"
//	)
//
//	client := radar.DefaultClient()
//	col, err := radar.NewCollector(radar.SourceGitHub, "", client)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	metric, err := col.Collect(context.Background(), spec)
//
// To register all supported sources at once, use the all subpackage:
//
//	import (
//		"github.com/adoptioncheck/radar"
//		_ "github.com/adoptioncheck/radar/all"
//	)
package radar

import (
	"github.com/adoptioncheck/radar/client"
	"github.com/adoptioncheck/radar/internal/core"
)

// Re-export types from internal/core
type (
	// Collector fetches adoption metrics for one source.
	Collector = core.Collector

	// Source identifies one upstream data source.
	Source = core.Source

	// TechnologySpec describes one tracked technology and its
	// per-source identifiers.
	TechnologySpec = core.TechnologySpec

	// SourceMetric is one observation from one source.
	SourceMetric = core.SourceMetric

	// NormalizedRecord merges a technology's per-source observations.
	NormalizedRecord = core.NormalizedRecord

	// ScoredRecord is a normalized record with its confidence verdict.
	ScoredRecord = core.ScoredRecord

	// ConfidenceLevel grades how trustworthy a record is.
	ConfidenceLevel = core.ConfidenceLevel

	// Divergence captures a cross-source disagreement ratio.
	Divergence = core.Divergence
)

// Re-export types from client
type (
	// Client is an HTTP client with retry logic for source APIs.
	Client = client.Client

	// URLBuilder constructs URLs for a source.
	URLBuilder = client.URLBuilder

	// RateLimiter controls request pacing.
	RateLimiter = client.RateLimiter
)

// Re-export constants
const (
	SourceGitHub = core.SourceGitHub
	SourceNPM    = core.SourceNPM
	SourcePyPI   = core.SourcePyPI

	ConfidenceHigh   = core.ConfidenceHigh
	ConfidenceMedium = core.ConfidenceMedium
	ConfidenceLow    = core.ConfidenceLow
)

// Re-export errors
var (
	ErrNotFound  = core.ErrNotFound
	ErrNoCatalog = core.ErrNoCatalog
)

// Error types
type (
	HTTPError      = client.HTTPError
	NotFoundError  = core.NotFoundError
	RateLimitError = core.RateLimitError
)

// NewCollector creates a collector for the given source.
// If baseURL is empty, the default API URL is used.
// If client is nil, DefaultClient() is used.
//
// Supported sources: "github", "npm", "pypi"
func NewCollector(source Source, baseURL string, c *Client) (Collector, error) {
	return core.New(source, baseURL, c)
}

// DefaultClient returns a client with sensible defaults:
// - 30s timeout
// - 3 retries with exponential backoff
// - Retry on 429 and 5xx responses
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	return client.NewClient(opts...)
}

// Option configures a Client.
type Option = client.Option

// WithTimeout sets the HTTP client timeout.
var WithTimeout = client.WithTimeout

// WithMaxRetries sets the maximum number of retries.
var WithMaxRetries = client.WithMaxRetries

// SupportedSources returns all registered source types.
// Note: source packages must be imported to be registered.
func SupportedSources() []Source {
	return core.SupportedSources()
}

// BuildURLs returns a map of all non-empty URLs for a technology's
// identifier on one source. Keys are "page", "api", and "purl".
func BuildURLs(urls URLBuilder, identifier string) map[string]string {
	return client.BuildURLs(urls, identifier)
}

// DefaultURL returns the default API URL for a source.
func DefaultURL(source Source) string {
	return core.DefaultURL(source)
}
