// Package core provides shared types and the collector registry system.
package core

import "time"

// Source identifies one of the external data providers.
type Source string

const (
	SourceGitHub Source = "github"
	SourceNPM    Source = "npm"
	SourcePyPI   Source = "pypi"
)

// Sources lists every known source in a stable order.
var Sources = []Source{SourceGitHub, SourceNPM, SourcePyPI}

// ConfidenceLevel is the qualitative trust rating for a technology's
// metrics in a given run.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
)

// TechnologySpec is the static configuration entry for one tracked
// technology. Identifiers are optional; a technology may legitimately
// lack any given source. Immutable after config load.
type TechnologySpec struct {
	Name        string   `json:"name" validate:"required"`
	DisplayName string   `json:"displayName,omitempty"`
	Category    string   `json:"category" validate:"required,oneof=ai_platform ai_infrastructure vector_db ml_platform financial_ai financial_data fintech_infrastructure quant_tools risk_compliance trading_ai trading_backtesting trading_platform"`
	List        string   `json:"list" validate:"required,oneof=enterprise fintech"`
	GitHubRepo  string   `json:"github,omitempty"` // owner/repo
	NPMPackage  string   `json:"npm,omitempty"`    // package name, may be @scoped
	PyPIPackage string   `json:"pypi,omitempty"`   // project name
	PURLs       []string `json:"purls,omitempty"`  // alternative pkg: identifiers, resolved at load
}

// HasSource reports whether the spec carries an identifier for the source.
func (t TechnologySpec) HasSource(s Source) bool {
	return t.Identifier(s) != ""
}

// Identifier returns the configured identifier for a source, or "".
func (t TechnologySpec) Identifier(s Source) string {
	switch s {
	case SourceGitHub:
		return t.GitHubRepo
	case SourceNPM:
		return t.NPMPackage
	case SourcePyPI:
		return t.PyPIPackage
	}
	return ""
}

// SourceMetric is one observation from one source for one technology.
// Append-only: never mutated after creation.
type SourceMetric struct {
	Source         Source
	Technology     string
	CollectedAt    time.Time
	PrimaryCount   int64 // stars (github) or monthly downloads (npm, pypi)
	SecondaryCount int64 // forks (github) or weekly downloads (npm, pypi)
	FetchSucceeded bool
	Metadata       map[string]any // source-specific extras
}

// NormalizedRecord is one technology's merged view across sources at a
// point in time. Sources holds only metrics with FetchSucceeded=true;
// a failed fetch is listed in FailedSources and never counted, so
// absence is never conflated with a legitimate zero count.
type NormalizedRecord struct {
	Technology     string
	Category       string
	List           string
	Sources        map[Source]*SourceMetric
	FailedSources  []Source
	SourcesPresent int
	CollectedAt    time.Time
}

// Metric returns the successful metric for a source, or nil.
func (r NormalizedRecord) Metric(s Source) *SourceMetric {
	return r.Sources[s]
}

// Divergence describes the ratio between two comparable sources.
// Nil divergence means fewer than two comparable sources existed; a
// ratio is never fabricated from a single observation.
type Divergence struct {
	Ratio float64
	A, B  Source
}

// ScoredRecord is the output of the quality core for one technology in
// one run. Superseded, not mutated, by the next run's record.
type ScoredRecord struct {
	Technology     string
	Category       string
	List           string
	Confidence     ConfidenceLevel
	HypeFlag       bool
	HypeReasons    []string
	Divergence     *Divergence
	SourcesPresent int
	// RankEligible is false for unobserved technologies; they stay in
	// the full audit listing but are excluded from ranked insights.
	RankEligible bool
	CollectedAt  time.Time
}
