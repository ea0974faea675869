// Package quality merges per-source observations into normalized
// records and cross-validates them into confidence scores.
package quality

import (
	"sort"

	"github.com/adoptioncheck/radar/internal/core"
)

// Normalize gathers the metrics collected this run for one technology
// and produces exactly one NormalizedRecord.
//
// A metric with FetchSucceeded=false, or a source with no configured
// identifier, is recorded as absent. A successful fetch with a zero
// count stays present: absence and zero magnitude are never conflated.
func Normalize(spec core.TechnologySpec, metrics []core.SourceMetric) core.NormalizedRecord {
	rec := core.NormalizedRecord{
		Technology: spec.Name,
		Category:   spec.Category,
		List:       spec.List,
		Sources:    make(map[core.Source]*core.SourceMetric),
	}

	for i := range metrics {
		m := metrics[i]
		if m.Technology != spec.Name {
			continue
		}
		if !m.FetchSucceeded {
			rec.FailedSources = append(rec.FailedSources, m.Source)
			continue
		}
		rec.Sources[m.Source] = &m
		if m.CollectedAt.After(rec.CollectedAt) {
			rec.CollectedAt = m.CollectedAt
		}
	}

	sort.Slice(rec.FailedSources, func(i, j int) bool {
		return rec.FailedSources[i] < rec.FailedSources[j]
	})
	rec.SourcesPresent = len(rec.Sources)
	return rec
}

// NormalizeAll produces one NormalizedRecord per spec, in spec order.
func NormalizeAll(specs []core.TechnologySpec, metrics []core.SourceMetric) []core.NormalizedRecord {
	records := make([]core.NormalizedRecord, 0, len(specs))
	for _, spec := range specs {
		records = append(records, Normalize(spec, metrics))
	}
	return records
}
