package quality

import (
	"fmt"
	"sort"

	"github.com/adoptioncheck/radar/internal/core"
)

// Thresholds are the divergence policy knobs.
type Thresholds struct {
	// Hype is the download-vs-download ratio at or above which the
	// hype flag is set. The reference 15.6x npm/pypi case flags;
	// ratios below 10x do not.
	Hype float64
	// Minor is the ratio at or above which confidence is capped at
	// MEDIUM without flagging hype (a 50% spread between sources).
	Minor float64
}

// DefaultThresholds returns the standard policy: minor at 1.5x, hype at 10x.
func DefaultThresholds() Thresholds {
	return Thresholds{Hype: 10.0, Minor: 1.5}
}

// rankMinSample is the smallest tracked-set size for which the
// quartile-based visibility check is meaningful.
const rankMinSample = 4

// rankTable holds sorted metric values across the tracked set so a
// single technology's position can be expressed as a percentile.
type rankTable struct {
	stars     []float64
	downloads []float64
}

func buildRanks(records []core.NormalizedRecord) rankTable {
	var t rankTable
	for _, rec := range records {
		if m := rec.Metric(core.SourceGitHub); m != nil {
			t.stars = append(t.stars, float64(m.PrimaryCount))
		}
		if d, ok := bestDownloads(rec); ok {
			t.downloads = append(t.downloads, d)
		}
	}
	sort.Float64s(t.stars)
	sort.Float64s(t.downloads)
	return t
}

// percentile returns the fraction of values strictly below v, in [0,1].
func percentile(sorted []float64, v float64) float64 {
	if len(sorted) < 2 {
		return 0
	}
	below := sort.SearchFloat64s(sorted, v)
	return float64(below) / float64(len(sorted)-1)
}

// bestDownloads returns the larger monthly download count across the
// production sources, and whether any is present.
func bestDownloads(rec core.NormalizedRecord) (float64, bool) {
	var best float64
	found := false
	for _, s := range []core.Source{core.SourceNPM, core.SourcePyPI} {
		if m := rec.Metric(s); m != nil {
			found = true
			if float64(m.PrimaryCount) > best {
				best = float64(m.PrimaryCount)
			}
		}
	}
	return best, found
}

// ScoreAll assigns a confidence level and hype verdict to every record.
// Scoring is a pure function of the records: running it twice on the
// same input yields identical output.
//
// The download divergence ratio is computed between npm and pypi, the
// two unit-comparable sources. GitHub stars are never compared to raw
// download counts; instead the visibility check flags a technology
// whose stars sit in the top quartile of the tracked set while its
// best download count sits in the bottom quartile.
func ScoreAll(th Thresholds, records []core.NormalizedRecord) []core.ScoredRecord {
	ranks := buildRanks(records)

	scored := make([]core.ScoredRecord, 0, len(records))
	for _, rec := range records {
		scored = append(scored, scoreOne(th, ranks, rec))
	}
	return scored
}

func scoreOne(th Thresholds, ranks rankTable, rec core.NormalizedRecord) core.ScoredRecord {
	out := core.ScoredRecord{
		Technology:     rec.Technology,
		Category:       rec.Category,
		List:           rec.List,
		SourcesPresent: rec.SourcesPresent,
		RankEligible:   rec.SourcesPresent > 0,
		CollectedAt:    rec.CollectedAt,
	}

	switch {
	case rec.SourcesPresent == 0:
		// Cannot rank an unobserved entity.
		out.Confidence = core.ConfidenceLow
		return out

	case rec.SourcesPresent == 1:
		// Single clean source: unconfirmed, not untrustworthy.
		out.Confidence = core.ConfidenceMedium
		return out
	}

	div := downloadDivergence(rec)
	out.Divergence = div

	visHype := visibilityDivergence(ranks, rec)

	switch {
	case div != nil && div.Ratio >= th.Hype:
		out.Confidence = core.ConfidenceMedium
		out.HypeFlag = true
		out.HypeReasons = append(out.HypeReasons,
			fmt.Sprintf("%s and %s monthly downloads diverge %.1fx", div.A, div.B, div.Ratio))

	case visHype:
		out.Confidence = core.ConfidenceMedium
		out.HypeFlag = true
		out.HypeReasons = append(out.HypeReasons,
			"github stars rank in the top quartile while download counts rank in the bottom quartile")

	case div != nil && div.Ratio >= th.Minor:
		out.Confidence = core.ConfidenceMedium

	default:
		out.Confidence = core.ConfidenceHigh
	}

	return out
}

// downloadDivergence compares the two unit-comparable sources. Nil when
// fewer than two comparable sources exist; a ratio is never fabricated
// from a single observation.
func downloadDivergence(rec core.NormalizedRecord) *core.Divergence {
	npm := rec.Metric(core.SourceNPM)
	pypi := rec.Metric(core.SourcePyPI)
	if npm == nil || pypi == nil {
		return nil
	}

	a := float64(npm.PrimaryCount)
	b := float64(pypi.PrimaryCount)
	hi, lo := a, b
	if b > a {
		hi, lo = b, a
	}
	// Floor of 1 on the denominator: one side being legitimately zero
	// must not divide by zero.
	if lo < 1 {
		lo = 1
	}

	return &core.Divergence{Ratio: hi / lo, A: core.SourceNPM, B: core.SourcePyPI}
}

// visibilityDivergence is the qualitative stars-vs-downloads check.
// It needs both metric populations to be large enough to rank against.
func visibilityDivergence(ranks rankTable, rec core.NormalizedRecord) bool {
	if len(ranks.stars) < rankMinSample || len(ranks.downloads) < rankMinSample {
		return false
	}

	gh := rec.Metric(core.SourceGitHub)
	if gh == nil {
		return false
	}
	dl, ok := bestDownloads(rec)
	if !ok {
		return false
	}

	starsPct := percentile(ranks.stars, float64(gh.PrimaryCount))
	dlPct := percentile(ranks.downloads, dl)
	return starsPct >= 0.75 && dlPct <= 0.25
}
