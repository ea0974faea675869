// Package insight ranks scored technologies into typed strategic
// findings. It never produces natural-language prose; report rendering
// turns these records into text.
package insight

import (
	"sort"

	"github.com/adoptioncheck/radar/internal/core"
	"github.com/adoptioncheck/radar/internal/velocity"
)

// DefaultTopN is the number of leaders highlighted per list.
const DefaultTopN = 5

// Leader is one entry in the adoption-velocity ranking.
type Leader struct {
	Technology    string
	Category      string
	MomentumScore float64
	Momentum      velocity.Momentum
}

// AdoptionLeaders ranks technologies by momentum score, descending.
// Technologies that are not rank-eligible (zero observed sources) are
// excluded, as are technologies without a computed momentum; an empty
// result means the velocity layer had insufficient history.
func AdoptionLeaders(scored []core.ScoredRecord, momenta map[string]velocity.TechMomentum, n int) []Leader {
	if n <= 0 {
		n = DefaultTopN
	}

	var leaders []Leader
	for _, rec := range scored {
		if !rec.RankEligible {
			continue
		}
		m, ok := momenta[rec.Technology]
		if !ok || m.State != velocity.StateOK {
			continue
		}
		leaders = append(leaders, Leader{
			Technology:    rec.Technology,
			Category:      rec.Category,
			MomentumScore: m.Score,
			Momentum:      m.Class,
		})
	}

	sort.Slice(leaders, func(i, j int) bool {
		if leaders[i].MomentumScore != leaders[j].MomentumScore {
			return leaders[i].MomentumScore > leaders[j].MomentumScore
		}
		return leaders[i].Technology < leaders[j].Technology
	})

	if len(leaders) > n {
		leaders = leaders[:n]
	}
	return leaders
}

// HypeCandidate is a technology whose sources disagree enough to
// suspect inflated visibility.
type HypeCandidate struct {
	Technology string
	Confidence core.ConfidenceLevel
	Reasons    []string
	Divergence *core.Divergence
}

// HypeCandidates returns every flagged technology, in input order.
func HypeCandidates(scored []core.ScoredRecord) []HypeCandidate {
	var out []HypeCandidate
	for _, rec := range scored {
		if !rec.HypeFlag {
			continue
		}
		out = append(out, HypeCandidate{
			Technology: rec.Technology,
			Confidence: rec.Confidence,
			Reasons:    rec.HypeReasons,
			Divergence: rec.Divergence,
		})
	}
	return out
}

// CategoryTrend aggregates momentum per technology category.
type CategoryTrend struct {
	Category        string
	TechnologyCount int
	AverageMomentum float64
	MaxMomentum     float64
	MinMomentum     float64
}

// CategoryTrends groups rank-eligible technologies with computed
// momentum by category, sorted by average momentum descending.
func CategoryTrends(scored []core.ScoredRecord, momenta map[string]velocity.TechMomentum) []CategoryTrend {
	byCategory := make(map[string][]float64)
	for _, rec := range scored {
		if !rec.RankEligible {
			continue
		}
		m, ok := momenta[rec.Technology]
		if !ok || m.State != velocity.StateOK {
			continue
		}
		byCategory[rec.Category] = append(byCategory[rec.Category], m.Score)
	}

	trends := make([]CategoryTrend, 0, len(byCategory))
	for category, momentaVals := range byCategory {
		t := CategoryTrend{
			Category:        category,
			TechnologyCount: len(momentaVals),
			MaxMomentum:     momentaVals[0],
			MinMomentum:     momentaVals[0],
		}
		var sum float64
		for _, m := range momentaVals {
			sum += m
			if m > t.MaxMomentum {
				t.MaxMomentum = m
			}
			if m < t.MinMomentum {
				t.MinMomentum = m
			}
		}
		t.AverageMomentum = sum / float64(len(momentaVals))
		trends = append(trends, t)
	}

	sort.Slice(trends, func(i, j int) bool {
		if trends[i].AverageMomentum != trends[j].AverageMomentum {
			return trends[i].AverageMomentum > trends[j].AverageMomentum
		}
		return trends[i].Category < trends[j].Category
	})
	return trends
}
