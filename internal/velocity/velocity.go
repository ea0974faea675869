// Package velocity computes growth rates and momentum from sequences
// of run snapshots, degrading to an explicit insufficient-data state
// when history is missing.
package velocity

import (
	"math"
	"sort"
	"time"
)

// SpikeThreshold marks a monthly growth rate whose magnitude is an
// anomaly (a 500% swing in one period).
const SpikeThreshold = 5.0

// emergenceAnomalyFloor is the count above which a sudden appearance
// from zero is itself an anomaly.
const emergenceAnomalyFloor = 10000

// GrowthState distinguishes a computed rate from a missing one.
// Insufficient data is an expected state, never an error and never a
// fabricated zero growth rate.
type GrowthState string

const (
	StateOK               GrowthState = "ok"
	StateInsufficientData GrowthState = "insufficient_data"
)

// Momentum classifies a monthly growth rate.
type Momentum string

const (
	MomentumNewEmergence Momentum = "new_emergence"
	MomentumAccelerating Momentum = "accelerating"
	MomentumGrowing      Momentum = "growing"
	MomentumStable       Momentum = "stable"
	MomentumDeclining    Momentum = "declining"
	MomentumCollapsing   Momentum = "collapsing"
	MomentumNoActivity   Momentum = "no_activity"
)

// Point is one observed value at one run timestamp.
type Point struct {
	At    time.Time
	Value float64
}

// Growth is the month-over-month result for one metric series.
type Growth struct {
	State          GrowthState
	MonthlyPct     float64 // growth normalized to a 30-day period, percent
	AbsoluteChange float64
	Momentum       Momentum
	Anomaly        bool
	PeriodDays     float64
}

// Insufficient returns the explicit degrade-gracefully state.
func Insufficient() Growth {
	return Growth{State: StateInsufficientData}
}

// MonthOverMonth computes growth between the oldest and newest point,
// normalized to a 30-day rate. It requires at least two points at
// least a day apart; anything less reports insufficient data.
func MonthOverMonth(points []Point) Growth {
	if len(points) < 2 {
		return Insufficient()
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	oldest := sorted[0]
	newest := sorted[len(sorted)-1]
	days := newest.At.Sub(oldest.At).Hours() / 24
	if days < 1 {
		return Insufficient()
	}

	return rate(newest.Value, oldest.Value, days)
}

func rate(current, previous, days float64) Growth {
	g := Growth{State: StateOK, PeriodDays: days}

	if previous == 0 {
		if current > 0 {
			// New emergence has no meaningful percentage; clamp to 100.
			g.MonthlyPct = 100
			g.AbsoluteChange = current
			g.Momentum = MomentumNewEmergence
			g.Anomaly = current > emergenceAnomalyFloor
			return g
		}
		g.Momentum = MomentumNoActivity
		return g
	}

	change := current - previous
	monthlyRate := (change / previous) * (30 / days)

	g.MonthlyPct = monthlyRate * 100
	g.AbsoluteChange = change
	g.Momentum = classify(g.MonthlyPct)
	g.Anomaly = math.Abs(monthlyRate) > SpikeThreshold
	return g
}

func classify(monthlyPct float64) Momentum {
	switch {
	case monthlyPct > 50:
		return MomentumAccelerating
	case monthlyPct > 10:
		return MomentumGrowing
	case monthlyPct > -10:
		return MomentumStable
	case monthlyPct > -50:
		return MomentumDeclining
	default:
		return MomentumCollapsing
	}
}

// TechMomentum couples a technology's blended momentum score with the
// classification of its primary series.
type TechMomentum struct {
	State GrowthState
	Score float64
	Class Momentum
}

// Blend combines the primary and secondary growth rates into one
// momentum verdict. Weights favor the primary count (stars or monthly
// downloads). A series without data contributes nothing; two empty
// series yield the insufficient-data state.
func Blend(primary, secondary Growth) TechMomentum {
	const (
		primaryWeight   = 0.7
		secondaryWeight = 0.3
	)

	switch {
	case primary.State == StateOK && secondary.State == StateOK:
		return TechMomentum{
			State: StateOK,
			Score: primary.MonthlyPct*primaryWeight + secondary.MonthlyPct*secondaryWeight,
			Class: primary.Momentum,
		}
	case primary.State == StateOK:
		return TechMomentum{State: StateOK, Score: primary.MonthlyPct, Class: primary.Momentum}
	case secondary.State == StateOK:
		return TechMomentum{State: StateOK, Score: secondary.MonthlyPct, Class: secondary.Momentum}
	default:
		return TechMomentum{State: StateInsufficientData}
	}
}
