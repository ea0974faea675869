package velocity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareLists(t *testing.T) {
	enterprise := []float64{40, 30, 20}
	fintech := []float64{10, 5, 0}

	cmp := CompareLists("enterprise", "fintech", enterprise, fintech)

	assert.Equal(t, ComparisonOK, cmp.State)
	assert.Equal(t, "enterprise", cmp.Leader)
	assert.InDelta(t, 30.0, cmp.LeftMean, 0.001)
	assert.InDelta(t, 5.0, cmp.RightMean, 0.001)
	assert.InDelta(t, 30.0, cmp.LeftMedian, 0.001)
	assert.InDelta(t, 25.0, cmp.Difference, 0.001)
}

func TestCompareListsRightLeader(t *testing.T) {
	cmp := CompareLists("enterprise", "fintech", []float64{2}, []float64{60})
	assert.Equal(t, "fintech", cmp.Leader)
}

func TestCompareListsTie(t *testing.T) {
	// A spread inside the 5-point margin is noise, not a leader.
	cmp := CompareLists("enterprise", "fintech", []float64{12, 8}, []float64{9, 7})

	assert.Equal(t, ComparisonOK, cmp.State)
	assert.Equal(t, "tied", cmp.Leader)
}

func TestCompareListsInsufficientHistory(t *testing.T) {
	cmp := CompareLists("enterprise", "fintech", []float64{10, 20}, nil)

	assert.Equal(t, ComparisonInsufficientHistory, cmp.State)
	assert.Empty(t, cmp.Leader)
	assert.Zero(t, cmp.LeftMean, "no figures may be asserted without history")
	assert.Zero(t, cmp.RightMean)
}

func TestMedianEvenCount(t *testing.T) {
	assert.InDelta(t, 15.0, median([]float64{30, 10, 20, 0}), 0.001)
}
