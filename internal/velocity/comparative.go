package velocity

import "sort"

// ComparisonState distinguishes a computed comparison from a neutral
// no-signal result.
type ComparisonState string

const (
	ComparisonOK ComparisonState = "ok"
	// ComparisonInsufficientHistory means one or both lists lack the
	// velocity series needed to compare them. Downstream reporting
	// must render a neutral statement, never an asserted figure.
	ComparisonInsufficientHistory ComparisonState = "insufficient_history"
)

// tieMargin is the mean-momentum difference, in points, under which
// two lists are considered tied.
const tieMargin = 5.0

// ListComparison is the cross-list velocity verdict.
type ListComparison struct {
	State       ComparisonState
	LeftList    string
	RightList   string
	LeftMean    float64
	RightMean   float64
	LeftMedian  float64
	RightMedian float64
	Difference  float64 // LeftMean - RightMean
	// Leader is the faster list's name, or "tied". Empty when the
	// comparison has insufficient history.
	Leader string
}

// CompareLists compares the momentum distributions of two strategic
// lists. With an empty series on either side the result carries no
// numbers: figures must be derived from actual history or omitted.
func CompareLists(leftList, rightList string, left, right []float64) ListComparison {
	cmp := ListComparison{LeftList: leftList, RightList: rightList}

	if len(left) == 0 || len(right) == 0 {
		cmp.State = ComparisonInsufficientHistory
		return cmp
	}

	cmp.State = ComparisonOK
	cmp.LeftMean = mean(left)
	cmp.RightMean = mean(right)
	cmp.LeftMedian = median(left)
	cmp.RightMedian = median(right)
	cmp.Difference = cmp.LeftMean - cmp.RightMean

	switch {
	case cmp.Difference > tieMargin:
		cmp.Leader = leftList
	case cmp.Difference < -tieMargin:
		cmp.Leader = rightList
	default:
		cmp.Leader = "tied"
	}
	return cmp
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
