package engine

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ============================================================================
// STATISTICS — Reusable helpers over plain float slices
// ============================================================================
// Empty input yields 0 from every helper. Callers that must report an empty
// sample use Summarize, which returns ErrEmptySample.
// ============================================================================

// Mean returns the arithmetic mean.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Variance returns the population variance.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.PopVariance(values, nil)
}

// StandardDeviation returns the population standard deviation.
func StandardDeviation(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Median returns the middle value; for even lengths the mean of the two
// middle values.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := sortedCopy(values)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Percentile returns the p-th percentile (p in [0,100], clamped) using
// linear interpolation between the two nearest ranks.
func Percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 || math.IsNaN(p) {
		return 0
	}
	p = math.Max(0, math.Min(100, p))
	sorted := sortedCopy(values)

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// Summary describes a numeric sample.
type Summary struct {
	Count    int     `json:"count"`
	Sum      float64 `json:"sum"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"stdDev"`
	Median   float64 `json:"median"`
}

// Summarize computes the Summary of values.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrEmptySample
	}
	v := Variance(values)
	return Summary{
		Count:    len(values),
		Sum:      floats.Sum(values),
		Min:      floats.Min(values),
		Max:      floats.Max(values),
		Mean:     Mean(values),
		Variance: v,
		StdDev:   math.Sqrt(v),
		Median:   Median(values),
	}, nil
}
