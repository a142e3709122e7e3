package stats

import (
	"math"
	"sort"
)

// Quantile returns the q-th quantile of sorted data using linear
// interpolation between closest ranks (Hyndman-Fan type 7, the pandas and
// NumPy default). Empty input yields NaN.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Quantiles sorts a copy of vals and evaluates each q in qs.
func Quantiles(vals []float64, qs ...float64) []float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	out := make([]float64, len(qs))
	for i, q := range qs {
		out[i] = Quantile(cp, q)
	}
	return out
}

// Median of unsorted values.
func Median(vals []float64) float64 {
	return Quantiles(vals, 0.5)[0]
}
