package stats

import "math"

// Round rounds x to the given number of decimal places, resolving ties to
// even like NumPy. NaN and infinities pass through. Rounding an already
// rounded value returns it unchanged.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	p := math.Pow(10, float64(places))
	return math.RoundToEven(x*p) / p
}
