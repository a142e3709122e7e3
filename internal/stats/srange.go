package stats

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

// Gauss-Legendre rule on [-1, 1]; nodes are generated once by gonum and
// rescaled per panel.
type legendreRule struct {
	x, w []float64
}

func newLegendreRule(n int) legendreRule {
	r := legendreRule{x: make([]float64, n), w: make([]float64, n)}
	quad.Legendre{}.FixedLocations(r.x, r.w, -1, 1)
	return r
}

func (r legendreRule) integrate(f func(float64) float64, a, b float64) float64 {
	half := (b - a) / 2
	mid := (a + b) / 2
	var sum float64
	for i, x := range r.x {
		sum += r.w[i] * f(mid+half*x)
	}
	return sum * half
}

var (
	innerRule = newLegendreRule(96)
	outerRule = newLegendreRule(32)
)

const (
	// z beyond ±8 contributes < 1e-15 to the range integral.
	rangeZBound = 8.0
	// chi tail mass ignored on each side of the scale integral.
	chiTail = 1e-12
	// scale panels for the outer integral
	chiPanels = 12
	// above this many degrees of freedom s is treated as exactly 1.
	largeDF = 25000
)

// rangeCDFKnownSigma is P(R <= w) for the range of k independent standard
// normal variates.
func rangeCDFKnownSigma(w float64, k int) float64 {
	if w <= 0 {
		return 0
	}
	km1 := float64(k - 1)
	f := func(z float64) float64 {
		d := distuv.UnitNormal.CDF(z) - distuv.UnitNormal.CDF(z-w)
		if d <= 0 {
			return 0
		}
		return distuv.UnitNormal.Prob(z) * math.Pow(d, km1)
	}
	v := float64(k) * innerRule.integrate(f, -rangeZBound, rangeZBound)
	return clamp01(v)
}

// StudentizedRangeCDF returns P(Q <= q) for the studentized range of k
// groups with df error degrees of freedom.
func StudentizedRangeCDF(q float64, k int, df float64) float64 {
	if math.IsNaN(q) || k < 2 || !(df > 0) {
		return math.NaN()
	}
	if q <= 0 {
		return 0
	}
	if math.IsInf(q, 1) {
		return 1
	}
	if df > largeDF {
		return rangeCDFKnownSigma(q, k)
	}
	// s = sqrt(X/df), X ~ chi2(df): f_s(s) = f_X(df*s^2) * 2*df*s
	chi := distuv.ChiSquared{K: df}
	lo := math.Sqrt(chi.Quantile(chiTail) / df)
	hi := math.Sqrt(chi.Quantile(1-chiTail) / df)
	f := func(s float64) float64 {
		if s <= 0 {
			return 0
		}
		dens := chi.Prob(df*s*s) * 2 * df * s
		if dens == 0 {
			return 0
		}
		return dens * rangeCDFKnownSigma(q*s, k)
	}
	step := (hi - lo) / chiPanels
	var total float64
	for i := 0; i < chiPanels; i++ {
		a := lo + float64(i)*step
		total += outerRule.integrate(f, a, a+step)
	}
	return clamp01(total)
}

// StudentizedRangeQuantile inverts StudentizedRangeCDF by bisection.
func StudentizedRangeQuantile(p float64, k int, df float64) float64 {
	if !(p > 0 && p < 1) || k < 2 || !(df > 0) {
		return math.NaN()
	}
	lo, hi := 0.0, 10.0
	for StudentizedRangeCDF(hi, k, df) < p {
		lo = hi
		hi *= 2
		if hi > 1e6 {
			return math.Inf(1)
		}
	}
	for i := 0; i < 60 && hi-lo > 1e-7; i++ {
		mid := (lo + hi) / 2
		if StudentizedRangeCDF(mid, k, df) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
