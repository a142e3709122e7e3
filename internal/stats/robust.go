package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	huberT       = 1.345
	madNormalize = 0.6744897501960817
	irlsMaxIter  = 50
	irlsTol      = 1e-8
)

// HuberLine fits y = a + b*x by iteratively reweighted least squares with
// Huber's T norm and a MAD scale estimate. It returns NaN coefficients when
// fewer than two points are given.
func HuberLine(x, y []float64) (a, b float64) {
	if len(x) < 2 || len(x) != len(y) {
		return math.NaN(), math.NaN()
	}
	a, b = stat.LinearRegression(x, y, nil, false)
	w := make([]float64, len(x))
	resid := make([]float64, len(x))
	for iter := 0; iter < irlsMaxIter; iter++ {
		for i := range x {
			resid[i] = y[i] - (a + b*x[i])
		}
		scale := madAroundZero(resid)
		if scale == 0 || math.IsNaN(scale) {
			return a, b
		}
		for i, r := range resid {
			u := math.Abs(r / scale)
			if u <= huberT {
				w[i] = 1
			} else {
				w[i] = huberT / u
			}
		}
		na, nb := stat.LinearRegression(x, y, w, false)
		done := math.Abs(na-a) < irlsTol*(1+math.Abs(a)) && math.Abs(nb-b) < irlsTol*(1+math.Abs(b))
		a, b = na, nb
		if done {
			break
		}
	}
	return a, b
}

func madAroundZero(r []float64) float64 {
	abs := make([]float64, len(r))
	for i, v := range r {
		abs[i] = math.Abs(v)
	}
	return Median(abs) / madNormalize
}
