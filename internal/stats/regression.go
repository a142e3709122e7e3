package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInsufficientData is returned when a computation needs more observations.
var ErrInsufficientData = errors.New("insufficient data")

// LinearFit is a simple OLS fit y = Intercept + Slope*x.
type LinearFit struct {
	N         int
	Pearson   float64
	Intercept float64
	Slope     float64
	RSquared  float64
	SlopeSE   float64
	SlopeP    float64 // two-sided t-test of Slope == 0
}

// FitLinear computes the Pearson correlation of x and y and the OLS fit of
// y on x with intercept. Fewer than two pairs is an error; constant inputs
// propagate NaN.
func FitLinear(x, y []float64) (LinearFit, error) {
	if len(x) != len(y) {
		return LinearFit{}, errors.New("x and y must have the same length")
	}
	n := len(x)
	if n < 2 {
		return LinearFit{}, ErrInsufficientData
	}
	fit := LinearFit{N: n}
	fit.Pearson = stat.Correlation(x, y, nil)
	fit.Intercept, fit.Slope = stat.LinearRegression(x, y, nil, false)
	fit.RSquared = stat.RSquared(x, y, nil, fit.Intercept, fit.Slope)

	xm := stat.Mean(x, nil)
	var sxx, ssr float64
	for i := range x {
		sxx += (x[i] - xm) * (x[i] - xm)
		r := y[i] - (fit.Intercept + fit.Slope*x[i])
		ssr += r * r
	}
	dof := float64(n - 2)
	fit.SlopeSE = math.NaN()
	fit.SlopeP = math.NaN()
	if dof > 0 && sxx > 0 {
		fit.SlopeSE = math.Sqrt(ssr / dof / sxx)
		t := fit.Slope / fit.SlopeSE
		switch {
		case math.IsNaN(t):
		case math.IsInf(t, 0):
			fit.SlopeP = 0
		default:
			fit.SlopeP = 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}.Survival(math.Abs(t))
		}
	}
	return fit, nil
}
