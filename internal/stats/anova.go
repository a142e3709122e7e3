// Package stats implements the group comparison and regression procedures
// used by the stratified analyses.
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ANOVAResult is the outcome of a one-way analysis of variance.
type ANOVAResult struct {
	F         float64
	P         float64
	DFBetween float64
	DFWithin  float64
}

// OneWayANOVA tests whether the group means differ. Degenerate input follows
// the conventional library behaviour: any empty group or no within-group
// degrees of freedom gives NaN; zero within-group variance gives +Inf (p=0)
// when the means differ and NaN when every value is identical.
func OneWayANOVA(groups ...[]float64) ANOVAResult {
	k := len(groups)
	res := ANOVAResult{F: math.NaN(), P: math.NaN()}
	if k < 2 {
		return res
	}
	var n int
	var grand float64
	for _, g := range groups {
		if len(g) == 0 {
			return res
		}
		n += len(g)
		grand += floats.Sum(g)
	}
	grand /= float64(n)
	res.DFBetween = float64(k - 1)
	res.DFWithin = float64(n - k)
	if res.DFWithin <= 0 {
		return res
	}

	var ssb, ssw float64
	for _, g := range groups {
		m := floats.Sum(g) / float64(len(g))
		ssb += float64(len(g)) * (m - grand) * (m - grand)
		for _, v := range g {
			ssw += (v - m) * (v - m)
		}
	}
	if ssw == 0 {
		if ssb == 0 {
			return res
		}
		res.F = math.Inf(1)
		res.P = 0
		return res
	}
	res.F = (ssb / res.DFBetween) / (ssw / res.DFWithin)
	res.P = distuv.F{D1: res.DFBetween, D2: res.DFWithin}.Survival(res.F)
	return res
}
