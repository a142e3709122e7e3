package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// TukeyPair is one row of a Tukey HSD summary table.
type TukeyPair struct {
	Group1   string
	Group2   string
	MeanDiff float64 // mean(Group2) - mean(Group1)
	PAdj     float64
	Lower    float64
	Upper    float64
	Reject   bool
}

// TukeyResult holds all pairwise comparisons of a Tukey HSD test.
type TukeyResult struct {
	Groups []string
	MSE    float64
	DF     float64
	QCrit  float64
	Pairs  []TukeyPair
}

// TukeyHSD runs Tukey's honestly significant difference test over the
// labelled groups. Groups are ordered by label and every pair (i<j) is
// compared; empty groups are ignored.
func TukeyHSD(groups map[string][]float64, alpha float64) TukeyResult {
	labels := make([]string, 0, len(groups))
	for l, g := range groups {
		if len(g) > 0 {
			labels = append(labels, l)
		}
	}
	sort.Strings(labels)
	res := TukeyResult{Groups: labels, MSE: math.NaN(), DF: math.NaN(), QCrit: math.NaN()}
	k := len(labels)
	if k < 2 {
		return res
	}

	means := make([]float64, k)
	nobs := make([]float64, k)
	var n int
	var ssw float64
	for i, l := range labels {
		g := groups[l]
		nobs[i] = float64(len(g))
		means[i] = floats.Sum(g) / nobs[i]
		for _, v := range g {
			ssw += (v - means[i]) * (v - means[i])
		}
		n += len(g)
	}
	df := float64(n - k)
	res.DF = df
	if df > 0 {
		res.MSE = ssw / df
		res.QCrit = StudentizedRangeQuantile(1-alpha, k, df)
	}

	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			diff := means[j] - means[i]
			se := math.Sqrt(res.MSE * (1/nobs[i] + 1/nobs[j]) / 2)
			p := math.NaN()
			if !math.IsNaN(se) {
				if se == 0 {
					if diff == 0 {
						p = 1
					} else {
						p = 0
					}
				} else {
					p = 1 - StudentizedRangeCDF(math.Abs(diff)/se, k, df)
				}
			}
			pair := TukeyPair{
				Group1:   labels[i],
				Group2:   labels[j],
				MeanDiff: diff,
				PAdj:     clamp01OrNaN(p),
				Lower:    diff - res.QCrit*se,
				Upper:    diff + res.QCrit*se,
			}
			pair.Reject = pair.PAdj < alpha
			res.Pairs = append(res.Pairs, pair)
		}
	}
	return res
}

func clamp01OrNaN(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return clamp01(v)
}
