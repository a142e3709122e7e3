package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/lungstat-cli/internal/cohort"
	"github.com/KaramelBytes/lungstat-cli/internal/stats"
)

// Summary is a markdown-friendly description of a loaded cohort.
type Summary struct {
	Name     string
	Filter   cohort.FilterMode
	Stats    cohort.LoadStats
	Analysed int
	Params   []string
	Groups   []GroupSummary
	Warnings []string
}

// GroupSummary describes one (sex, smoking status) stratum.
type GroupSummary struct {
	Sex     string
	Status  cohort.SmokingStatus
	Size    int
	Metrics []ParamSummary
}

// ParamSummary holds descriptive statistics of one parameter in a stratum.
type ParamSummary struct {
	Name    string
	Count   int
	Missing int
	Mean    float64
	Std     float64
	Min     float64
	Max     float64
	Median  float64
}

// Summarize builds per-stratum descriptive statistics for every loaded
// parameter. Subjects whose sex matches none of sexLabels are reported as a
// warning.
func Summarize(t *cohort.Table, sexLabels []string, filter cohort.FilterMode) *Summary {
	s := &Summary{
		Name:     t.Name,
		Filter:   filter,
		Stats:    t.Stats,
		Analysed: t.Len(),
		Params:   t.Params,
	}
	matched := 0
	for _, sex := range sexLabels {
		subjects := t.BySex(sex)
		matched += len(subjects)
		for _, st := range cohort.Statuses {
			grp := cohort.WithStatus(subjects, st)
			if len(grp) == 0 {
				continue
			}
			g := GroupSummary{Sex: sex, Status: st, Size: len(grp)}
			for _, p := range t.Params {
				ps := describe(p, cohort.Values(grp, p), len(grp))
				if ps.Count < 2 {
					s.Warnings = append(s.Warnings, fmt.Sprintf("%s %s: %s has %d observation(s)", sex, st, p, ps.Count))
				}
				g.Metrics = append(g.Metrics, ps)
			}
			s.Groups = append(s.Groups, g)
		}
	}
	if other := t.Len() - matched; other > 0 {
		s.Warnings = append(s.Warnings, fmt.Sprintf("%d subject(s) with sex outside %s are excluded from stratified analyses",
			other, strings.Join(sexLabels, "/")))
	}
	return s
}

func describe(name string, vals []float64, total int) ParamSummary {
	ps := ParamSummary{
		Name:    name,
		Count:   len(vals),
		Missing: total - len(vals),
		Mean:    math.NaN(),
		Std:     math.NaN(),
		Min:     math.NaN(),
		Max:     math.NaN(),
		Median:  math.NaN(),
	}
	if len(vals) == 0 {
		return ps
	}
	ps.Mean = stat.Mean(vals, nil)
	if len(vals) > 1 {
		ps.Std = stat.StdDev(vals, nil)
	}
	ps.Min = floats.Min(vals)
	ps.Max = floats.Max(vals)
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	ps.Median = stats.Quantile(sorted, 0.5)
	return ps
}

// Markdown renders the summary in sectioned plain-text markdown.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[COHORT SUMMARY]\n")
	if s.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Name))
	}
	b.WriteString(fmt.Sprintf("Rows read: %d\n", s.Stats.Read))
	b.WriteString(fmt.Sprintf("Rows without smoking status: %d\n", s.Stats.NoStatus))
	b.WriteString(fmt.Sprintf("Rows analysed: %d\n", s.Analysed))
	if len(s.Params) > 0 {
		b.WriteString(fmt.Sprintf("Parameters: %s\n", strings.Join(s.Params, ", ")))
	}
	b.WriteString("\n[FILTER]\n")
	b.WriteString(fmt.Sprintf("Mode: %s\n", s.Filter))
	if s.Filter == cohort.FilterHealthy {
		b.WriteString(fmt.Sprintf("Removed by filter: %d\n", s.Stats.Filtered))
	}

	if len(s.Groups) > 0 {
		b.WriteString("\n[GROUPS]\n")
		for _, g := range s.Groups {
			b.WriteString(fmt.Sprintf("- %s / %s (n=%d)\n", g.Sex, g.Status.Label(), g.Size))
			for _, m := range g.Metrics {
				if m.Count == 0 {
					b.WriteString(fmt.Sprintf("  • %s: no values\n", m.Name))
					continue
				}
				b.WriteString(fmt.Sprintf("  • %s: n %d, missing %d, mean %.4g, std %.4g, median %.4g (min %.4g, max %.4g)\n",
					m.Name, m.Count, m.Missing, m.Mean, m.Std, m.Median, m.Min, m.Max))
			}
		}
	}
	if len(s.Warnings) > 0 {
		b.WriteString("\n[WARNINGS]\n")
		for _, w := range s.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	return b.String()
}
