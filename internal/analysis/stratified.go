package analysis

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/KaramelBytes/lungstat-cli/internal/cohort"
	"github.com/KaramelBytes/lungstat-cli/internal/stats"
)

// ANOVAOptions controls StratifiedANOVA.
type ANOVAOptions struct {
	SexLabels []string
	Params    []string
	// Alpha is the significance level for both the ANOVA and Tukey tests.
	Alpha  float64
	Logger *zerolog.Logger
}

// ANOVARow is the result for one (sex, parameter) cell.
type ANOVARow struct {
	Sex         string
	Parameter   string
	ANOVA       stats.ANOVAResult
	Significant bool
	// Tukey is set only when the ANOVA is significant.
	Tukey *stats.TukeyResult
}

// StratifiedANOVA compares the smoking groups of each sex with a one-way
// ANOVA per parameter and runs Tukey HSD where the ANOVA is significant.
// Missing parameter values are dropped listwise per group before testing.
// Rows are ordered sex-major, then by parameter.
func StratifiedANOVA(t *cohort.Table, opt ANOVAOptions) []ANOVARow {
	log := loggerOrNop(opt.Logger)
	alpha := opt.Alpha
	if alpha <= 0 {
		alpha = 0.05
	}
	rows := make([]ANOVARow, 0, len(opt.SexLabels)*len(opt.Params))
	for _, sex := range opt.SexLabels {
		subjects := t.BySex(sex)
		for _, param := range opt.Params {
			groups := make(map[string][]float64, len(cohort.Statuses))
			samples := make([][]float64, 0, len(cohort.Statuses))
			for _, st := range cohort.Statuses {
				vals := cohort.Values(cohort.WithStatus(subjects, st), param)
				groups[st.String()] = vals
				samples = append(samples, vals)
			}
			res := stats.OneWayANOVA(samples...)
			row := ANOVARow{Sex: sex, Parameter: param, ANOVA: res}
			// NaN compares false, so degenerate cells are never significant.
			if res.P < alpha {
				row.Significant = true
				tk := stats.TukeyHSD(groups, alpha)
				row.Tukey = &tk
			}
			log.Debug().
				Str("sex", sex).
				Str("parameter", param).
				Float64("f", res.F).
				Float64("p", res.P).
				Bool("significant", row.Significant).
				Msg("anova")
			rows = append(rows, row)
		}
	}
	return rows
}

// ANOVATable shapes ANOVA rows into the output layout and rounds every
// numeric field to precision decimals.
func ANOVATable(rows []ANOVARow, precision int) *Table {
	out := &Table{}
	for _, r := range rows {
		row := NewRow()
		row.Set("gender", r.Sex)
		row.Set("parameter", r.Parameter)
		row.Set("anova_f", r.ANOVA.F)
		row.Set("anova_p", r.ANOVA.P)
		row.Set("significant", r.Significant)
		if r.Tukey != nil {
			for _, p := range r.Tukey.Pairs {
				suffix := p.Group1 + "_vs_" + p.Group2
				row.Set("pvalue_"+suffix, p.PAdj)
				row.Set("meandiff_"+suffix, p.MeanDiff)
			}
		}
		out.Add(row)
	}
	out.Round(precision)
	return out
}

// CorrelationOptions controls StratifiedCorrelation.
type CorrelationOptions struct {
	SexLabels []string
	Params    []string
	// Independent is the x variable every parameter is regressed on.
	Independent string
	Logger      *zerolog.Logger
}

// CorrelationRow is the result for one (sex, smoking group, parameter) cell.
type CorrelationRow struct {
	Sex       string
	Status    cohort.SmokingStatus
	Parameter string
	Fit       stats.LinearFit
}

// Group is the "<sex>_<status>" label used in the output.
func (r CorrelationRow) Group() string { return r.Sex + "_" + r.Status.String() }

// StratifiedCorrelation fits parameter ~ independent for every sex, parameter
// and smoking group present in the table. A cell with fewer than two complete
// observations aborts the run.
func StratifiedCorrelation(t *cohort.Table, opt CorrelationOptions) ([]CorrelationRow, error) {
	log := loggerOrNop(opt.Logger)
	statuses := t.StatusesPresent()
	var rows []CorrelationRow
	for _, sex := range opt.SexLabels {
		subjects := t.BySex(sex)
		for _, param := range opt.Params {
			for _, st := range statuses {
				x, y := pairs(cohort.WithStatus(subjects, st), opt.Independent, param)
				log.Info().Msgf("calculating %s wrt %s for %s %s", param, opt.Independent, sex, st)
				fit, err := stats.FitLinear(x, y)
				if err != nil {
					return nil, fmt.Errorf("%s %s %s (n=%d): %w", sex, st, param, len(x), err)
				}
				rows = append(rows, CorrelationRow{Sex: sex, Status: st, Parameter: param, Fit: fit})
			}
		}
	}
	return rows, nil
}

// CorrelationTable shapes correlation rows into the output layout. The
// p-value is rounded to pPrecision first, then every numeric field to
// precision.
func CorrelationTable(rows []CorrelationRow, pPrecision, precision int) *Table {
	out := &Table{}
	for _, r := range rows {
		row := NewRow()
		row.Set("Group", r.Group())
		row.Set("Parameter", r.Parameter)
		row.Set("Pearson Correlation", r.Fit.Pearson)
		row.Set("R-squared", r.Fit.RSquared)
		row.Set("P-value", stats.Round(r.Fit.SlopeP, pPrecision))
		out.Add(row)
	}
	out.Round(precision)
	return out
}

// pairs returns the complete (x, y) observations of subjects.
func pairs(subjects []cohort.Subject, xName, yName string) (x, y []float64) {
	for _, s := range subjects {
		xv, yv := s.Value(xName), s.Value(yName)
		if math.IsNaN(xv) || math.IsNaN(yv) {
			continue
		}
		x = append(x, xv)
		y = append(y, yv)
	}
	return x, y
}

func loggerOrNop(l *zerolog.Logger) *zerolog.Logger {
	if l != nil {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}
