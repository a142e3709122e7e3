package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/KaramelBytes/lungstat-cli/internal/analysis"
	"github.com/KaramelBytes/lungstat-cli/internal/chart"
	"github.com/KaramelBytes/lungstat-cli/internal/cohort"
	cfgpkg "github.com/KaramelBytes/lungstat-cli/internal/config"
	"github.com/KaramelBytes/lungstat-cli/internal/utils"
)

// parseParams splits a comma-separated parameter list, dropping blanks and
// duplicates.
func parseParams(s string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no parameters given in %q", s)
	}
	return out, nil
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s", s)
	}
}

func parseDecimal(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ",", "comma":
		return ',', nil
	case ".", "dot":
		return '.', nil
	case "":
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", s)
	}
}

func columns(c *cfgpkg.Global) cohort.Columns {
	return cohort.Columns{
		Sex:           c.SexColumn,
		Age:           c.AgeColumn,
		CurrentSmoker: c.CurrentSmokerColumn,
		ExSmoker:      c.ExSmokerColumn,
		NeverSmoker:   c.NeverSmokerColumn,
		COPD:          c.COPDColumn,
		Asthma:        c.AsthmaColumn,
		GOLDStage:     c.GOLDStageColumn,
		CancerType:    c.CancerTypeColumn,
	}
}

// loadCohort reads path with the global input flags and the configured
// column names, applying the healthy filter when requested.
func loadCohort(path string, params []string, requireAge, healthy bool) (*cohort.Table, cohort.FilterMode, error) {
	c := currentConfig()
	mode := cohort.FilterFromFlag(healthy)
	delim, err := parseDelimiter(flagDelim)
	if err != nil {
		return nil, mode, err
	}
	dec, err := parseDecimal(flagDec)
	if err != nil {
		return nil, mode, err
	}
	t, err := cohort.Load(path, cohort.LoadOptions{
		Columns:          columns(c),
		Params:           params,
		RequireAge:       requireAge,
		Delimiter:        delim,
		DecimalSeparator: dec,
		SheetName:        sheetName,
		SheetIndex:       sheetIndex,
		Filter:           mode,
		Healthy:          cohort.HealthyFilter{ExcludedCancerTypes: c.ExcludedCancerTypes},
	})
	if err != nil {
		return nil, mode, fmt.Errorf("load %s: %w", path, err)
	}
	logger.Debug().
		Str("file", t.Name).
		Int("read", t.Stats.Read).
		Int("no_status", t.Stats.NoStatus).
		Int("filtered", t.Stats.Filtered).
		Int("kept", t.Len()).
		Str("filter", mode.String()).
		Msg("cohort loaded")
	if t.Len() == 0 {
		return nil, mode, fmt.Errorf("no subjects left in %s after smoking status derivation and %s filter", path, mode)
	}
	return t, mode, nil
}

func newManifest(command, input string, params []string, mode cohort.FilterMode, t *cohort.Table) *utils.Manifest {
	m := utils.NewManifest(command, input, params, mode.String())
	m.Rows = utils.RowCounts{
		Read:     t.Stats.Read,
		NoStatus: t.Stats.NoStatus,
		Filtered: t.Stats.Filtered,
		Analysed: t.Len(),
	}
	return m
}

// writeTable renders a result table as CSV and writes it atomically.
func writeTable(tab *analysis.Table, path string) error {
	var buf bytes.Buffer
	if err := tab.WriteCSV(&buf); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// chartTheme applies the configured canvas size to the default theme.
func chartTheme() chart.Theme {
	c := currentConfig()
	return chart.DefaultTheme().WithSize(c.ChartWidth, c.ChartHeight, c.ChartDPI)
}
