package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/lungstat-cli/internal/analysis"
)

// P-values are rounded to this many places before the table-wide rounding.
const pValuePrecision = 4

var (
	corrHealthy   bool
	corrPrecision int
)

var correlateCmd = &cobra.Command{
	Use:   "correlate <file> <params> <output.csv> <ind_var>",
	Short: "Correlate each parameter with an independent variable per sex and smoking group",
	Long: `For every sex, parameter and smoking group present in the data, fits
parameter = a + b*ind_var by least squares and reports the Pearson correlation,
R-squared and the slope p-value.`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, out, indVar := args[0], args[2], args[3]
		params, err := parseParams(args[1])
		if err != nil {
			return err
		}
		c := currentConfig()
		precision := c.CorrelationPrecision
		if cmd.Flags().Changed("precision") {
			precision = corrPrecision
		}

		load := append([]string{}, params...)
		if !contains(load, indVar) {
			load = append(load, indVar)
		}
		t, mode, err := loadCohort(path, load, false, corrHealthy)
		if err != nil {
			return err
		}
		rows, err := analysis.StratifiedCorrelation(t, analysis.CorrelationOptions{
			SexLabels:   c.SexLabels,
			Params:      params,
			Independent: indVar,
			Logger:      &logger,
		})
		if err != nil {
			return fmt.Errorf("correlate: %w", err)
		}
		if err := writeTable(analysis.CorrelationTable(rows, pValuePrecision, precision), out); err != nil {
			return err
		}
		m := newManifest("correlate", path, params, mode, t)
		m.AddOutput(out)
		if err := m.Write(out + ".run.json"); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %d correlation row(s) to %s\n", len(rows), out)
		return nil
	},
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(correlateCmd)
	correlateCmd.Flags().BoolVar(&corrHealthy, "healthy", false, "restrict to subjects without diagnosed lung disease")
	correlateCmd.Flags().IntVar(&corrPrecision, "precision", 2, "decimal places in the output (overrides config)")
}
