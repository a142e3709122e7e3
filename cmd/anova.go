package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/lungstat-cli/internal/analysis"
	"github.com/KaramelBytes/lungstat-cli/internal/utils"
)

const anovaResultsFile = "gender_anova_tukey_results.csv"

var (
	anovaHealthy   bool
	anovaPrecision int
)

var anovaCmd = &cobra.Command{
	Use:   "anova <file> <params> <outdir>",
	Short: "Compare smoking groups within each sex with ANOVA and Tukey HSD",
	Long: `Runs a one-way ANOVA across the current, ex and never smoker groups for every
sex and parameter. Where the ANOVA is significant, Tukey HSD pairwise adjusted
p-values and mean differences are added. Results go to
<outdir>/gender_anova_tukey_results.csv.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, outDir := args[0], args[2]
		params, err := parseParams(args[1])
		if err != nil {
			return err
		}
		c := currentConfig()
		precision := c.ANOVAPrecision
		if cmd.Flags().Changed("precision") {
			precision = anovaPrecision
		}

		t, mode, err := loadCohort(path, params, false, anovaHealthy)
		if err != nil {
			return err
		}
		rows := analysis.StratifiedANOVA(t, analysis.ANOVAOptions{
			SexLabels: c.SexLabels,
			Params:    params,
			Alpha:     c.Alpha,
			Logger:    &logger,
		})

		if err := utils.EnsureDir(outDir); err != nil {
			return err
		}
		out := filepath.Join(outDir, anovaResultsFile)
		if err := writeTable(analysis.ANOVATable(rows, precision), out); err != nil {
			return err
		}
		m := newManifest("anova", path, params, mode, t)
		m.AddOutput(out)
		if err := m.Write(filepath.Join(outDir, "run.json")); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote ANOVA results for %d parameter(s) to %s\n", len(params), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(anovaCmd)
	anovaCmd.Flags().BoolVar(&anovaHealthy, "healthy", false, "restrict to subjects without diagnosed lung disease")
	anovaCmd.Flags().IntVar(&anovaPrecision, "precision", 4, "decimal places in the output (overrides config)")
}
