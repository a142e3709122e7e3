package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/lungstat-cli/internal/chart"
	"github.com/KaramelBytes/lungstat-cli/internal/utils"
)

var percentileHealthy bool

var percentileCmd = &cobra.Command{
	Use:   "percentile <file> <outdir> <params>",
	Short: "Draw age percentile trend bands per sex and smoking group",
	Long: `Bins subjects into two-year age bins from 40 to 88 (plus 88-100), takes the
10/30/50/70/90th percentiles of each parameter per bin and draws a robust
linear trend per percentile. One PNG per parameter, sex and smoking group is
written to <outdir>/percentile/.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, outDir := args[0], args[1]
		params, err := parseParams(args[2])
		if err != nil {
			return err
		}
		t, mode, err := loadCohort(path, params, true, percentileHealthy)
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(outDir); err != nil {
			return err
		}
		paths, err := chart.PercentileBands(t, chart.PercentileOptions{
			OutDir:    outDir,
			Params:    params,
			SexLabels: currentConfig().SexLabels,
			Theme:     chartTheme(),
			Logger:    &logger,
		})
		if err != nil {
			return err
		}
		m := newManifest("percentile", path, params, mode, t)
		for _, p := range paths {
			m.AddOutput(p)
		}
		if err := m.Write(filepath.Join(outDir, "run.json")); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %d percentile chart(s) to %s\n", len(paths), filepath.Join(outDir, "percentile"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(percentileCmd)
	percentileCmd.Flags().BoolVar(&percentileHealthy, "healthy", false, "restrict to subjects without diagnosed lung disease")
}
