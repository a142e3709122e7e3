package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/lungstat-cli/internal/chart"
	"github.com/KaramelBytes/lungstat-cli/internal/utils"
)

var (
	violinHealthy bool
	violinFormat  string
)

var violinCmd = &cobra.Command{
	Use:   "violin <file> <outdir> <params>",
	Short: "Draw split violin charts of each parameter by smoking group and sex",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, outDir := args[0], args[1]
		params, err := parseParams(args[2])
		if err != nil {
			return err
		}
		format, err := chart.ParseFormat(violinFormat)
		if err != nil {
			return err
		}
		t, mode, err := loadCohort(path, params, false, violinHealthy)
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(outDir); err != nil {
			return err
		}
		paths, err := chart.Violin(t, chart.ViolinOptions{
			OutDir:    outDir,
			Params:    params,
			SexLabels: currentConfig().SexLabels,
			Format:    format,
			Theme:     chartTheme(),
			Logger:    &logger,
		})
		if err != nil {
			return err
		}
		m := newManifest("violin", path, params, mode, t)
		for _, p := range paths {
			m.AddOutput(p)
		}
		if err := m.Write(filepath.Join(outDir, "run.json")); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %d violin chart(s) to %s\n", len(paths), outDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(violinCmd)
	violinCmd.Flags().BoolVar(&violinHealthy, "healthy", false, "restrict to subjects without diagnosed lung disease")
	violinCmd.Flags().StringVar(&violinFormat, "format", "png", "image format: png|svg|pdf")
}
