package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/lungstat-cli/internal/analysis"
	"github.com/KaramelBytes/lungstat-cli/internal/utils"
)

var (
	descParams  string
	descHealthy bool
	descOutput  string
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Summarize a cohort per sex and smoking group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		md, err := describeFile(args[0], descParams, descHealthy)
		if err != nil {
			return err
		}
		if descOutput != "" {
			if err := utils.SafeWriteFile(descOutput, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote cohort summary to %s\n", descOutput)
			return nil
		}
		fmt.Println(md)
		return nil
	},
}

// describeFile loads path and renders its cohort summary as markdown.
func describeFile(path, paramList string, healthy bool) (string, error) {
	var params []string
	if paramList != "" {
		p, err := parseParams(paramList)
		if err != nil {
			return "", err
		}
		params = p
	}
	t, mode, err := loadCohort(path, params, false, healthy)
	if err != nil {
		return "", err
	}
	return analysis.Summarize(t, currentConfig().SexLabels, mode).Markdown(), nil
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVar(&descParams, "params", "", "comma-separated numeric parameters to describe")
	describeCmd.Flags().BoolVar(&descHealthy, "healthy", false, "restrict to subjects without diagnosed lung disease")
	describeCmd.Flags().StringVarP(&descOutput, "output", "o", "", "optional path to write the summary (Markdown)")
}
