package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/lungstat-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set lungstat configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		fmt.Printf("sex_column: %s\n", c.SexColumn)
		fmt.Printf("age_column: %s\n", c.AgeColumn)
		fmt.Printf("current_smoker_column: %s\n", c.CurrentSmokerColumn)
		fmt.Printf("ex_smoker_column: %s\n", c.ExSmokerColumn)
		fmt.Printf("never_smoker_column: %s\n", c.NeverSmokerColumn)
		fmt.Printf("copd_column: %s\n", c.COPDColumn)
		fmt.Printf("asthma_column: %s\n", c.AsthmaColumn)
		fmt.Printf("gold_stage_column: %s\n", c.GOLDStageColumn)
		fmt.Printf("cancer_type_column: %s\n", c.CancerTypeColumn)
		fmt.Printf("sex_labels: %s\n", strings.Join(c.SexLabels, ","))
		fmt.Printf("excluded_cancer_types: %s\n", strings.Join(c.ExcludedCancerTypes, ","))
		fmt.Printf("alpha: %.3f\n", c.Alpha)
		fmt.Printf("anova_precision: %d\n", c.ANOVAPrecision)
		fmt.Printf("correlation_precision: %d\n", c.CorrelationPrecision)
		fmt.Printf("chart_width: %d\n", c.ChartWidth)
		fmt.Printf("chart_height: %d\n", c.ChartHeight)
		fmt.Printf("chart_dpi: %.0f\n", c.ChartDPI)
		fmt.Printf("log_level: %s\n", c.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := currentConfig()
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	strs := map[string]*string{
		"sex_column":            &c.SexColumn,
		"age_column":            &c.AgeColumn,
		"current_smoker_column": &c.CurrentSmokerColumn,
		"ex_smoker_column":      &c.ExSmokerColumn,
		"never_smoker_column":   &c.NeverSmokerColumn,
		"copd_column":           &c.COPDColumn,
		"asthma_column":         &c.AsthmaColumn,
		"gold_stage_column":     &c.GOLDStageColumn,
		"cancer_type_column":    &c.CancerTypeColumn,
		"log_level":             &c.LogLevel,
	}
	if p, ok := strs[key]; ok {
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
		*p = strings.TrimSpace(val)
		return nil
	}
	ints := map[string]*int{
		"anova_precision":       &c.ANOVAPrecision,
		"correlation_precision": &c.CorrelationPrecision,
		"chart_width":           &c.ChartWidth,
		"chart_height":          &c.ChartHeight,
	}
	if p, ok := ints[key]; ok {
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		*p = i
		return nil
	}
	switch key {
	case "sex_labels":
		labels := splitList(val)
		if len(labels) == 0 {
			return fmt.Errorf("sex_labels must not be empty")
		}
		c.SexLabels = labels
	case "excluded_cancer_types":
		c.ExcludedCancerTypes = splitList(val)
	case "alpha":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 || f >= 1 {
			return fmt.Errorf("invalid alpha: %v (want a value in (0, 1))", val)
		}
		c.Alpha = f
	case "chart_dpi":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid float for chart_dpi: %v", val)
		}
		c.ChartDPI = f
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
