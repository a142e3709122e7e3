package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Column names in the input CSV
	SexColumn           string `mapstructure:"sex_column" yaml:"sex_column"`
	AgeColumn           string `mapstructure:"age_column" yaml:"age_column"`
	CurrentSmokerColumn string `mapstructure:"current_smoker_column" yaml:"current_smoker_column"`
	ExSmokerColumn      string `mapstructure:"ex_smoker_column" yaml:"ex_smoker_column"`
	NeverSmokerColumn   string `mapstructure:"never_smoker_column" yaml:"never_smoker_column"`
	COPDColumn          string `mapstructure:"copd_column" yaml:"copd_column"`
	AsthmaColumn        string `mapstructure:"asthma_column" yaml:"asthma_column"`
	GOLDStageColumn     string `mapstructure:"gold_stage_column" yaml:"gold_stage_column"`
	CancerTypeColumn    string `mapstructure:"cancer_type_column" yaml:"cancer_type_column"`

	// Stratification
	SexLabels           []string `mapstructure:"sex_labels" yaml:"sex_labels"`
	ExcludedCancerTypes []string `mapstructure:"excluded_cancer_types" yaml:"excluded_cancer_types"`

	// Statistics
	Alpha                float64 `mapstructure:"alpha" yaml:"alpha"`
	ANOVAPrecision       int     `mapstructure:"anova_precision" yaml:"anova_precision"`
	CorrelationPrecision int     `mapstructure:"correlation_precision" yaml:"correlation_precision"`

	// Charts
	ChartWidth  int     `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int     `mapstructure:"chart_height" yaml:"chart_height"`
	ChartDPI    float64 `mapstructure:"chart_dpi" yaml:"chart_dpi"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns the configuration used when no file or env overrides exist.
func Default() *Global {
	return &Global{
		SexColumn:            "sex",
		AgeColumn:            "age",
		CurrentSmokerColumn:  "current_smoker",
		ExSmokerColumn:       "ex_smoker",
		NeverSmokerColumn:    "never_smoker",
		COPDColumn:           "copd_diagnosis",
		AsthmaColumn:         "asthma_diagnosis",
		GOLDStageColumn:      "GOLD_stage",
		CancerTypeColumn:     "cancer_type",
		SexLabels:            []string{"Male", "Female"},
		ExcludedCancerTypes:  []string{"LONGKANKER", "BORST LONG"},
		Alpha:                0.05,
		ANOVAPrecision:       4,
		CorrelationPrecision: 2,
		ChartWidth:           1200,
		ChartHeight:          900,
		ChartDPI:             150,
		LogLevel:             "info",
	}
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.lungstat/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("LUNGSTAT")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("sex_column", d.SexColumn)
	v.SetDefault("age_column", d.AgeColumn)
	v.SetDefault("current_smoker_column", d.CurrentSmokerColumn)
	v.SetDefault("ex_smoker_column", d.ExSmokerColumn)
	v.SetDefault("never_smoker_column", d.NeverSmokerColumn)
	v.SetDefault("copd_column", d.COPDColumn)
	v.SetDefault("asthma_column", d.AsthmaColumn)
	v.SetDefault("gold_stage_column", d.GOLDStageColumn)
	v.SetDefault("cancer_type_column", d.CancerTypeColumn)
	v.SetDefault("sex_labels", d.SexLabels)
	v.SetDefault("excluded_cancer_types", d.ExcludedCancerTypes)
	v.SetDefault("alpha", d.Alpha)
	v.SetDefault("anova_precision", d.ANOVAPrecision)
	v.SetDefault("correlation_precision", d.CorrelationPrecision)
	v.SetDefault("chart_width", d.ChartWidth)
	v.SetDefault("chart_height", d.ChartHeight)
	v.SetDefault("chart_dpi", d.ChartDPI)
	v.SetDefault("log_level", d.LogLevel)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(c.SexLabels) == 0 {
		return nil, fmt.Errorf("sex_labels must not be empty")
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return nil, fmt.Errorf("alpha must be in (0, 1), got %v", c.Alpha)
	}
	return &c, nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".lungstat"), nil
}
