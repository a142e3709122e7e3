package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/lungstat-cli/internal/config"
)

var (
	// Global flags
	cfgFile    string
	debug      bool
	logFormat  string
	flagDelim  string
	flagDec    string
	sheetName  string
	sheetIndex int

	// Loaded configuration
	cfg *cfgpkg.Global

	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "lungstat",
	Short: "lungstat: stratified lung-function cohort analysis",
	Long: `lungstat reads a lung-function cohort table (CSV, TSV or XLSX), derives each
subject's smoking status and compares the smoking groups within each sex:
one-way ANOVA with Tukey HSD, univariate correlation, split violin charts and
age percentile bands.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.lungstat/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log output: console|json")
	rootCmd.PersistentFlags().StringVar(&flagDelim, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default ',' or tab for .tsv)")
	rootCmd.PersistentFlags().StringVar(&flagDec, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	rootCmd.PersistentFlags().StringVar(&sheetName, "sheet-name", "", "XLSX: sheet name to read")
	rootCmd.PersistentFlags().IntVar(&sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Fall back to defaults so config set can repair a bad file
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c
	logger = newLogger(os.Stderr, logFormat, cfg.LogLevel, debug)
}

// newLogger builds the process logger; debug overrides the configured level.
func newLogger(w io.Writer, format, level string, debug bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	if !strings.EqualFold(format, "json") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// currentConfig returns the loaded configuration, loading it on demand.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}
