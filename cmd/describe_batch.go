package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/lungstat-cli/internal/utils"
)

var (
	dbParams  string
	dbHealthy bool
	dbOutDir  string
	dbQuiet   bool
)

var describeBatchCmd = &cobra.Command{
	Use:   "describe-batch <files...>",
	Short: "Summarize several cohort files (globs allowed) into an output directory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		seen := map[string]struct{}{}
		for _, arg := range args {
			matches, _ := filepath.Glob(arg)
			if len(matches) == 0 {
				// treat as literal path if exists
				if _, err := os.Stat(arg); err == nil {
					matches = []string{arg}
				}
			}
			for _, m := range matches {
				if _, ok := seen[m]; ok {
					continue
				}
				seen[m] = struct{}{}
				files = append(files, m)
			}
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		sort.Strings(files)
		if err := utils.EnsureDir(dbOutDir); err != nil {
			return err
		}

		total := len(files)
		for i, path := range files {
			if !dbQuiet {
				fmt.Printf("[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			md, err := describeFile(path, dbParams, dbHealthy)
			if err != nil {
				return err
			}
			base := filepath.Base(path)
			safe := strings.TrimSuffix(base, filepath.Ext(base))
			outFile := summaryPath(dbOutDir, safe)
			if filepath.Base(outFile) != safe+".summary.md" && !dbQuiet {
				fmt.Printf("⚠ Detected existing summary, writing to %s to avoid overwrite.\n", filepath.Base(outFile))
			}
			if err := utils.SafeWriteFile(outFile, []byte(md)); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !dbQuiet {
				fmt.Printf("✓ Wrote %s\n", outFile)
			}
		}
		return nil
	},
}

// summaryPath returns <dir>/<base>.summary.md, or the first free
// <base>__N.summary.md when that exists.
func summaryPath(dir, base string) string {
	out := filepath.Join(dir, base+".summary.md")
	if _, err := os.Stat(out); err != nil {
		return out
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d.summary.md", base, idx))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}

func init() {
	rootCmd.AddCommand(describeBatchCmd)
	describeBatchCmd.Flags().StringVar(&dbParams, "params", "", "comma-separated numeric parameters to describe")
	describeBatchCmd.Flags().BoolVar(&dbHealthy, "healthy", false, "restrict to subjects without diagnosed lung disease")
	describeBatchCmd.Flags().StringVarP(&dbOutDir, "outdir", "o", "summaries", "directory for the .summary.md files")
	describeBatchCmd.Flags().BoolVar(&dbQuiet, "quiet", false, "suppress progress and non-essential output")
}
