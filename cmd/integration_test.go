package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cfgpkg "github.com/KaramelBytes/lungstat-cli/internal/config"
)

// resetFlags restores every flag of c and its subcommands to its default so
// values do not leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	if err := execCmd(args...); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

func execCmd(args ...string) error {
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// writeCohortCSV writes 90 subjects: 15 per sex and smoking group, with fev1
// shifted by smoking group and fvc unrelated to it, plus one row without a
// smoking status and one COPD row.
func writeCohortCSV(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("id,sex,age,current_smoker,ex_smoker,never_smoker,copd_diagnosis,asthma_diagnosis,GOLD_stage,cancer_type,fev1,fvc\n")
	shift := []float64{-1.0, -0.5, 0}
	for i := 0; i < 90; i++ {
		st := i % 3
		sex := "Male"
		if (i/3)%2 == 1 {
			sex = "Female"
		}
		age := 42 + float64((i*7)%44)
		fev1 := 4 - 0.02*age + shift[st] + float64(i%5)*0.05
		fvc := 5 - 0.015*age + float64((i*3)%7)*0.04
		flags := []string{"False", "False", "False"}
		flags[st] = "True"
		fmt.Fprintf(&b, "%d,%s,%.0f,%s,%s,%s,False,False,0,,%.3f,%.3f\n", i+1, sex, age, flags[0], flags[1], flags[2], fev1, fvc)
	}
	b.WriteString("91,Male,60,False,False,False,False,False,0,,3.0,4.0\n")
	b.WriteString("92,Female,66,False,True,False,True,False,2,,2.0,3.1\n")
	path := filepath.Join(dir, "cohort.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write cohort: %v", err)
	}
	return path
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return recs
}

func column(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func TestCLI_AnovaWritesResults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	in := writeCohortCSV(t, home)
	out := filepath.Join(home, "anova")

	runCmd(t, "anova", in, "fev1,fvc", out)

	recs := readCSV(t, filepath.Join(out, anovaResultsFile))
	if len(recs) != 1+2*2 {
		t.Fatalf("rows = %d, want header + sexes x params", len(recs))
	}
	header := recs[0]
	if strings.Join(header[:5], ",") != "gender,parameter,anova_f,anova_p,significant" {
		t.Fatalf("header = %v", header)
	}
	sig := column(header, "significant")
	md := column(header, "meandiff_current_smoker_vs_never_smoker")
	if md < 0 {
		t.Fatalf("missing pairwise columns in %v", header)
	}
	male := recs[1]
	if male[0] != "Male" || male[1] != "fev1" || male[sig] != "True" {
		t.Fatalf("male fev1 row = %v", male)
	}
	if !strings.HasPrefix(male[md], "1") {
		t.Fatalf("never minus current should be about +1, got %s", male[md])
	}
	if _, err := os.Stat(filepath.Join(out, "run.json")); err != nil {
		t.Fatalf("missing run manifest: %v", err)
	}
}

func TestCLI_AnovaMissingColumn(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	in := writeCohortCSV(t, home)
	err := execCmd("anova", in, "fev1,tlc", filepath.Join(home, "out"))
	if err == nil || !strings.Contains(err.Error(), "tlc") {
		t.Fatalf("expected missing column error naming tlc, got %v", err)
	}
}

func TestCLI_CorrelateWritesRowsAndManifest(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	in := writeCohortCSV(t, home)
	out := filepath.Join(home, "res", "corr.csv")

	runCmd(t, "correlate", in, "fev1,fvc", out, "age", "--healthy")

	recs := readCSV(t, out)
	if got := strings.Join(recs[0], ","); got != "Group,Parameter,Pearson Correlation,R-squared,P-value" {
		t.Fatalf("header = %s", got)
	}
	if len(recs) != 1+2*3*2 {
		t.Fatalf("rows = %d, want header + sexes x groups x params", len(recs))
	}
	if recs[1][0] != "Male_current_smoker" || recs[1][1] != "fev1" {
		t.Fatalf("first row = %v", recs[1])
	}
	for _, r := range recs[1:] {
		if i := strings.Index(r[2], "."); i >= 0 && len(r[2])-i-1 > 2 {
			t.Fatalf("correlation not rounded to 2 places: %s", r[2])
		}
	}
	b, err := os.ReadFile(out + ".run.json")
	if err != nil {
		t.Fatalf("missing manifest: %v", err)
	}
	if !strings.Contains(string(b), `"filter": "healthy"`) || !strings.Contains(string(b), `"filtered_out": 1`) {
		t.Fatalf("manifest content: %s", b)
	}
}

func TestCLI_CorrelateInsufficientData(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	in := filepath.Join(home, "tiny.csv")
	data := "sex,age,current_smoker,ex_smoker,never_smoker,fev1\n" +
		"Male,50,False,True,False,3.1\n" +
		"Female,52,False,True,False,2.9\n" +
		"Female,57,False,True,False,2.7\n"
	if err := os.WriteFile(in, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	err := execCmd("correlate", in, "fev1", filepath.Join(home, "c.csv"), "age")
	if err == nil || !strings.Contains(err.Error(), "Male ex_smoker fev1") {
		t.Fatalf("expected insufficient data error for Male ex_smoker, got %v", err)
	}
}

func TestCLI_ViolinSVG(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	in := writeCohortCSV(t, home)
	out := filepath.Join(home, "violin")

	runCmd(t, "violin", in, out, "fev1,fvc", "--format", "svg")

	for _, p := range []string{"fev1.svg", "fvc.svg", "run.json"} {
		if _, err := os.Stat(filepath.Join(out, p)); err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
	}
}

func TestCLI_ViolinPDF(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	in := writeCohortCSV(t, home)
	out := filepath.Join(home, "violin")

	runCmd(t, "violin", in, out, "fev1", "--format", "pdf")

	b, err := os.ReadFile(filepath.Join(out, "fev1.pdf"))
	if err != nil {
		t.Fatalf("missing fev1.pdf: %v", err)
	}
	if !strings.HasPrefix(string(b), "%PDF") {
		t.Fatalf("fev1.pdf does not start with %%PDF: %q", b[:min(len(b), 16)])
	}
}

func TestCLI_PercentileCharts(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	in := writeCohortCSV(t, home)
	out := filepath.Join(home, "pct")

	runCmd(t, "percentile", in, out, "fev1")

	for _, sex := range []string{"Male", "Female"} {
		for _, st := range []string{"never_smoker", "ex_smoker", "current_smoker"} {
			p := filepath.Join(out, "percentile", fmt.Sprintf("fev1_%s_%s.png", sex, st))
			if _, err := os.Stat(p); err != nil {
				t.Fatalf("missing %s: %v", p, err)
			}
		}
	}
}

func TestCLI_DescribeAndBatch(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	for _, d := range []string{d1, d2} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		writeCohortCSV(t, d)
	}

	md := filepath.Join(home, "summary.md")
	runCmd(t, "describe", filepath.Join(d1, "cohort.csv"), "--params", "fev1", "-o", md)
	body, err := os.ReadFile(md)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	for _, want := range []string{"[COHORT SUMMARY]", "Rows read: 92", "Rows without smoking status: 1", "[GROUPS]", "Male / Current Smoker (n=15)"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("summary missing %q:\n%s", want, body)
		}
	}

	outDir := filepath.Join(home, "summaries")
	runCmd(t, "describe-batch", filepath.Join(home, "d*", "cohort.csv"), "-o", outDir, "--quiet")
	for _, name := range []string{"cohort.summary.md", "cohort__2.summary.md"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestCLI_ConfigSetPersists(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	runCmd(t, "config", "set", "sex_column", "gender")
	runCmd(t, "config", "set", "sex_labels", "M, F")
	if err := execCmd("config", "set", "alpha", "2"); err == nil {
		t.Fatalf("expected invalid alpha to be rejected")
	}

	c, err := cfgpkg.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if c.SexColumn != "gender" || strings.Join(c.SexLabels, "|") != "M|F" {
		t.Fatalf("config not persisted: %+v", c)
	}
	runCmd(t, "config", "show")
}
