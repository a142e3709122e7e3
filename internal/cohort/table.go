package cohort

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrMissingColumn is returned when a required column is absent from the input.
var ErrMissingColumn = errors.New("missing column")

// Columns names the input columns the loader reads.
type Columns struct {
	Sex           string
	Age           string
	CurrentSmoker string
	ExSmoker      string
	NeverSmoker   string
	COPD          string
	Asthma        string
	GOLDStage     string
	CancerType    string
}

// LoadOptions controls how a cohort CSV is read and filtered.
type LoadOptions struct {
	Columns Columns
	// Params are the numeric columns to extract into Subject.Values.
	Params []string
	// RequireAge fails the load when the age column is absent.
	RequireAge bool
	// Delimiter for CSV; 0 means ','.
	Delimiter rune
	// DecimalSeparator for numeric cells; 0 auto-detects per value.
	DecimalSeparator rune
	// XLSX sheet selection; SheetName wins, SheetIndex is 1-based.
	SheetName  string
	SheetIndex int
	Filter     FilterMode
	Healthy    HealthyFilter
}

// Subject is one observation row after smoking-status derivation.
type Subject struct {
	Sex        string
	Smoking    SmokingStatus
	Age        float64
	COPD       bool
	Asthma     bool
	GOLDStage  string
	CancerType string
	Values     map[string]float64
}

// Value returns the named parameter or NaN when it was not loaded.
func (s Subject) Value(param string) float64 {
	v, ok := s.Values[param]
	if !ok {
		return math.NaN()
	}
	return v
}

// LoadStats counts rows at each loading stage.
type LoadStats struct {
	Read     int
	NoStatus int
	Filtered int
}

// Table is an in-memory cohort ready for stratified analysis.
type Table struct {
	Name     string
	Params   []string
	Subjects []Subject
	Stats    LoadStats
}

// Load reads a cohort from a CSV/TSV or XLSX file, choosing by extension.
func Load(path string, opt LoadOptions) (*Table, error) {
	var (
		t   *Table
		err error
	)
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		var records [][]string
		records, err = ReadXLSXRecords(path, opt.SheetName, opt.SheetIndex)
		if err != nil {
			return nil, err
		}
		t, err = fromFrame(dataframe.LoadRecords(records, frameOptions()...), opt)
	default:
		if opt.Delimiter == 0 && strings.HasSuffix(lower, ".tsv") {
			opt.Delimiter = '\t'
		}
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open csv: %w", err)
		}
		defer f.Close()
		t, err = Read(f, opt)
	}
	if err != nil {
		return nil, err
	}
	t.Name = filepath.Base(path)
	return t, nil
}

// Read parses a cohort CSV stream: derives smoking status per row, drops rows
// without a status and applies the configured population filter.
func Read(r io.Reader, opt LoadOptions) (*Table, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}
	df := dataframe.ReadCSV(r, append(frameOptions(), dataframe.WithDelimiter(delim))...)
	return fromFrame(df, opt)
}

// All columns are read as strings; typing happens per cell in this package.
func frameOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	}
}

func fromFrame(df dataframe.DataFrame, opt LoadOptions) (*Table, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("read table: %w", df.Err)
	}

	cols := opt.Columns
	required := []string{cols.Sex, cols.CurrentSmoker, cols.ExSmoker, cols.NeverSmoker}
	if opt.RequireAge {
		required = append(required, cols.Age)
	}
	if opt.Filter == FilterHealthy {
		required = append(required, cols.COPD, cols.Asthma, cols.GOLDStage, cols.CancerType)
	}
	required = append(required, opt.Params...)

	present := make(map[string]struct{}, df.Ncol())
	for _, n := range df.Names() {
		present[n] = struct{}{}
	}
	var missing []string
	for _, name := range required {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	records := func(name string) []string {
		if _, ok := present[name]; !ok || name == "" {
			return nil
		}
		return df.Col(name).Records()
	}
	sex := records(cols.Sex)
	cur := records(cols.CurrentSmoker)
	ex := records(cols.ExSmoker)
	never := records(cols.NeverSmoker)
	age := records(cols.Age)
	copd := records(cols.COPD)
	asthma := records(cols.Asthma)
	gold := records(cols.GOLDStage)
	cancer := records(cols.CancerType)
	params := make(map[string][]string, len(opt.Params))
	for _, p := range opt.Params {
		params[p] = records(p)
	}

	at := func(col []string, i int) string {
		if col == nil {
			return ""
		}
		return col[i]
	}

	t := &Table{Params: opt.Params}
	n := df.Nrow()
	t.Stats.Read = n
	for i := 0; i < n; i++ {
		status := DeriveSmokingStatus(parseBool(cur[i]), parseBool(ex[i]), parseBool(never[i]))
		if status == NoStatus {
			t.Stats.NoStatus++
			continue
		}
		s := Subject{
			Sex:        strings.TrimSpace(sex[i]),
			Smoking:    status,
			Age:        math.NaN(),
			COPD:       parseBool(at(copd, i)),
			Asthma:     parseBool(at(asthma, i)),
			GOLDStage:  strings.TrimSpace(at(gold, i)),
			CancerType: strings.TrimSpace(at(cancer, i)),
			Values:     make(map[string]float64, len(opt.Params)),
		}
		if age != nil {
			s.Age = parseNumeric(age[i], opt.DecimalSeparator)
		}
		for _, p := range opt.Params {
			s.Values[p] = parseNumeric(params[p][i], opt.DecimalSeparator)
		}
		if opt.Filter == FilterHealthy && !opt.Healthy.Keep(s) {
			t.Stats.Filtered++
			continue
		}
		t.Subjects = append(t.Subjects, s)
	}
	return t, nil
}

// Len returns the number of subjects kept.
func (t *Table) Len() int { return len(t.Subjects) }

// Where returns the subjects for which keep reports true.
func (t *Table) Where(keep func(Subject) bool) []Subject {
	var out []Subject
	for _, s := range t.Subjects {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// BySex returns the subjects whose sex matches label, ignoring case.
func (t *Table) BySex(label string) []Subject {
	return t.Where(func(s Subject) bool { return strings.EqualFold(s.Sex, label) })
}

// StatusesPresent returns the smoking categories in order of first appearance.
func (t *Table) StatusesPresent() []SmokingStatus {
	seen := map[SmokingStatus]bool{}
	var out []SmokingStatus
	for _, s := range t.Subjects {
		if !seen[s.Smoking] {
			seen[s.Smoking] = true
			out = append(out, s.Smoking)
		}
	}
	return out
}

// Values extracts a parameter from subjects, skipping missing values.
func Values(subjects []Subject, param string) []float64 {
	out := make([]float64, 0, len(subjects))
	for _, s := range subjects {
		v := s.Value(param)
		if math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// WithStatus returns the subjects in the given smoking category.
func WithStatus(subjects []Subject, status SmokingStatus) []Subject {
	var out []Subject
	for _, s := range subjects {
		if s.Smoking == status {
			out = append(out, s)
		}
	}
	return out
}
