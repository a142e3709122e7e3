// Package analysis runs the sex- and smoking-stratified procedures over a
// cohort table and shapes their results for output.
package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/KaramelBytes/lungstat-cli/internal/stats"
)

type field struct {
	key   string
	value any
}

// Row is an ordered set of named result fields.
type Row struct {
	fields []field
	index  map[string]int
}

// NewRow returns an empty row.
func NewRow() *Row { return &Row{index: map[string]int{}} }

// Set adds or replaces a field. Supported values are float64, int, bool and string.
func (r *Row) Set(key string, v any) {
	if i, ok := r.index[key]; ok {
		r.fields[i].value = v
		return
	}
	r.index[key] = len(r.fields)
	r.fields = append(r.fields, field{key: key, value: v})
}

// Get returns the value stored under key.
func (r *Row) Get(key string) (any, bool) {
	i, ok := r.index[key]
	if !ok {
		return nil, false
	}
	return r.fields[i].value, true
}

// Float returns a float field, or NaN when absent or not numeric.
func (r *Row) Float(key string) float64 {
	v, _ := r.Get(key)
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	default:
		return math.NaN()
	}
}

// Keys lists the field names in insertion order.
func (r *Row) Keys() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.key
	}
	return out
}

// Table is a list of result rows whose columns are the union of all row
// fields in first-appearance order.
type Table struct {
	Rows []*Row
}

// Add appends a row.
func (t *Table) Add(r *Row) { t.Rows = append(t.Rows, r) }

// Columns returns the union of row keys in first-appearance order.
func (t *Table) Columns() []string {
	seen := map[string]bool{}
	var cols []string
	for _, r := range t.Rows {
		for _, f := range r.fields {
			if !seen[f.key] {
				seen[f.key] = true
				cols = append(cols, f.key)
			}
		}
	}
	return cols
}

// Round rounds every float field to places decimals.
func (t *Table) Round(places int) {
	for _, r := range t.Rows {
		for i, f := range r.fields {
			if x, ok := f.value.(float64); ok {
				r.fields[i].value = stats.Round(x, places)
			}
		}
	}
}

// WriteCSV writes a header and one line per row. Absent fields and NaN are
// written as empty cells; booleans as True/False.
func (t *Table) WriteCSV(w io.Writer) error {
	cols := t.Columns()
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(cols))
	for n, r := range t.Rows {
		for i, c := range cols {
			v, _ := r.Get(c)
			rec[i] = formatCell(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", n+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		if math.IsInf(x, 1) {
			return "inf"
		}
		if math.IsInf(x, -1) {
			return "-inf"
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
