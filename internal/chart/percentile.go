package chart

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/KaramelBytes/lungstat-cli/internal/cohort"
	"github.com/KaramelBytes/lungstat-cli/internal/stats"
)

// Percentile levels drawn as trend lines, lowest first.
var PercentileLevels = []float64{0.10, 0.30, 0.50, 0.70, 0.90}

// PercentileStatuses is the order in which smoking groups are rendered.
var PercentileStatuses = []cohort.SmokingStatus{cohort.NeverSmoker, cohort.ExSmoker, cohort.CurrentSmoker}

const (
	trendFrom = 45.0
	trendTo   = 85.0
)

// AgeBin is a half-open age interval [Lower, Upper) labelled by Lower.
type AgeBin struct {
	Lower float64
	Upper float64
}

// AgeBins returns two-year bins from 40 to 88 plus an overflow bin [88, 100).
func AgeBins() []AgeBin {
	var bins []AgeBin
	for lo := 40.0; lo < 88; lo += 2 {
		bins = append(bins, AgeBin{Lower: lo, Upper: lo + 2})
	}
	return append(bins, AgeBin{Lower: 88, Upper: 100})
}

// binFor returns the index of the bin containing age, or -1.
func binFor(bins []AgeBin, age float64) int {
	if math.IsNaN(age) {
		return -1
	}
	i := sort.Search(len(bins), func(i int) bool { return bins[i].Upper > age })
	if i == len(bins) || age < bins[i].Lower {
		return -1
	}
	return i
}

// Band is a straight trend line through one percentile level across age bins.
type Band struct {
	Level     float64
	Intercept float64
	Slope     float64
}

// At evaluates the band at age x.
func (b Band) At(x float64) float64 { return b.Intercept + b.Slope*x }

// ComputeBands bins subjects by age, takes the percentile levels of param in
// each non-empty bin and fits a robust line per level against the bin labels.
// It returns the bands and the number of bins that held data; fewer than two
// bins yields no bands.
func ComputeBands(subjects []cohort.Subject, param string) ([]Band, int) {
	bins := AgeBins()
	perBin := make([][]float64, len(bins))
	for _, s := range subjects {
		v := s.Value(param)
		if math.IsNaN(v) {
			continue
		}
		if i := binFor(bins, s.Age); i >= 0 {
			perBin[i] = append(perBin[i], v)
		}
	}
	var labels []float64
	levels := make([][]float64, len(PercentileLevels))
	for i, vals := range perBin {
		if len(vals) == 0 {
			continue
		}
		labels = append(labels, bins[i].Lower)
		for j, q := range stats.Quantiles(vals, PercentileLevels...) {
			levels[j] = append(levels[j], q)
		}
	}
	if len(labels) < 2 {
		return nil, len(labels)
	}
	bands := make([]Band, len(PercentileLevels))
	for j, lvl := range PercentileLevels {
		a, b := stats.HuberLine(labels, levels[j])
		bands[j] = Band{Level: lvl, Intercept: a, Slope: b}
	}
	return bands, len(labels)
}

// clipLine returns the part of band over [x0, x1] lying within [ylo, yhi].
func clipLine(b Band, x0, x1, ylo, yhi float64) (xs, ys []float64, ok bool) {
	if math.IsNaN(b.Intercept) || math.IsNaN(b.Slope) {
		return nil, nil, false
	}
	lo, hi := x0, x1
	if b.Slope == 0 {
		if b.Intercept < ylo || b.Intercept > yhi {
			return nil, nil, false
		}
	} else {
		xa := (ylo - b.Intercept) / b.Slope
		xb := (yhi - b.Intercept) / b.Slope
		if xa > xb {
			xa, xb = xb, xa
		}
		lo = math.Max(lo, xa)
		hi = math.Min(hi, xb)
	}
	if lo >= hi {
		return nil, nil, false
	}
	return []float64{lo, hi}, []float64{b.At(lo), b.At(hi)}, true
}

// PercentileOptions controls PercentileBands.
type PercentileOptions struct {
	OutDir    string
	Params    []string
	SexLabels []string
	Theme     Theme
	Logger    *zerolog.Logger
}

// PercentileBands writes one chart per parameter, sex and smoking group under
// <OutDir>/percentile and returns the written paths. Cells without at least
// two populated age bins are skipped with a warning.
func PercentileBands(t *cohort.Table, opt PercentileOptions) ([]string, error) {
	log := opt.Logger
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	dir := filepath.Join(opt.OutDir, "percentile")
	var written []string
	for _, param := range opt.Params {
		for _, sex := range opt.SexLabels {
			subjects := t.BySex(sex)
			ylo, yhi := yLimits(cohort.Values(subjects, param))
			if math.IsNaN(ylo) {
				log.Warn().Str("parameter", param).Str("sex", sex).Msg("no values; skipping")
				continue
			}
			for _, st := range PercentileStatuses {
				bands, nbins := ComputeBands(cohort.WithStatus(subjects, st), param)
				if len(bands) == 0 {
					log.Warn().
						Str("parameter", param).
						Str("sex", sex).
						Str("status", st.String()).
						Int("bins", nbins).
						Msg("not enough binned data; skipping")
					continue
				}
				path := filepath.Join(dir, fmt.Sprintf("%s_%s_%s.png", param, sex, st))
				title := Title(sex) + " " + st.Label()
				if err := renderBands(opt.Theme, title, bands, ylo, yhi, path); err != nil {
					return written, err
				}
				log.Debug().Str("path", path).Msg("percentile chart written")
				written = append(written, path)
			}
		}
	}
	return written, nil
}

// yLimits spans the 2.5th to 97.5th percentile of vals, padded when flat.
func yLimits(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return math.NaN(), math.NaN()
	}
	q := stats.Quantiles(vals, 0.025, 0.975)
	if q[0] == q[1] {
		return q[0] - 1, q[1] + 1
	}
	return q[0], q[1]
}

func renderBands(th Theme, title string, bands []Band, ylo, yhi float64, path string) error {
	var series []gochart.Series
	for i, b := range bands {
		xs, ys, ok := clipLine(b, trendFrom, trendTo, ylo, yhi)
		if !ok {
			continue
		}
		col := th.Percentile[i%len(th.Percentile)]
		series = append(series, gochart.ContinuousSeries{
			Name:    fmt.Sprintf("%.0f%%", b.Level*100),
			XValues: xs,
			YValues: ys,
			Style:   gochart.Style{StrokeColor: th.alpha(col), StrokeWidth: th.LineWidth},
		})
	}
	if len(series) == 0 {
		// every band left the visible range; keep an empty frame
		series = append(series, gochart.ContinuousSeries{
			XValues: []float64{trendFrom, trendTo},
			YValues: []float64{ylo, ylo},
			Style:   gochart.Style{StrokeColor: th.Background, StrokeWidth: 1},
		})
	}

	c := th.base(title)
	c.XAxis = gochart.XAxis{
		Name:           "Age",
		NameStyle:      th.axisStyle(),
		Style:          th.axisStyle(),
		Range:          &gochart.ContinuousRange{Min: trendFrom, Max: trendTo},
		Ticks:          linearTicks(trendFrom, trendTo, 9, "%.0f"),
		GridMajorStyle: th.gridStyle(),
	}
	c.YAxis = gochart.YAxis{
		Style:          th.axisStyle(),
		Range:          &gochart.ContinuousRange{Min: ylo, Max: yhi},
		Ticks:          linearTicks(ylo, yhi, 6, "%.2f"),
		GridMajorStyle: th.gridStyle(),
	}
	c.Series = series
	c.Elements = []gochart.Renderable{gochart.Legend(&c)}
	return render(c, PNG, path)
}

// linearTicks places n evenly spaced ticks from lo to hi inclusive.
func linearTicks(lo, hi float64, n int, format string) []gochart.Tick {
	ticks := make([]gochart.Tick, n)
	step := (hi - lo) / float64(n-1)
	for i := range ticks {
		v := lo + float64(i)*step
		ticks[i] = gochart.Tick{Value: v, Label: fmt.Sprintf(format, v)}
	}
	return ticks
}
