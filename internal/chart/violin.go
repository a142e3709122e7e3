package chart

import (
	"fmt"
	"math"
	"path/filepath"

	mstats "github.com/aclements/go-moremath/stats"
	"github.com/rs/zerolog"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"

	"github.com/KaramelBytes/lungstat-cli/internal/cohort"
	"github.com/KaramelBytes/lungstat-cli/internal/stats"
)

const (
	violinHalfWidth = 0.4
	violinPoints    = 100
	// density support extends this many bandwidths past the data
	violinCut = 2.0
)

// density is a kernel density estimate sampled on a grid.
type density struct {
	ys   []float64
	pdf  []float64
	kde  *mstats.KDE
	flat bool // all values equal or a single value; drawn as one line
}

// ScottBandwidth is sd * n^(-1/5) with the sample standard deviation.
func ScottBandwidth(vals []float64) float64 {
	s := mstats.Sample{Xs: vals}
	return s.StdDev() * math.Pow(float64(len(vals)), -0.2)
}

func estimate(vals []float64) density {
	if len(vals) == 0 {
		return density{}
	}
	bw := ScottBandwidth(vals)
	if len(vals) < 2 || bw == 0 || math.IsNaN(bw) {
		return density{ys: []float64{vals[0]}, pdf: []float64{1}, flat: true}
	}
	kde := &mstats.KDE{Sample: mstats.Sample{Xs: vals}, Bandwidth: bw}
	lo := floats.Min(vals) - violinCut*bw
	hi := floats.Max(vals) + violinCut*bw
	d := density{ys: make([]float64, violinPoints), pdf: make([]float64, violinPoints), kde: kde}
	floats.Span(d.ys, lo, hi)
	for i, y := range d.ys {
		d.pdf[i] = kde.PDF(y)
	}
	return d
}

func (d density) at(y float64) float64 {
	if d.flat {
		return 1
	}
	return d.kde.PDF(y)
}

func (d density) max() float64 {
	if len(d.pdf) == 0 {
		return 0
	}
	return floats.Max(d.pdf)
}

// halfViolin is one side of a split violin in data coordinates.
type halfViolin struct {
	center    float64
	ys        []float64
	widths    []float64
	quartiles [3]float64
	qwidths   [3]float64
}

func newHalf(center float64, vals []float64, d density, scale float64) halfViolin {
	h := halfViolin{center: center, ys: d.ys, widths: make([]float64, len(d.pdf))}
	for i, p := range d.pdf {
		h.widths[i] = p * scale
	}
	for i, q := range stats.Quantiles(vals, 0.25, 0.5, 0.75) {
		h.quartiles[i] = q
		h.qwidths[i] = d.at(q) * scale
	}
	return h
}

// violinSeries draws the halves on one side of every category.
type violinSeries struct {
	name     string
	side     float64 // -1 left, +1 right
	style    gochart.Style
	quartile drawing.Color
	halves   []halfViolin
}

func (s violinSeries) GetName() string             { return s.name }
func (s violinSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }
func (s violinSeries) GetStyle() gochart.Style     { return s.style }
func (s violinSeries) Validate() error {
	for _, h := range s.halves {
		if len(h.ys) != len(h.widths) || len(h.ys) == 0 {
			return fmt.Errorf("violin %q: malformed density at x=%v", s.name, h.center)
		}
	}
	return nil
}

func (s violinSeries) Render(r gochart.Renderer, box gochart.Box, xr, yr gochart.Range, _ gochart.Style) {
	px := func(x float64) int { return box.Left + xr.Translate(x) }
	py := func(y float64) int { return box.Bottom - yr.Translate(y) }
	for _, h := range s.halves {
		r.SetFillColor(s.style.FillColor)
		r.SetStrokeColor(s.style.StrokeColor)
		r.SetStrokeWidth(s.style.StrokeWidth)
		r.SetStrokeDashArray(nil)
		if len(h.ys) == 1 {
			r.MoveTo(px(h.center), py(h.ys[0]))
			r.LineTo(px(h.center+s.side*h.widths[0]), py(h.ys[0]))
			r.Stroke()
			continue
		}
		r.MoveTo(px(h.center), py(h.ys[0]))
		for i, y := range h.ys {
			r.LineTo(px(h.center+s.side*h.widths[i]), py(y))
		}
		r.LineTo(px(h.center), py(h.ys[len(h.ys)-1]))
		r.Close()
		r.FillStroke()

		r.SetStrokeColor(s.quartile)
		r.SetStrokeWidth(1)
		for i, q := range h.quartiles {
			if i == 1 {
				r.SetStrokeDashArray(nil)
			} else {
				r.SetStrokeDashArray([]float64{4, 4})
			}
			r.MoveTo(px(h.center), py(q))
			r.LineTo(px(h.center+s.side*h.qwidths[i]), py(q))
			r.Stroke()
		}
	}
}

// ViolinOptions controls Violin. The first two SexLabels are drawn on the
// left and right halves respectively.
type ViolinOptions struct {
	OutDir    string
	Params    []string
	SexLabels []string
	Format    Format
	Theme     Theme
	Logger    *zerolog.Logger
}

// Violin writes one split violin chart per parameter to
// <OutDir>/<param>.<format> and returns the written paths. Smoking groups
// appear on the x axis in order of first appearance.
func Violin(t *cohort.Table, opt ViolinOptions) ([]string, error) {
	if len(opt.SexLabels) < 2 {
		return nil, fmt.Errorf("violin needs two sex labels, got %d", len(opt.SexLabels))
	}
	log := opt.Logger
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	format := opt.Format
	if format == "" {
		format = PNG
	}
	statuses := t.StatusesPresent()
	left, right := t.BySex(opt.SexLabels[0]), t.BySex(opt.SexLabels[1])

	var written []string
	for _, param := range opt.Params {
		var (
			sides  [2][][]float64
			dens   [2][]density
			maxPDF float64
			ylo    = math.Inf(1)
			yhi    = math.Inf(-1)
		)
		for side, subjects := range [2][]cohort.Subject{left, right} {
			sides[side] = make([][]float64, len(statuses))
			dens[side] = make([]density, len(statuses))
			for i, st := range statuses {
				vals := cohort.Values(cohort.WithStatus(subjects, st), param)
				d := estimate(vals)
				sides[side][i] = vals
				dens[side][i] = d
				if !d.flat {
					maxPDF = math.Max(maxPDF, d.max())
				}
				for _, y := range d.ys {
					ylo = math.Min(ylo, y)
					yhi = math.Max(yhi, y)
				}
			}
		}
		if math.IsInf(ylo, 1) {
			log.Warn().Str("parameter", param).Msg("no values; skipping")
			continue
		}
		if maxPDF == 0 {
			maxPDF = 1
		}
		scale := violinHalfWidth / maxPDF

		th := opt.Theme
		colors := [2]drawing.Color{th.Left, th.Right}
		var series []gochart.Series
		for side := range sides {
			vs := violinSeries{
				name:     Title(opt.SexLabels[side]),
				side:     float64(2*side - 1),
				style:    gochart.Style{FillColor: colors[side], StrokeColor: colors[side], StrokeWidth: 1},
				quartile: th.Outline,
			}
			for i := range statuses {
				vals, d := sides[side][i], dens[side][i]
				if len(vals) == 0 {
					continue
				}
				s := scale
				if d.flat {
					s = violinHalfWidth
				}
				vs.halves = append(vs.halves, newHalf(float64(i), vals, d, s))
			}
			series = append(series, vs)
		}

		if ylo == yhi {
			ylo, yhi = ylo-1, yhi+1
		}
		pad := (yhi - ylo) * 0.05
		ylo, yhi = ylo-pad, yhi+pad

		c := th.base("")
		c.XAxis = gochart.XAxis{
			Style: th.axisStyle(),
			Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(len(statuses)) - 0.5},
			Ticks: categoryTicks(statuses),
		}
		c.YAxis = gochart.YAxis{
			Name:           Title(param),
			NameStyle:      th.axisStyle(),
			Style:          th.axisStyle(),
			Range:          &gochart.ContinuousRange{Min: ylo, Max: yhi},
			Ticks:          linearTicks(ylo, yhi, 6, "%.2f"),
			GridMajorStyle: th.gridStyle(),
		}
		c.Series = series
		c.Elements = []gochart.Renderable{gochart.Legend(&c)}

		path := filepath.Join(opt.OutDir, fmt.Sprintf("%s.%s", param, format))
		if err := render(c, format, path); err != nil {
			return written, err
		}
		log.Debug().Str("path", path).Msg("violin chart written")
		written = append(written, path)
	}
	return written, nil
}

// categoryTicks labels each category at its integer position; the outer
// blank ticks pin the axis to half a slot past either end.
func categoryTicks(statuses []cohort.SmokingStatus) []gochart.Tick {
	n := len(statuses)
	ticks := []gochart.Tick{{Value: -0.5, Label: ""}}
	for i, st := range statuses {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: st.Label()})
	}
	return append(ticks, gochart.Tick{Value: float64(n) - 0.5, Label: ""})
}
