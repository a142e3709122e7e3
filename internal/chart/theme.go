// Package chart renders the cohort comparison charts with go-chart.
package chart

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/lungstat-cli/internal/utils"
)

// Format selects the image encoding.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
	// PDF is a single page holding the PNG rendering at its print size.
	PDF Format = "pdf"
)

// ParseFormat accepts "png", "svg" or "pdf", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case PNG, "":
		return PNG, nil
	case SVG:
		return SVG, nil
	case PDF:
		return PDF, nil
	default:
		return "", fmt.Errorf("unsupported image format %q (want png, svg or pdf)", s)
	}
}

func (f Format) provider() gochart.RendererProvider {
	if f == SVG {
		return gochart.SVG
	}
	return gochart.PNG
}

// Theme carries the visual settings shared by every chart.
type Theme struct {
	Width    int
	Height   int
	DPI      float64
	FontSize float64

	Background drawing.Color
	Grid       drawing.Color
	Text       drawing.Color
	Outline    drawing.Color

	// Left and Right colour the two halves of a split violin.
	Left  drawing.Color
	Right drawing.Color

	// Percentile colours the trend lines from the lowest to the highest level.
	Percentile []drawing.Color
	LineAlpha  float64
	LineWidth  float64
}

// DefaultTheme is a white background with light grey grid lines.
func DefaultTheme() Theme {
	return Theme{
		Width:      1200,
		Height:     900,
		DPI:        150,
		FontSize:   10,
		Background: drawing.ColorWhite,
		Grid:       drawing.ColorFromHex("cccccc"),
		Text:       drawing.ColorFromHex("262626"),
		Outline:    drawing.ColorFromHex("3f3f3f"),
		Left:       drawing.ColorFromHex("0000ff"),
		Right:      drawing.ColorFromHex("fa8072"),
		Percentile: []drawing.Color{
			drawing.ColorFromHex("00bfff"), // deepskyblue
			drawing.ColorFromHex("3cb371"), // mediumseagreen
			drawing.ColorFromHex("008000"), // green
			drawing.ColorFromHex("ffa500"), // orange
			drawing.ColorFromHex("ff0000"), // red
		},
		LineAlpha: 0.5,
		LineWidth: 2,
	}
}

// WithSize overrides the canvas size and resolution; zero values keep the
// current setting.
func (t Theme) WithSize(width, height int, dpi float64) Theme {
	if width > 0 {
		t.Width = width
	}
	if height > 0 {
		t.Height = height
	}
	if dpi > 0 {
		t.DPI = dpi
	}
	return t
}

func (t Theme) alpha(c drawing.Color) drawing.Color {
	return c.WithAlpha(uint8(t.LineAlpha*255 + 0.5))
}

func (t Theme) gridStyle() gochart.Style {
	return gochart.Style{StrokeColor: t.Grid, StrokeWidth: 1}
}

func (t Theme) axisStyle() gochart.Style {
	return gochart.Style{FontSize: t.FontSize, FontColor: t.Text, StrokeColor: t.Outline}
}

func (t Theme) base(title string) gochart.Chart {
	return gochart.Chart{
		Title:      title,
		TitleStyle: gochart.Style{FontSize: t.FontSize + 3, FontColor: t.Text},
		Width:      t.Width,
		Height:     t.Height,
		DPI:        t.DPI,
		Background: gochart.Style{
			FillColor: t.Background,
			Padding:   gochart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: gochart.Style{FillColor: t.Background},
	}
}

var titleCaser = cases.Title(language.English)

// Title title-cases a column or category name, treating underscores as spaces.
func Title(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// render encodes c and writes it atomically to path.
func render(c gochart.Chart, format Format, path string) error {
	var buf bytes.Buffer
	if err := c.Render(format.provider(), &buf); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	out := buf.Bytes()
	if format == PDF {
		doc, err := wrapPDF(out, c.GetWidth(), c.GetHeight(), c.GetDPI())
		if err != nil {
			return fmt.Errorf("render %s: %w", path, err)
		}
		out = doc
	}
	if err := utils.SafeWriteFile(path, out); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// wrapPDF places a PNG on one page sized to the image at the given DPI.
func wrapPDF(png []byte, width, height int, dpi float64) ([]byte, error) {
	if dpi <= 0 {
		dpi = gochart.DefaultDPI
	}
	w := float64(width) * 72 / dpi
	h := float64(height) * 72 / dpi
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	opt := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("chart", opt, bytes.NewReader(png))
	pdf.ImageOptions("chart", 0, 0, w, h, false, opt, 0, "")
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("encode pdf: %w", err)
	}
	return buf.Bytes(), nil
}
