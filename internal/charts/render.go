package charts

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/wonny/housedash/internal/contracts"
)

// ErrEmptyChart is returned when a spec has nothing to draw
var ErrEmptyChart = errors.New("chart has no points")

const (
	width  = 10 * vg.Inch
	height = 5 * vg.Inch
)

var palette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
}

// RenderPNG draws spec and writes a PNG image to w
func RenderPNG(spec contracts.ChartSpec, w io.Writer) error {
	if !hasPoints(spec) {
		return ErrEmptyChart
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	p.Add(plotter.NewGrid())

	var err error
	switch spec.Kind {
	case contracts.ChartBar:
		err = addBars(p, spec)
	case contracts.ChartLine, contracts.ChartForecast:
		err = addLines(p, spec)
	default:
		err = fmt.Errorf("unknown chart kind %q", spec.Kind)
	}
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func addLines(p *plot.Plot, spec contracts.ChartSpec) error {
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}

	for i, s := range spec.Series {
		if len(s.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			xys[j].X = float64(pt.Date.Time().Unix())
			xys[j].Y = pt.Value
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("line %s: %w", s.Name, err)
		}
		line.Color = palette[i%len(palette)]
		line.Width = vg.Points(2)
		// 예측 구간은 점선
		if s.Name == "Forecast" {
			line.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		}

		p.Add(line)
		p.Legend.Add(s.Name, line)
	}
	p.Legend.Top = true
	return nil
}

func addBars(p *plot.Plot, spec contracts.ChartSpec) error {
	s := spec.Series[0]

	values := make(plotter.Values, len(s.Points))
	labels := make([]string, len(s.Points))
	for i, pt := range s.Points {
		values[i] = pt.Value
		labels[i] = pt.Date.String()
	}

	bars, err := plotter.NewBarChart(values, barWidth(len(values)))
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = palette[0]
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	// 라벨이 너무 많으면 일부만 표시
	step := len(labels)/24 + 1
	for i := range labels {
		if i%step != 0 {
			labels[i] = ""
		}
	}
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = 0.8
	return nil
}

func barWidth(n int) vg.Length {
	w := (width - vg.Inch) / vg.Length(n+1)
	if w < vg.Points(1) {
		return vg.Points(1)
	}
	return w
}

func hasPoints(spec contracts.ChartSpec) bool {
	for _, s := range spec.Series {
		if len(s.Points) > 0 {
			return true
		}
	}
	return false
}
