package experiment

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/agrisense/biocat/gain"
	biocatErrors "github.com/agrisense/biocat/pkg/errors"
	"github.com/agrisense/biocat/risk"
)

// Series is one labelled curve sampled for plotting.
type Series struct {
	Label string
	X     []float64
	Y     []float64
}

var curvePalette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
}

// GainCurves samples every registered gain function over the valid risk
// range, ready for RenderGainCurves.
func GainCurves(reg *risk.Registry, points int) ([]Series, error) {
	if points < 2 {
		return nil, biocatErrors.NewValueError("experiment.GainCurves", "need at least 2 points")
	}
	var out []Series
	for _, label := range reg.Labels() {
		fn, ok := reg.Get(label)
		if !ok {
			return nil, biocatErrors.NewValueError("experiment.GainCurves",
				"unknown gain strategy "+label)
		}
		xs, ys := gain.Curve(fn, risk.IndexMin, risk.IndexMax, points)
		out = append(out, Series{Label: label, X: xs, Y: ys})
	}
	return out, nil
}

// RenderGainCurves writes a line chart of the sampled gain curves to path.
// The image format follows the file extension.
func RenderGainCurves(series []Series, path string) error {
	p := plot.New()
	p.Title.Text = "Gain curves"
	p.X.Label.Text = "risk index"
	p.Y.Label.Text = "sample weight"
	p.Legend.Top = true

	for i, s := range series {
		pts := make(plotter.XYs, len(s.X))
		for k := range s.X {
			pts[k].X = s.X[k]
			pts[k].Y = s.Y[k]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return biocatErrors.NewModelError("experiment.RenderGainCurves", "building line", err)
		}
		line.Width = vg.Points(1.5)
		line.Color = curvePalette[i%len(curvePalette)]
		p.Add(line)
		p.Legend.Add(s.Label, line)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return biocatErrors.NewModelError("experiment.RenderGainCurves", "saving chart", err)
	}
	return nil
}

// RenderMetricBars writes a bar chart of one metric across all models of a
// scenario to path.
func RenderMetricBars(t *ResultTable, scenario, metric, path string) error {
	models, values := t.MetricSeries(scenario, metric)
	if len(models) == 0 {
		return biocatErrors.NewValueError("experiment.RenderMetricBars",
			"no results for scenario "+scenario)
	}

	p := plot.New()
	p.Title.Text = scenario
	p.Y.Label.Text = metric

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(22))
	if err != nil {
		return biocatErrors.NewModelError("experiment.RenderMetricBars", "building bars", err)
	}
	bars.LineStyle.Width = 0
	bars.Color = curvePalette[0]
	p.Add(bars)
	p.NominalX(models...)
	p.X.Tick.Label.Rotation = 0.6
	p.X.Tick.Label.XAlign = -0.8

	if err := p.Save(9*vg.Inch, 5*vg.Inch, path); err != nil {
		return biocatErrors.NewModelError("experiment.RenderMetricBars", "saving chart", err)
	}
	return nil
}
