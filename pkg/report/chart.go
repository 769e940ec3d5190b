package report

import (
	"fmt"
	"image/color"
	"io"

	"github.com/synaptica-ai/afi-risk/pkg/explain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	increaseBar = color.RGBA{R: 0xD6, G: 0x27, B: 0x28, A: 0xFF}
	reduceBar   = color.RGBA{R: 0x2C, G: 0xA0, B: 0x2C, A: 0xFF}
)

// ChartFormat is the image format written by WriteChart.
const ChartFormat = "png"

// WriteChart draws one horizontal bar per feature, most risk-increasing at the
// bottom, red for negative and green for positive contributions.
func WriteChart(w io.Writer, table explain.Table) error {
	if len(table) == 0 {
		return fmt.Errorf("no contributions to plot")
	}
	ranked := table.ByContribution()

	negative := make(plotter.Values, len(ranked))
	positive := make(plotter.Values, len(ranked))
	names := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.Feature
		if r.Contribution > 0 {
			positive[i] = r.Contribution
		} else {
			negative[i] = r.Contribution
		}
	}

	p := plot.New()
	p.Title.Text = "All Feature Contributions (Score-Based)"
	p.X.Label.Text = "Contribution to Risk Score"

	barWidth := vg.Points(9)
	negBars, err := plotter.NewBarChart(negative, barWidth)
	if err != nil {
		return fmt.Errorf("building chart: %w", err)
	}
	negBars.Horizontal = true
	negBars.Color = increaseBar
	negBars.LineStyle.Width = 0

	posBars, err := plotter.NewBarChart(positive, barWidth)
	if err != nil {
		return fmt.Errorf("building chart: %w", err)
	}
	posBars.Horizontal = true
	posBars.Color = reduceBar
	posBars.LineStyle.Width = 0

	zero, err := plotter.NewLine(plotter.XYs{{X: 0, Y: -0.5}, {X: 0, Y: float64(len(ranked)) - 0.5}})
	if err != nil {
		return fmt.Errorf("building chart: %w", err)
	}
	zero.LineStyle.Color = color.Black
	zero.LineStyle.Width = vg.Points(1)
	zero.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}

	p.Add(negBars, posBars, zero)
	p.NominalY(names...)

	height := vg.Length(len(ranked))*vg.Points(14) + 1.5*vg.Inch
	writer, err := p.WriterTo(10*vg.Inch, height, ChartFormat)
	if err != nil {
		return fmt.Errorf("encoding chart: %w", err)
	}
	_, err = writer.WriteTo(w)
	return err
}
