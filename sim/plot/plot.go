// Package plot renders averaged checkpoint series as PNG line charts.
package plot

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/inference-sim/twincity/sim"
)

// ErrNoData is returned when nothing plottable remains after dropping undefined points.
var ErrNoData = errors.New("no plottable data")

const (
	width  = 960
	height = 540
)

// palette is cycled across series.
var palette = []drawing.Color{
	chart.ColorRed,
	chart.ColorBlue,
	chart.ColorGreen,
	{R: 255, G: 165, B: 0, A: 255},
}

// Labeled names one series of a comparison chart.
type Labeled struct {
	Label  string
	Series sim.Series
}

// Render draws the local real, detected and active rates of s.
func Render(w io.Writer, title string, s sim.Series) error {
	var lines []chart.Series
	for i, f := range sim.RateFields {
		if line, ok := line(f.Name(), s, f, i); ok {
			lines = append(lines, line)
		}
	}
	return render(w, title, "rate", lastStep(s), lines)
}

// RenderComparison draws one field of several series on shared axes.
func RenderComparison(w io.Writer, title string, field sim.Field, all []Labeled) error {
	var (
		lines []chart.Series
		maxX  float64
	)
	for i, l := range all {
		if ln, ok := line(l.Label, l.Series, field, i); ok {
			lines = append(lines, ln)
		}
		maxX = math.Max(maxX, lastStep(l.Series))
	}
	return render(w, title, field.Name(), maxX, lines)
}

func render(w io.Writer, title, yName string, maxX float64, lines []chart.Series) error {
	if len(lines) == 0 {
		return ErrNoData
	}
	graph := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "step",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(maxX, 1)},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:           yName,
			Style:          chart.Style{FontSize: 10.0},
			Range:          &chart.ContinuousRange{Min: 0, Max: 1},
			ValueFormatter: chart.PercentValueFormatter,
		},
		Series: lines,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("rendering %q: %w", title, err)
	}
	return nil
}

// line converts one field of s into a chart series, skipping NaN checkpoints.
func line(name string, s sim.Series, f sim.Field, idx int) (chart.ContinuousSeries, bool) {
	var xs, ys []float64
	for _, c := range s {
		v := f.Value(c)
		if math.IsNaN(v) {
			continue
		}
		xs = append(xs, float64(c.Step))
		ys = append(ys, v)
	}
	if len(xs) == 0 {
		return chart.ContinuousSeries{}, false
	}
	return chart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style:   chart.Style{StrokeColor: palette[idx%len(palette)], StrokeWidth: 3.0},
	}, true
}

func lastStep(s sim.Series) float64 {
	if len(s) == 0 {
		return 0
	}
	return float64(s[len(s)-1].Step)
}
