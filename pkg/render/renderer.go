package render

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/c9s/trendplay/pkg/playback"
	"github.com/c9s/trendplay/pkg/trendline"
	"github.com/c9s/trendplay/pkg/types"
)

var ErrEmptyWindow = errors.New("cannot render an empty bar window")

var (
	SupportColor    = drawing.ColorFromHex("2e7d32")
	ResistanceColor = drawing.ColorFromHex("c62828")
	CloseColor      = drawing.ColorFromHex("90a4ae")
	BaselineColor   = drawing.ColorFromHex("1565c0")
)

type Options struct {
	Width  int
	Height int
	Title  string

	// ShowBaseline adds the least squares regression of the closes.
	ShowBaseline bool
}

func DefaultOptions() Options {
	return Options{
		Width:  1024,
		Height: 576,
	}
}

// Renderer draws bar windows and their trend lines with go-chart.
type Renderer struct {
	options Options
}

func NewRenderer(options Options) *Renderer {
	defaults := DefaultOptions()
	if options.Width <= 0 {
		options.Width = defaults.Width
	}
	if options.Height <= 0 {
		options.Height = defaults.Height
	}
	return &Renderer{options: options}
}

func (r *Renderer) Options() Options {
	return r.options
}

// Chart builds the chart of the bars with the given lines drawn over them.
// Line coordinates are bar indexes of the same series.
func (r *Renderer) Chart(bars *types.BarSeries, lines trendline.LineSet) (*chart.Chart, error) {
	n := bars.Len()
	if n == 0 {
		return nil, ErrEmptyWindow
	}

	yMin, yMax := priceRange(bars)
	xMin, xMax := -0.5, float64(n)-0.5

	c := &chart.Chart{
		Title:  r.title(bars),
		Width:  r.options.Width,
		Height: r.options.Height,
		XAxis: chart.XAxis{
			Range:          &chart.ContinuousRange{Min: xMin, Max: xMax},
			ValueFormatter: indexTimeFormatter(bars),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
			ValueFormatter: func(v interface{}) string {
				if vf, isFloat := v.(float64); isFloat {
					return fmt.Sprintf("%.2f", vf)
				}
				return ""
			},
		},
	}

	c.Series = append(c.Series, NewCandleSeries("price", bars))
	c.Series = append(c.Series, closeSeries(bars))

	if r.options.ShowBaseline {
		if baseline, err := trendline.FitBaseline(bars); err == nil {
			c.Series = append(c.Series, chart.ContinuousSeries{
				Name: fmt.Sprintf("baseline r2=%.2f", baseline.R2),
				Style: chart.Style{
					StrokeColor:     BaselineColor,
					StrokeWidth:     1.0,
					StrokeDashArray: []float64{2.0, 3.0},
				},
				XValues: []float64{0, float64(n - 1)},
				YValues: []float64{baseline.ValueAt(0), baseline.ValueAt(float64(n - 1))},
			})
		}
	}

	for _, line := range lines {
		if s, ok := lineSeries(line, yMin, yMax); ok {
			c.Series = append(c.Series, s)
		}
	}

	c.Elements = []chart.Renderable{
		chart.LegendLeft(c),
	}

	return c, nil
}

// Render draws a playback frame into an image.
func (r *Renderer) Render(frame playback.Frame) (image.Image, error) {
	c, err := r.Chart(frame.Window, frame.Lines)
	if err != nil {
		return nil, err
	}

	collector := &chart.ImageWriter{}
	if err := c.Render(chart.PNG, collector); err != nil {
		return nil, errors.Wrapf(err, "unable to render frame %d", frame.Index)
	}

	return collector.Image()
}

// RenderPNG writes a single chart of the bars and lines as PNG.
func (r *Renderer) RenderPNG(w io.Writer, bars *types.BarSeries, lines trendline.LineSet) error {
	c, err := r.Chart(bars, lines)
	if err != nil {
		return err
	}

	return errors.Wrap(c.Render(chart.PNG, w), "unable to render chart")
}

func (r *Renderer) title(bars *types.BarSeries) string {
	end := bars.EndTime().Format(timeLayout(bars.Interval()))
	if r.options.Title == "" {
		return end
	}
	return r.options.Title + " " + end
}

func closeSeries(bars *types.BarSeries) chart.ContinuousSeries {
	closes := bars.Closes()
	xs := make([]float64, len(closes))
	for i := range xs {
		xs[i] = float64(i)
	}

	return chart.ContinuousSeries{
		Name: "close",
		Style: chart.Style{
			StrokeColor: CloseColor,
			StrokeWidth: 1.0,
		},
		XValues: xs,
		YValues: closes,
	}
}

func lineSeries(line trendline.Line, yMin, yMax float64) (chart.ContinuousSeries, bool) {
	x0, x1, ok := clipLine(line, yMin, yMax)
	if !ok {
		return chart.ContinuousSeries{}, false
	}

	color := SupportColor
	if line.Kind == trendline.Resistance {
		color = ResistanceColor
	}

	return chart.ContinuousSeries{
		Name: fmt.Sprintf("%s %d touches", line.Kind, line.TouchCount),
		Style: chart.Style{
			StrokeColor:     color,
			StrokeWidth:     2.0,
			StrokeDashArray: []float64{6.0, 4.0},
		},
		XValues: []float64{x0, x1},
		YValues: []float64{line.ValueAt(x0), line.ValueAt(x1)},
	}, true
}

// clipLine returns the part of the line span whose values stay inside
// [yMin, yMax].
func clipLine(line trendline.Line, yMin, yMax float64) (float64, float64, bool) {
	x0, x1 := float64(line.Start), float64(line.End)

	if line.Slope == 0 {
		return x0, x1, line.Intercept >= yMin && line.Intercept <= yMax
	}

	a := (yMin - line.Intercept) / line.Slope
	b := (yMax - line.Intercept) / line.Slope
	x0 = math.Max(x0, math.Min(a, b))
	x1 = math.Min(x1, math.Max(a, b))

	return x0, x1, x0 < x1
}

// priceRange pads the low/high extent of the bars by 5%.
func priceRange(bars *types.BarSeries) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, bar := range bars.All() {
		lo = math.Min(lo, bar.Low.Float64())
		hi = math.Max(hi, bar.High.Float64())
	}

	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.01, 1)
	}

	return lo - pad, hi + pad
}

func timeLayout(interval types.Interval) string {
	if interval != "" && !interval.IsIntraday() {
		return "2006-01-02"
	}
	return "01-02 15:04"
}

func indexTimeFormatter(bars *types.BarSeries) chart.ValueFormatter {
	layout := timeLayout(bars.Interval())
	return func(v interface{}) string {
		vf, isFloat := v.(float64)
		if !isFloat {
			return ""
		}

		i := int(math.Round(vf))
		if i < 0 || i >= bars.Len() {
			return ""
		}

		return bars.At(i).Time.Format(layout)
	}
}
