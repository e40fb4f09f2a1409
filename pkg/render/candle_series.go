package render

import (
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/c9s/trendplay/pkg/types"
)

var (
	_ chart.Series = &CandleSeries{}
)

var (
	UpColor   = drawing.ColorFromHex("26a69a")
	DownColor = drawing.ColorFromHex("ef5350")
)

// CandleSeries draws one candle per bar at x = bar index.
type CandleSeries struct {
	Name string

	// BodyRatio is the body width as a fraction of the bar spacing.
	BodyRatio float64

	bars *types.BarSeries
}

func NewCandleSeries(name string, bars *types.BarSeries) *CandleSeries {
	return &CandleSeries{
		Name:      name,
		BodyRatio: 0.6,
		bars:      bars,
	}
}

// Implement chart.Series interface for CandleSeries.
func (cs *CandleSeries) GetName() string {
	return cs.Name
}

func (cs *CandleSeries) GetStyle() chart.Style {
	return chart.Style{
		StrokeWidth: 1.0,
		StrokeColor: UpColor,
	}
}

func (cs *CandleSeries) GetYAxis() chart.YAxisType {
	return chart.YAxisPrimary
}

func (cs *CandleSeries) Validate() error {
	return nil
}

func (cs *CandleSeries) Render(r chart.Renderer, b chart.Box, xRange, yRange chart.Range, style chart.Style) {
	if cs.bars.Len() == 0 {
		return
	}

	spacing := float64(xRange.Translate(1) - xRange.Translate(0))
	half := int(math.Max(1, spacing*cs.BodyRatio/2))

	for i, bar := range cs.bars.All() {
		x := b.Left + xRange.Translate(float64(i))
		high := b.Bottom - yRange.Translate(bar.High.Float64())
		low := b.Bottom - yRange.Translate(bar.Low.Float64())
		open := b.Bottom - yRange.Translate(bar.Open.Float64())
		closePrice := b.Bottom - yRange.Translate(bar.Close.Float64())

		color := UpColor
		if bar.Direction() == types.DirectionDown {
			color = DownColor
		}

		r.SetStrokeColor(color)
		r.SetFillColor(color)
		r.SetStrokeWidth(style.StrokeWidth)

		r.MoveTo(x, high)
		r.LineTo(x, low)
		r.Stroke()

		top, bottom := min(open, closePrice), max(open, closePrice)
		if top == bottom {
			// doji
			r.MoveTo(x-half, top)
			r.LineTo(x+half, top)
			r.Stroke()
			continue
		}

		r.MoveTo(x-half, top)
		r.LineTo(x+half, top)
		r.LineTo(x+half, bottom)
		r.LineTo(x-half, bottom)
		r.Close()
		r.FillStroke()
	}
}
