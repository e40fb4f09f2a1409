package trendline

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/c9s/trendplay/pkg/types"
)

// bandEpsilon widens the bands, relative to the price scale, so a bar that
// lies on the line is not pushed across it by float64 rounding of the
// decimal prices.
const bandEpsilon = 1e-9

type FitOptions struct {
	// Tolerance is how far, as a fraction of the price scale, a bar may
	// cross the line before it counts as a violation.
	Tolerance float64

	// TouchTolerance is the band, as a fraction of the price scale, within
	// which a bar counts as touching the line.
	TouchTolerance float64

	// MaxViolations is the number of violating bars a line survives with.
	MaxViolations int

	// RequireDirection keeps only rising support and falling resistance.
	RequireDirection bool
}

// PriceScale returns the median close of the series, used to make the
// tolerances independent of the instrument's price level. For an even
// number of bars it is the lower of the two middle closes, not their mean,
// so the scale is always an observed price.
func PriceScale(series *types.BarSeries) float64 {
	closes := series.Closes()
	if len(closes) == 0 {
		return 0
	}

	sort.Float64s(closes)
	return stat.Quantile(0.5, stat.Empirical, closes, nil)
}

// FitLines builds a candidate line for every ordered pair of pivots of the
// kind's polarity and keeps the ones the bars between the anchors respect.
//
// Each pair only scans the bars strictly between its anchors, so the cost
// is O(P²·N) for P pivots of the kind and N bars. Pivots are sparse, which
// keeps P small; scanning the whole series for every pair would not be.
func FitLines(series *types.BarSeries, pivots []Pivot, kind LineKind, options FitOptions) []Line {
	anchors := FilterPivots(pivots, kind.PivotKind())
	if len(anchors) < 2 {
		return nil
	}

	scale := PriceScale(series)
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		log.Debugf("skip %s lines: degenerate price scale %f", kind, scale)
		return nil
	}

	var lines []Line
	for a := 0; a < len(anchors); a++ {
		for b := a + 1; b < len(anchors); b++ {
			line, ok := fitPair(series, anchors, a, b, kind, scale, options)
			if !ok {
				continue
			}
			lines = append(lines, line)
		}
	}

	log.Debugf("fitted %d %s lines from %d pivots", len(lines), kind, len(anchors))
	return lines
}

func fitPair(series *types.BarSeries, anchors []Pivot, a, b int, kind LineKind, scale float64, options FitOptions) (Line, bool) {
	pa, pb := anchors[a], anchors[b]
	if pb.Index <= pa.Index {
		return Line{}, false
	}

	dx := float64(pb.Index - pa.Index)
	slope := (pb.Price.Float64() - pa.Price.Float64()) / dx
	intercept := pa.Price.Float64() - slope*float64(pa.Index)
	if math.IsNaN(slope) || math.IsInf(slope, 0) || math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return Line{}, false
	}

	if options.RequireDirection {
		if kind == Support && slope < 0 {
			return Line{}, false
		}
		if kind == Resistance && slope > 0 {
			return Line{}, false
		}
	}

	line := Line{
		Kind:      kind,
		Slope:     slope,
		Intercept: intercept,
		Start:     pa.Index,
		End:       series.Len() - 1,
		AnchorEnd: pb.Index,
		Scale:     scale,
	}

	band, touchBand := options.bands(scale)
	for i := pa.Index + 1; i < pb.Index; i++ {
		d := distance(series.At(i), line, i)
		switch {
		case d < -band:
			line.ViolationCount++
			if line.ViolationCount > options.MaxViolations {
				return Line{}, false
			}
		case math.Abs(d) <= touchBand:
			line.TouchCount++
		}
	}

	line.Anchors = append(line.Anchors, pa)
	for _, p := range anchors[a+1 : b] {
		if math.Abs(p.Price.Float64()-line.ValueAt(float64(p.Index))) <= touchBand {
			line.Anchors = append(line.Anchors, p)
		}
	}
	line.Anchors = append(line.Anchors, pb)

	return line, true
}

// bands returns the violation and touch bands in price units.
func (o FitOptions) bands(scale float64) (band, touchBand float64) {
	eps := bandEpsilon * scale
	return o.Tolerance*scale + eps, o.TouchTolerance*scale + eps
}

// distance is how far the bar's relevant extreme sits on the respected side
// of the line: positive above support or below resistance, negative when
// the bar crosses it.
func distance(b types.Bar, line Line, index int) float64 {
	v := line.ValueAt(float64(index))
	if line.Kind == Support {
		return b.Low.Float64() - v
	}
	return v - b.High.Float64()
}
