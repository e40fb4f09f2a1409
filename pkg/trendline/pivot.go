package trendline

import (
	"iter"
	"slices"

	"github.com/c9s/trendplay/pkg/fixedpoint"
	"github.com/c9s/trendplay/pkg/types"
)

type PivotKind int

const (
	PivotHigh PivotKind = iota
	PivotLow
)

func (k PivotKind) String() string {
	switch k {
	case PivotHigh:
		return "high"
	case PivotLow:
		return "low"
	}
	return "unknown"
}

type pivotOptions struct {
	minProminence fixedpoint.Value
}

type PivotOption func(o *pivotOptions)

// WithMinProminence drops pivots whose prominence, in price units, is below
// the given value. The prominence of a high is its distance above the
// higher of the lowest highs on each side, searched until a strictly higher
// high or the series end. Lows are symmetric.
func WithMinProminence(prominence float64) PivotOption {
	return func(o *pivotOptions) {
		o.minProminence = fixedpoint.NewFromFloat(prominence)
	}
}

// Pivot is a local swing high or low. Index is the bar position in the
// series the pivot was extracted from.
type Pivot struct {
	Index int              `json:"index"`
	Kind  PivotKind        `json:"kind"`
	Price fixedpoint.Value `json:"price"`
}

// Pivots yields the swing highs and lows of the series in index order.
//
// Bar i is a high pivot when its high is the maximum of [i-window, i+window]
// and no earlier bar in that range has the same high, so a plateau only
// produces its first bar. Lows are symmetric. Bars closer than window to
// either end of the series never qualify. A bar that is both a high and a
// low pivot yields the high first.
//
// The sequence is lazy and can be ranged over any number of times.
func Pivots(series *types.BarSeries, window int, options ...PivotOption) iter.Seq[Pivot] {
	var opts pivotOptions
	for _, option := range options {
		option(&opts)
	}

	return func(yield func(Pivot) bool) {
		if window < 1 {
			return
		}

		n := series.Len()
		for i := window; i < n-window; i++ {
			b := series.At(i)
			if isExtreme(series, i, window, highOf, 1) && opts.prominent(series, i, highOf, 1) {
				if !yield(Pivot{Index: i, Kind: PivotHigh, Price: b.High}) {
					return
				}
			}

			if isExtreme(series, i, window, lowOf, -1) && opts.prominent(series, i, lowOf, -1) {
				if !yield(Pivot{Index: i, Kind: PivotLow, Price: b.Low}) {
					return
				}
			}
		}
	}
}

// ExtractPivots collects Pivots into a slice.
func ExtractPivots(series *types.BarSeries, window int, options ...PivotOption) []Pivot {
	return slices.Collect(Pivots(series, window, options...))
}

// FilterPivots returns the pivots of the given kind, keeping their order.
func FilterPivots(pivots []Pivot, kind PivotKind) []Pivot {
	var out []Pivot
	for _, p := range pivots {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

func highOf(b types.Bar) fixedpoint.Value { return b.High }

func lowOf(b types.Bar) fixedpoint.Value { return b.Low }

// isExtreme checks bar i against its neighbours. sign is 1 for maxima and
// -1 for minima.
func isExtreme(series *types.BarSeries, i, window int, price func(types.Bar) fixedpoint.Value, sign int) bool {
	v := price(series.At(i))
	for j := i - window; j <= i+window; j++ {
		if j == i {
			continue
		}

		c := price(series.At(j)).Compare(v) * sign
		if c > 0 {
			return false
		}

		// ties go to the earliest bar
		if c == 0 && j < i {
			return false
		}
	}
	return true
}

func (o pivotOptions) prominent(series *types.BarSeries, i int, price func(types.Bar) fixedpoint.Value, sign int) bool {
	if o.minProminence.Sign() <= 0 {
		return true
	}
	return prominence(series, i, price, sign).Compare(o.minProminence) >= 0
}

func prominence(series *types.BarSeries, i int, price func(types.Bar) fixedpoint.Value, sign int) fixedpoint.Value {
	v := price(series.At(i))

	leftBase := v
	for j := i - 1; j >= 0; j-- {
		p := price(series.At(j))
		if p.Compare(v)*sign > 0 {
			break
		}
		if p.Compare(leftBase)*sign < 0 {
			leftBase = p
		}
	}

	rightBase := v
	for j := i + 1; j < series.Len(); j++ {
		p := price(series.At(j))
		if p.Compare(v)*sign > 0 {
			break
		}
		if p.Compare(rightBase)*sign < 0 {
			rightBase = p
		}
	}

	base := leftBase
	if rightBase.Compare(base)*sign > 0 {
		base = rightBase
	}
	return v.Sub(base).Abs()
}
