package trendline

import (
	"fmt"
)

type LineKind int

const (
	// Support lines are drawn through swing lows.
	Support LineKind = iota
	// Resistance lines are drawn through swing highs.
	Resistance
)

func (k LineKind) String() string {
	switch k {
	case Support:
		return "support"
	case Resistance:
		return "resistance"
	}
	return "unknown"
}

// PivotKind returns the pivot polarity the line is anchored on.
func (k LineKind) PivotKind() PivotKind {
	if k == Support {
		return PivotLow
	}
	return PivotHigh
}

// Line is a straight line in (bar index, price) space.
//
// Start and End are the display span: Start is the first anchor and End is
// the last bar of the series the line was fitted on. Only [Start, AnchorEnd]
// has been validated; the extension after the last anchor is not.
type Line struct {
	Kind    LineKind `json:"kind"`
	Anchors []Pivot  `json:"anchors"`

	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`

	Start     int `json:"start"`
	End       int `json:"end"`
	AnchorEnd int `json:"anchorEnd"`

	ViolationCount int `json:"violationCount"`
	TouchCount     int `json:"touchCount"`

	// Scale is the price normalization the tolerances were applied with.
	Scale float64 `json:"scale"`
}

func (l Line) ValueAt(index float64) float64 {
	return l.Slope*index + l.Intercept
}

func (l Line) SpanLength() int {
	return l.End - l.Start
}

func (l Line) Overlaps(o Line) bool {
	return l.Start <= o.End && o.Start <= l.End
}

func (l Line) String() string {
	return fmt.Sprintf("%s [%d..%d] slope=%.6f intercept=%.4f touches=%d violations=%d",
		l.Kind, l.Start, l.End, l.Slope, l.Intercept, l.TouchCount, l.ViolationCount)
}

// LineSet is the selected output of a detection, ordered by descending
// quality.
type LineSet []Line

func (s LineSet) OfKind(kind LineKind) LineSet {
	var out LineSet
	for _, l := range s {
		if l.Kind == kind {
			out = append(out, l)
		}
	}
	return out
}
