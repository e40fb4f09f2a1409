package style

import (
	"github.com/fatih/color"

	"github.com/c9s/trendplay/pkg/trendline"
)

var (
	SupportColor    = color.New(color.FgHiGreen)
	ResistanceColor = color.New(color.FgHiRed)
)

func LineKindColor(kind trendline.LineKind) *color.Color {
	if kind == trendline.Resistance {
		return ResistanceColor
	}
	return SupportColor
}

// LineKindString returns the colored kind name, plain when color output
// is disabled.
func LineKindString(kind trendline.LineKind) string {
	return LineKindColor(kind).Sprint(kind.String())
}

// SlopeArrow points in the direction of the line.
func SlopeArrow(slope float64) string {
	switch {
	case slope > 0:
		return "↗"
	case slope < 0:
		return "↘"
	}
	return "→"
}
