package trendline

import (
	"math"
	"slices"
	"sort"
)

type SelectOptions struct {
	MaxLines int

	// SlopeSimilarity and InterceptSimilarity are fractions of the price
	// scale under which two lines of the same kind count as duplicates.
	SlopeSimilarity     float64
	InterceptSimilarity float64
}

// Select ranks the candidates and greedily keeps at most MaxLines of them,
// skipping any candidate that nearly duplicates an already kept line.
//
// Ranking: more touches first, then the longer span, then the more recent
// end, then the earliest start and the earliest validated end. The result
// is deterministic for identical input.
func Select(candidates []Line, options SelectOptions) LineSet {
	selected := LineSet{}
	if options.MaxLines < 1 {
		return selected
	}

	ranked := slices.Clone(candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return rankBefore(ranked[i], ranked[j])
	})

	for _, c := range ranked {
		if len(selected) >= options.MaxLines {
			break
		}

		if slices.ContainsFunc(selected, func(s Line) bool {
			return IsNearDuplicate(s, c, options)
		}) {
			continue
		}

		selected = append(selected, c)
	}

	return selected
}

func rankBefore(a, b Line) bool {
	if a.TouchCount != b.TouchCount {
		return a.TouchCount > b.TouchCount
	}

	if a.SpanLength() != b.SpanLength() {
		return a.SpanLength() > b.SpanLength()
	}

	if a.End != b.End {
		return a.End > b.End
	}

	if a.Start != b.Start {
		return a.Start < b.Start
	}

	if a.AnchorEnd != b.AnchorEnd {
		return a.AnchorEnd < b.AnchorEnd
	}

	return a.Kind < b.Kind
}

// IsNearDuplicate reports whether two lines of the same kind with
// overlapping spans have slopes and intercepts within the similarity
// thresholds.
func IsNearDuplicate(a, b Line, options SelectOptions) bool {
	if a.Kind != b.Kind || !a.Overlaps(b) {
		return false
	}

	scale := math.Max(a.Scale, b.Scale)
	if scale <= 0 {
		scale = 1
	}

	return math.Abs(a.Slope-b.Slope) <= options.SlopeSimilarity*scale &&
		math.Abs(a.Intercept-b.Intercept) <= options.InterceptSimilarity*scale
}
