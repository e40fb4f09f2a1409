package types

import (
	"iter"
	"time"
)

type seriesOptions struct {
	includeZeroVolume bool
	interval          Interval
}

type SeriesOption func(o *seriesOptions)

// WithZeroVolume controls whether bars reporting zero volume are kept.
// They are kept by default since partial sessions legitimately report 0.
func WithZeroVolume(include bool) SeriesOption {
	return func(o *seriesOptions) {
		o.includeZeroVolume = include
	}
}

func WithInterval(interval Interval) SeriesOption {
	return func(o *seriesOptions) {
		o.interval = interval
	}
}

// BarSeries is a validated, time ordered, read-only sequence of bars.
type BarSeries struct {
	bars     []Bar
	interval Interval
}

// NewBarSeries validates the raw bars and copies them into a new series.
// The first offending bar aborts construction with a *MalformedBarError.
func NewBarSeries(raw []Bar, options ...SeriesOption) (*BarSeries, error) {
	opts := seriesOptions{includeZeroVolume: true}
	for _, option := range options {
		option(&opts)
	}

	bars := make([]Bar, 0, len(raw))
	for i, b := range raw {
		if err := b.Validate(); err != nil {
			return nil, &MalformedBarError{Index: i, Bar: b, Reason: err.Error()}
		}

		if i > 0 && !b.Time.After(raw[i-1].Time) {
			return nil, &MalformedBarError{
				Index:  i,
				Bar:    b,
				Reason: "timestamp " + b.Time.Format(time.RFC3339) + " does not increase",
			}
		}

		if b.Volume == 0 && !opts.includeZeroVolume {
			continue
		}

		bars = append(bars, b)
	}

	return &BarSeries{bars: bars, interval: opts.interval}, nil
}

func (s *BarSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.bars)
}

func (s *BarSeries) At(i int) Bar {
	return s.bars[i]
}

func (s *BarSeries) First() Bar {
	return s.bars[0]
}

func (s *BarSeries) Last() Bar {
	return s.bars[len(s.bars)-1]
}

func (s *BarSeries) Interval() Interval {
	return s.interval
}

// Slice returns the bars in [from, to) as a view over the same storage.
// The view's capacity is clipped so it can never be appended into.
func (s *BarSeries) Slice(from, to int) *BarSeries {
	return &BarSeries{
		bars:     s.bars[from:to:to],
		interval: s.interval,
	}
}

// Bars returns a copy of the underlying bars.
func (s *BarSeries) Bars() []Bar {
	out := make([]Bar, len(s.bars))
	copy(out, s.bars)
	return out
}

func (s *BarSeries) All() iter.Seq2[int, Bar] {
	return func(yield func(int, Bar) bool) {
		for i, b := range s.bars {
			if !yield(i, b) {
				return
			}
		}
	}
}

func (s *BarSeries) Highs() []float64 {
	return s.mapFloat64(func(b Bar) float64 { return b.High.Float64() })
}

func (s *BarSeries) Lows() []float64 {
	return s.mapFloat64(func(b Bar) float64 { return b.Low.Float64() })
}

func (s *BarSeries) Closes() []float64 {
	return s.mapFloat64(func(b Bar) float64 { return b.Close.Float64() })
}

func (s *BarSeries) mapFloat64(f func(b Bar) float64) []float64 {
	if s == nil {
		return nil
	}

	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = f(b)
	}
	return out
}

// StartTime and EndTime bound the series in time; zero for an empty series.
func (s *BarSeries) StartTime() time.Time {
	if s.Len() == 0 {
		return time.Time{}
	}
	return s.bars[0].Time
}

func (s *BarSeries) EndTime() time.Time {
	if s.Len() == 0 {
		return time.Time{}
	}
	return s.bars[len(s.bars)-1].Time
}
