package trendline

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/c9s/trendplay/pkg/types"
)

var log = logrus.WithField("component", "trendline")

// Config holds the detection parameters.
type Config struct {
	PivotWindow int `json:"pivotWindow" yaml:"pivotWindow"`

	// MinProminence drops shallow pivots, as a fraction of the price scale.
	// Zero keeps every pivot.
	MinProminence float64 `json:"minProminence,omitempty" yaml:"minProminence,omitempty"`

	Tolerance      float64 `json:"tolerance" yaml:"tolerance"`
	TouchTolerance float64 `json:"touchTolerance" yaml:"touchTolerance"`
	MaxViolations  int     `json:"maxViolations" yaml:"maxViolations"`

	MaxLines            int     `json:"maxLines" yaml:"maxLines"`
	SlopeSimilarity     float64 `json:"slopeSimilarity" yaml:"slopeSimilarity"`
	InterceptSimilarity float64 `json:"interceptSimilarity" yaml:"interceptSimilarity"`

	RequireDirection bool `json:"requireDirection" yaml:"requireDirection"`
}

func DefaultConfig() Config {
	return Config{
		PivotWindow:         3,
		Tolerance:           0,
		TouchTolerance:      0.002,
		MaxViolations:       0,
		MaxLines:            4,
		SlopeSimilarity:     0.001,
		InterceptSimilarity: 0.01,
	}
}

func (c Config) Validate() (err error) {
	if c.PivotWindow < 1 {
		err = multierr.Append(err, fmt.Errorf("pivotWindow must be >= 1, got %d", c.PivotWindow))
	}
	if c.MinProminence < 0 {
		err = multierr.Append(err, fmt.Errorf("minProminence must be >= 0, got %f", c.MinProminence))
	}
	if c.Tolerance < 0 {
		err = multierr.Append(err, fmt.Errorf("tolerance must be >= 0, got %f", c.Tolerance))
	}
	if c.TouchTolerance < 0 {
		err = multierr.Append(err, fmt.Errorf("touchTolerance must be >= 0, got %f", c.TouchTolerance))
	}
	if c.MaxViolations < 0 {
		err = multierr.Append(err, fmt.Errorf("maxViolations must be >= 0, got %d", c.MaxViolations))
	}
	if c.MaxLines < 1 {
		err = multierr.Append(err, fmt.Errorf("maxLines must be >= 1, got %d", c.MaxLines))
	}
	if c.SlopeSimilarity < 0 {
		err = multierr.Append(err, fmt.Errorf("slopeSimilarity must be >= 0, got %f", c.SlopeSimilarity))
	}
	if c.InterceptSimilarity < 0 {
		err = multierr.Append(err, fmt.Errorf("interceptSimilarity must be >= 0, got %f", c.InterceptSimilarity))
	}
	return err
}

// MinBars is the shortest series that can contain a pivot.
func (c Config) MinBars() int {
	return 2*c.PivotWindow + 1
}

func (c Config) fitOptions() FitOptions {
	return FitOptions{
		Tolerance:        c.Tolerance,
		TouchTolerance:   c.TouchTolerance,
		MaxViolations:    c.MaxViolations,
		RequireDirection: c.RequireDirection,
	}
}

func (c Config) selectOptions() SelectOptions {
	return SelectOptions{
		MaxLines:            c.MaxLines,
		SlopeSimilarity:     c.SlopeSimilarity,
		InterceptSimilarity: c.InterceptSimilarity,
	}
}

// Analysis is the full output of one detection run.
type Analysis struct {
	Pivots     []Pivot
	Candidates []Line
	Lines      LineSet
	PriceScale float64
}

// Detector runs pivot extraction, line fitting and selection. It holds no
// state between calls and is safe for concurrent use.
type Detector struct {
	config Config
}

func NewDetector(config Config) (*Detector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Detector{config: config}, nil
}

func (d *Detector) Config() Config {
	return d.config
}

// Detect returns the selected lines of the series. When the series cannot
// produce any line the result is empty and the error is an
// *InsufficientDataError.
func (d *Detector) Detect(series *types.BarSeries) (LineSet, error) {
	analysis, err := d.Analyze(series)
	return analysis.Lines, err
}

func (d *Detector) Analyze(series *types.BarSeries) (*Analysis, error) {
	analysis := &Analysis{Lines: LineSet{}}

	n := series.Len()
	if n < d.config.MinBars() {
		return analysis, &InsufficientDataError{
			Bars:     n,
			Required: d.config.MinBars(),
			Reason:   fmt.Sprintf("pivot window %d leaves no bar with enough context", d.config.PivotWindow),
		}
	}

	analysis.PriceScale = PriceScale(series)

	var pivotOptions []PivotOption
	if d.config.MinProminence > 0 {
		pivotOptions = append(pivotOptions, WithMinProminence(d.config.MinProminence*analysis.PriceScale))
	}
	analysis.Pivots = ExtractPivots(series, d.config.PivotWindow, pivotOptions...)

	highs := len(FilterPivots(analysis.Pivots, PivotHigh))
	lows := len(FilterPivots(analysis.Pivots, PivotLow))
	if highs < 2 && lows < 2 {
		return analysis, &InsufficientDataError{
			Bars:   n,
			Reason: fmt.Sprintf("found %d high and %d low pivots, need 2 of a kind", highs, lows),
		}
	}

	options := d.config.fitOptions()
	analysis.Candidates = append(analysis.Candidates, FitLines(series, analysis.Pivots, Support, options)...)
	analysis.Candidates = append(analysis.Candidates, FitLines(series, analysis.Pivots, Resistance, options)...)
	analysis.Lines = Select(analysis.Candidates, d.config.selectOptions())

	log.WithFields(logrus.Fields{
		"bars":       n,
		"pivots":     len(analysis.Pivots),
		"candidates": len(analysis.Candidates),
		"selected":   len(analysis.Lines),
	}).Debug("trend lines detected")

	return analysis, nil
}

// Detect runs a detection with the default configuration overridden by the
// given pivot window, violation tolerance and line limit.
func Detect(series *types.BarSeries, window int, tolerance float64, maxLines int) (LineSet, error) {
	config := DefaultConfig()
	config.PivotWindow = window
	config.Tolerance = tolerance
	config.MaxLines = maxLines

	detector, err := NewDetector(config)
	if err != nil {
		return LineSet{}, err
	}

	return detector.Detect(series)
}
