package trendline

import (
	"github.com/pkg/errors"
	"github.com/sajari/regression"

	"github.com/c9s/trendplay/pkg/types"
)

// Baseline is the least squares fit of close price against bar index.
type Baseline struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`
}

func (b Baseline) ValueAt(index float64) float64 {
	return b.Slope*index + b.Intercept
}

// FitBaseline regresses the closes of the series on their index.
func FitBaseline(series *types.BarSeries) (*Baseline, error) {
	if series.Len() < 3 {
		return nil, &InsufficientDataError{
			Bars:     series.Len(),
			Required: 3,
			Reason:   "baseline regression needs more observations than coefficients",
		}
	}

	r := new(regression.Regression)
	r.SetObserved("close")
	r.SetVar(0, "index")

	for i, c := range series.Closes() {
		r.Train(regression.DataPoint(c, []float64{float64(i)}))
	}

	if err := r.Run(); err != nil {
		return nil, errors.Wrap(err, "baseline regression failed")
	}

	return &Baseline{
		Slope:     r.Coeff(1),
		Intercept: r.Coeff(0),
		R2:        r.R2,
	}, nil
}
