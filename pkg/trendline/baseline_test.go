package trendline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/trendplay/pkg/fixedpoint"
	"github.com/c9s/trendplay/pkg/types"
)

func TestFitBaseline(t *testing.T) {
	var bars []types.Bar
	for i := 0; i < 12; i++ {
		c := 10 + 2*float64(i)
		bars = append(bars, types.Bar{
			Time:   startTime.Add(time.Duration(i) * time.Minute),
			Open:   fixedpoint.NewFromFloat(c),
			High:   fixedpoint.NewFromFloat(c + 1),
			Low:    fixedpoint.NewFromFloat(c - 1),
			Close:  fixedpoint.NewFromFloat(c),
			Volume: 10,
		})
	}

	series, err := types.NewBarSeries(bars)
	require.NoError(t, err)

	baseline, err := FitBaseline(series)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, baseline.Slope, 1e-6)
	assert.InDelta(t, 10.0, baseline.Intercept, 1e-6)
	assert.InDelta(t, 1.0, baseline.R2, 1e-6)
	assert.InDelta(t, 30.0, baseline.ValueAt(10), 1e-6)
}

func TestFitBaseline_TooShort(t *testing.T) {
	series := buildSeries(t, []float64{2, 3}, []float64{1, 2})

	baseline, err := FitBaseline(series)
	assert.Nil(t, baseline)
	assert.True(t, IsInsufficientData(err))
}
