package trendline

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/c9s/trendplay/pkg/fixedpoint"
	"github.com/c9s/trendplay/pkg/types"
)

var startTime = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// buildSeries builds a daily series from highs and lows, with open and
// close at the middle of each bar.
func buildSeries(t *testing.T, highs, lows []float64) *types.BarSeries {
	require.Equal(t, len(highs), len(lows))

	var bars []types.Bar
	for i := range highs {
		mid := (highs[i] + lows[i]) / 2
		bars = append(bars, types.Bar{
			Time:   startTime.Add(time.Duration(i) * 24 * time.Hour),
			Open:   fixedpoint.NewFromFloat(mid),
			High:   fixedpoint.NewFromFloat(highs[i]),
			Low:    fixedpoint.NewFromFloat(lows[i]),
			Close:  fixedpoint.NewFromFloat(mid),
			Volume: 1000,
		})
	}

	series, err := types.NewBarSeries(bars, types.WithInterval(types.Interval1d))
	require.NoError(t, err)
	return series
}

// buildSeriesWithClose uses a fixed close for every bar so the price scale
// is known.
func buildSeriesWithClose(t *testing.T, highs, lows []float64, close float64) *types.BarSeries {
	var bars []types.Bar
	for i := range highs {
		bars = append(bars, types.Bar{
			Time:   startTime.Add(time.Duration(i) * time.Hour),
			Open:   fixedpoint.NewFromFloat(close),
			High:   fixedpoint.NewFromFloat(highs[i]),
			Low:    fixedpoint.NewFromFloat(lows[i]),
			Close:  fixedpoint.NewFromFloat(close),
			Volume: 1,
		})
	}

	series, err := types.NewBarSeries(bars)
	require.NoError(t, err)
	return series
}

func randomWalkSeries(t *testing.T, seed int64, n int) *types.BarSeries {
	rnd := rand.New(rand.NewSource(seed))

	var bars []types.Bar
	price := 100.0
	for i := 0; i < n; i++ {
		open := price
		price += rnd.NormFloat64()
		if price < 1 {
			price = 1
		}
		closePrice := price
		high := math.Max(open, closePrice) + rnd.Float64()
		low := math.Min(open, closePrice) - rnd.Float64()

		bars = append(bars, types.Bar{
			Time:   startTime.Add(time.Duration(i) * 5 * time.Minute),
			Open:   fixedpoint.NewFromFloat(open),
			High:   fixedpoint.NewFromFloat(high),
			Low:    fixedpoint.NewFromFloat(low),
			Close:  fixedpoint.NewFromFloat(closePrice),
			Volume: int64(rnd.Intn(10000)),
		})
	}

	series, err := types.NewBarSeries(bars, types.WithInterval(types.Interval5m))
	require.NoError(t, err)
	return series
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
