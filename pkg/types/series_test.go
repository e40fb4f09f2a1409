package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/trendplay/pkg/fixedpoint"
)

var t0 = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

func bar(i int, o, h, l, c float64, v int64) Bar {
	return Bar{
		Time:   t0.Add(time.Duration(i) * time.Minute),
		Open:   fixedpoint.NewFromFloat(o),
		High:   fixedpoint.NewFromFloat(h),
		Low:    fixedpoint.NewFromFloat(l),
		Close:  fixedpoint.NewFromFloat(c),
		Volume: v,
	}
}

func TestNewBarSeries(t *testing.T) {
	raw := []Bar{
		bar(0, 10, 11, 9, 10.5, 100),
		bar(1, 10.5, 12, 10, 11, 0),
		bar(2, 11, 11, 11, 11, 50),
	}

	series, err := NewBarSeries(raw, WithInterval(Interval1m))
	require.NoError(t, err)
	assert.Equal(t, 3, series.Len())
	assert.Equal(t, raw[0], series.First())
	assert.Equal(t, raw[2], series.Last())
	assert.Equal(t, Interval1m, series.Interval())
	assert.Equal(t, raw[0].Time, series.StartTime())
	assert.Equal(t, raw[2].Time, series.EndTime())
	assert.Equal(t, []float64{11, 12, 11}, series.Highs())
	assert.Equal(t, []float64{9, 10, 11}, series.Lows())
	assert.Equal(t, []float64{10.5, 11, 11}, series.Closes())

	// the input is copied, later changes to the raw slice are not visible
	raw[0].High = fixedpoint.NewFromInt(1000)
	assert.Equal(t, 11.0, series.At(0).High.Float64())
}

func TestNewBarSeries_ZeroVolume(t *testing.T) {
	raw := []Bar{
		bar(0, 10, 11, 9, 10.5, 100),
		bar(1, 10.5, 12, 10, 11, 0),
		bar(2, 11, 12, 10, 11, 50),
	}

	series, err := NewBarSeries(raw, WithZeroVolume(false))
	require.NoError(t, err)
	assert.Equal(t, 2, series.Len())
	assert.Equal(t, raw[2].Time, series.At(1).Time)
}

func TestNewBarSeries_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		bars  []Bar
		index int
	}{
		{
			name:  "low above high",
			bars:  []Bar{bar(0, 10, 11, 9, 10, 1), bar(1, 10, 9, 11, 10, 1)},
			index: 1,
		},
		{
			name:  "close above high",
			bars:  []Bar{bar(0, 10, 11, 9, 12, 1)},
			index: 0,
		},
		{
			name:  "open below low",
			bars:  []Bar{bar(0, 10, 11, 9, 10, 1), bar(1, 10, 11, 9, 10, 1), bar(2, 8, 11, 9, 10, 1)},
			index: 2,
		},
		{
			name:  "negative volume",
			bars:  []Bar{bar(0, 10, 11, 9, 10, -1)},
			index: 0,
		},
		{
			name:  "duplicated timestamp",
			bars:  []Bar{bar(0, 10, 11, 9, 10, 1), bar(0, 10, 11, 9, 10, 1)},
			index: 1,
		},
		{
			name:  "decreasing timestamp",
			bars:  []Bar{bar(1, 10, 11, 9, 10, 1), bar(0, 10, 11, 9, 10, 1)},
			index: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := NewBarSeries(tt.bars)
			assert.Nil(t, series)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedBar))

			var malformed *MalformedBarError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.index, malformed.Index)
			assert.Contains(t, err.Error(), "index")
		})
	}
}

func TestBarSeries_Slice(t *testing.T) {
	var raw []Bar
	for i := 0; i < 10; i++ {
		raw = append(raw, bar(i, 10, 11, 9, 10, int64(i)))
	}

	series, err := NewBarSeries(raw)
	require.NoError(t, err)

	view := series.Slice(2, 5)
	assert.Equal(t, 3, view.Len())
	assert.Equal(t, series.At(2), view.At(0))
	assert.Equal(t, series.At(4), view.Last())

	var indexes []int
	for i := range view.All() {
		indexes = append(indexes, i)
	}
	assert.Equal(t, []int{0, 1, 2}, indexes)

	copied := view.Bars()
	copied[0].Volume = 999
	assert.Equal(t, int64(2), view.At(0).Volume)

	var empty *BarSeries
	assert.Equal(t, 0, empty.Len())
}

func TestBar_Direction(t *testing.T) {
	assert.Equal(t, Direction(DirectionUp), bar(0, 10, 11, 9, 10.5, 1).Direction())
	assert.Equal(t, Direction(DirectionDown), bar(0, 10.5, 11, 9, 10, 1).Direction())
	assert.Equal(t, Direction(DirectionNone), bar(0, 10, 11, 9, 10, 1).Direction())
	assert.Equal(t, 10.0, bar(0, 10, 11, 9, 10, 1).Mid().Float64())
}

func TestParseInterval(t *testing.T) {
	i, err := ParseInterval("1d")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, i.Duration())
	assert.False(t, i.IsIntraday())

	i, err = ParseInterval("5m")
	require.NoError(t, err)
	assert.True(t, i.IsIntraday())

	_, err = ParseInterval("7m")
	assert.Error(t, err)
}
