package csvsource

import (
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/trendplay/pkg/fixedpoint"
	"github.com/c9s/trendplay/pkg/types"
)

func TestCSVBarReader_ReadWithBinanceDecoder(t *testing.T) {
	tests := []struct {
		name string
		give string
		want types.Bar
		err  error
	}{
		{
			name: "Read DOHLCV",
			give: "1609459200000,28923.63000000,29031.34000000,28690.17000000,28995.13000000,2311.81144500",
			want: types.Bar{
				Time:   time.Unix(1609459200, 0).UTC(),
				Open:   fixedpoint.NewFromFloat(28923.63),
				High:   fixedpoint.NewFromFloat(29031.34),
				Low:    fixedpoint.NewFromFloat(28690.17),
				Close:  fixedpoint.NewFromFloat(28995.13),
				Volume: 2311,
			},
		},
		{
			name: "Read DOHLC",
			give: "1609459200000,28923.63000000,29031.34000000,28690.17000000,28995.13000000",
			want: types.Bar{
				Time:  time.Unix(1609459200, 0).UTC(),
				Open:  fixedpoint.NewFromFloat(28923.63),
				High:  fixedpoint.NewFromFloat(29031.34),
				Low:   fixedpoint.NewFromFloat(28690.17),
				Close: fixedpoint.NewFromFloat(28995.13),
			},
		},
		{
			name: "Not enough columns",
			give: "1609459200000,28923.63000000,29031.34000000",
			err:  ErrNotEnoughColumns,
		},
		{
			name: "Invalid time format",
			give: "23/12/2021,28923.63000000,29031.34000000,28690.17000000,28995.13000000",
			err:  ErrInvalidTimeFormat,
		},
		{
			name: "Invalid price format",
			give: "1609459200000,sixty,29031.34000000,28690.17000000,28995.13000000",
			err:  ErrInvalidPriceFormat,
		},
		{
			name: "Invalid volume format",
			give: "1609459200000,28923.63000000,29031.34000000,28690.17000000,28995.13000000,vol",
			err:  ErrInvalidVolumeFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewBinanceCSVBarReader(csv.NewReader(strings.NewReader(tt.give)))
			bar, err := reader.Read()
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, bar)
		})
	}
}

func TestCSVBarReader_ReadWithYahooDecoder(t *testing.T) {
	tests := []struct {
		name string
		give string
		want types.Bar
		err  error
	}{
		{
			name: "With adjusted close",
			give: "2024-01-02,187.15,188.44,183.89,185.64,184.938217,82488700",
			want: types.Bar{
				Time:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
				Open:   fixedpoint.NewFromFloat(187.15),
				High:   fixedpoint.NewFromFloat(188.44),
				Low:    fixedpoint.NewFromFloat(183.89),
				Close:  fixedpoint.NewFromFloat(185.64),
				Volume: 82488700,
			},
		},
		{
			name: "Intraday with offset",
			give: "2024-01-02 09:30:00-05:00,187.15,188.44,183.89,185.64,120000",
			want: types.Bar{
				Time:   time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC),
				Open:   fixedpoint.NewFromFloat(187.15),
				High:   fixedpoint.NewFromFloat(188.44),
				Low:    fixedpoint.NewFromFloat(183.89),
				Close:  fixedpoint.NewFromFloat(185.64),
				Volume: 120000,
			},
		},
		{
			name: "Null row",
			give: "2024-01-05,null,null,null,null,null,null",
			err:  ErrNullRecord,
		},
		{
			name: "Not enough columns",
			give: "2024-01-02,187.15,188.44,183.89,185.64",
			err:  ErrNotEnoughColumns,
		},
		{
			name: "Invalid time format",
			give: "Jan 2 2024,187.15,188.44,183.89,185.64,120000",
			err:  ErrInvalidTimeFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewYahooCSVBarReader(csv.NewReader(strings.NewReader(tt.give)))
			bar, err := reader.Read()
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, bar)
		})
	}
}

func TestCSVBarReader_ReadAll(t *testing.T) {
	input := "Date,Open,High,Low,Close,Volume\n" +
		"2024-01-02,10,11,9,10.5,100\n" +
		"2024-01-03,,,,,\n" +
		"2024-01-04,10.5,12,10,11,200\n"

	reader := NewYahooCSVBarReader(csv.NewReader(strings.NewReader(input)))
	bars, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Len(t, bars, 2)
	assert.Equal(t, 1, reader.Dropped())

	broken := "2024-01-02,10,11,9,10.5,100\n2024-01-03,10,x,9,10.5,100\n"
	_, err = NewYahooCSVBarReader(csv.NewReader(strings.NewReader(broken))).ReadAll()
	assert.ErrorIs(t, err, ErrInvalidPriceFormat)

	var recordErr *RecordError
	require.ErrorAs(t, err, &recordErr)
	assert.Equal(t, 2, recordErr.Line)
}

func TestReadBarsFromCSV(t *testing.T) {
	bars, err := ReadBarsFromCSV("./testdata/binance")
	require.NoError(t, err)
	require.Len(t, bars, 5)

	assert.Equal(t, int64(1609448400000), bars[0].Time.UnixMilli())
	assert.Equal(t, int64(1500), bars[0].Volume)
	assert.Equal(t, int64(1609459200), bars[2].Time.Unix())
	assert.Equal(t, 28923.63, bars[2].Open.Float64(), "Open")
	assert.Equal(t, 29031.34, bars[2].High.Float64(), "High")
	assert.Equal(t, 28690.17, bars[2].Low.Float64(), "Low")
	assert.Equal(t, 28995.13, bars[2].Close.Float64(), "Close")
	assert.Equal(t, int64(2311), bars[2].Volume, "Volume")

	series, err := types.NewBarSeries(bars)
	require.NoError(t, err)
	assert.Equal(t, 5, series.Len())
}

func TestReadBarsFromCSV_Yahoo(t *testing.T) {
	bars, err := ReadBarsFromCSVWithDecoder("./testdata/AAPL-1d-yahoo.csv", NewYahooCSVBarReader)
	require.NoError(t, err)
	require.Len(t, bars, 4)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), bars[3].Time)
}

func TestWriteBars(t *testing.T) {
	bars, err := ReadBarsFromCSV("./testdata/binance")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteBars(path, bars))

	again, err := ReadBarsFromCSV(path)
	require.NoError(t, err)
	assert.Equal(t, bars, again)

	assert.Error(t, WriteBars(path, nil))
}
