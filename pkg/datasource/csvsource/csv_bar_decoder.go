package csvsource

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/c9s/trendplay/pkg/fixedpoint"
	"github.com/c9s/trendplay/pkg/types"
)

var (
	// ErrNotEnoughColumns is returned when the CSV price record does not have enough columns.
	ErrNotEnoughColumns = errors.New("not enough columns")

	// ErrInvalidTimeFormat is returned when the CSV time column can not be parsed.
	ErrInvalidTimeFormat = errors.New("cannot parse time string")

	// ErrInvalidPriceFormat is returned when the CSV price record does not have prices in expected format.
	ErrInvalidPriceFormat = errors.New("OHLC prices must be in valid decimal format")

	// ErrInvalidVolumeFormat is returned when the CSV price record does not have a valid volume format.
	ErrInvalidVolumeFormat = errors.New("volume must be in valid number format")

	// ErrNullRecord is returned for rows with missing values, such as the
	// placeholder rows Yahoo emits for market holidays.
	ErrNullRecord = errors.New("record has missing values")
)

// YahooTimeFormats are tried in order on the Date column.
var YahooTimeFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// CSVBarDecoder is an extension point for CSVBarReader to support custom file formats.
type CSVBarDecoder func(record []string) (types.Bar, error)

// BinanceCSVBarDecoder decodes a record of the form
// unix-ms,open,high,low,close[,volume,...] as found in Binance and Bybit
// kline dumps.
func BinanceCSVBarDecoder(record []string) (types.Bar, error) {
	var bar types.Bar

	if len(record) < 5 {
		return bar, ErrNotEnoughColumns
	}

	msec, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return bar, ErrInvalidTimeFormat
	}
	bar.Time = time.UnixMilli(msec).UTC()

	if err := decodeOHLC(&bar, record[1:5]); err != nil {
		return types.Bar{}, err
	}

	if len(record) > 5 {
		if bar.Volume, err = parseVolume(record[5]); err != nil {
			return types.Bar{}, err
		}
	}

	return bar, nil
}

// YahooCSVBarDecoder decodes Date,Open,High,Low,Close[,Adj Close],Volume
// records. The adjusted close is ignored.
func YahooCSVBarDecoder(record []string) (types.Bar, error) {
	var bar types.Bar

	if len(record) < 6 {
		return bar, ErrNotEnoughColumns
	}

	if isNullRecord(record[1:]) {
		return bar, ErrNullRecord
	}

	t, err := parseTime(strings.TrimSpace(record[0]), YahooTimeFormats)
	if err != nil {
		return bar, err
	}
	bar.Time = t.UTC()

	if err := decodeOHLC(&bar, record[1:5]); err != nil {
		return types.Bar{}, err
	}

	if bar.Volume, err = parseVolume(record[len(record)-1]); err != nil {
		return types.Bar{}, err
	}

	return bar, nil
}

func decodeOHLC(bar *types.Bar, cols []string) error {
	prices := make([]fixedpoint.Value, 4)
	for i, col := range cols {
		v, err := fixedpoint.NewFromString(col)
		if err != nil {
			return ErrInvalidPriceFormat
		}
		prices[i] = v
	}

	bar.Open, bar.High, bar.Low, bar.Close = prices[0], prices[1], prices[2], prices[3]
	return nil
}

// parseVolume accepts integer and float volumes; fractional base volumes
// are truncated.
func parseVolume(col string) (int64, error) {
	col = strings.TrimSpace(col)
	if v, err := strconv.ParseInt(col, 10, 64); err == nil {
		return v, nil
	}

	f, err := strconv.ParseFloat(col, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidVolumeFormat
	}
	return int64(f), nil
}

func parseTime(s string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidTimeFormat
}

func isNullRecord(cols []string) bool {
	for _, col := range cols {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "", "null", "nan":
			return true
		}
	}
	return false
}
