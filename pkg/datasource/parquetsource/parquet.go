// Package parquetsource reads and writes OHLCV bars stored as Parquet rows
// in the layout used by the polygon crawler (t, o, h, l, c, v).
package parquetsource

import (
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"

	"github.com/c9s/trendplay/pkg/fixedpoint"
	"github.com/c9s/trendplay/pkg/types"
)

// Row is one OHLCV bar as stored on disk.
type Row struct {
	Timestamp    int64   `json:"t" parquet:"t"` // Unix timestamp in milliseconds
	Open         float64 `json:"o" parquet:"o"`
	High         float64 `json:"h" parquet:"h"`
	Low          float64 `json:"l" parquet:"l"`
	Close        float64 `json:"c" parquet:"c"`
	Volume       int64   `json:"v" parquet:"v"`
	VWAP         float64 `json:"vw,omitempty" parquet:"vw,optional"`
	Transactions int64   `json:"n,omitempty" parquet:"n,optional"`
}

func (r Row) Bar() types.Bar {
	return types.Bar{
		Time:   time.UnixMilli(r.Timestamp).UTC(),
		Open:   fixedpoint.NewFromFloat(r.Open),
		High:   fixedpoint.NewFromFloat(r.High),
		Low:    fixedpoint.NewFromFloat(r.Low),
		Close:  fixedpoint.NewFromFloat(r.Close),
		Volume: r.Volume,
	}
}

func NewRow(bar types.Bar) Row {
	return Row{
		Timestamp: bar.Time.UnixMilli(),
		Open:      bar.Open.Float64(),
		High:      bar.High.Float64(),
		Low:       bar.Low.Float64(),
		Close:     bar.Close.Float64(),
		Volume:    bar.Volume,
	}
}

// ReadBars loads every row of the file in stored order.
func ReadBars(path string) ([]types.Bar, error) {
	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read parquet file %s", path)
	}

	bars := make([]types.Bar, len(rows))
	for i, row := range rows {
		bars[i] = row.Bar()
	}
	return bars, nil
}

func WriteBars(path string, bars []types.Bar) error {
	rows := make([]Row, len(bars))
	for i, bar := range bars {
		rows[i] = NewRow(bar)
	}

	return errors.Wrapf(parquet.WriteFile(path, rows), "unable to write parquet file %s", path)
}
