package csvsource

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/c9s/trendplay/pkg/types"
)

// WriteBars writes the bars to path in the Binance column layout.
func WriteBars(path string, bars []types.Bar) (err error) {
	if len(bars) == 0 {
		return fmt.Errorf("no bars to write")
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "failed to close file")
		}
	}()

	w := csv.NewWriter(file)
	for _, bar := range bars {
		row := []string{
			fmt.Sprintf("%d", bar.Time.UnixMilli()),
			bar.Open.String(),
			bar.High.String(),
			bar.Low.String(),
			bar.Close.String(),
			fmt.Sprintf("%d", bar.Volume),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "writing record to file")
		}
	}

	w.Flush()
	return errors.Wrap(w.Error(), "flushing records to file")
}
