package csvsource

import (
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/c9s/trendplay/pkg/types"
)

var log = logrus.WithField("component", "csvsource")

// RecordError locates a decoding failure in the input.
type RecordError struct {
	Path string
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// ReadBarsFromCSV reads all the .csv files in a given directory or a single
// file into a slice of bars ordered by time. Wraps a default CSVBarReader
// with the Binance decoder for convenience.
func ReadBarsFromCSV(path string) ([]types.Bar, error) {
	return ReadBarsFromCSVWithDecoder(path, MakeCSVBarReader(NewBinanceCSVBarReader))
}

// ReadBarsFromCSVWithDecoder permits using a custom CSVBarReader.
func ReadBarsFromCSVWithDecoder(path string, maker MakeCSVBarReader) ([]types.Bar, error) {
	var bars []types.Bar

	err := filepath.WalkDir(path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".csv" {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		//nolint:errcheck // Read ops only so safe to ignore err return
		defer file.Close()

		reader := maker(csv.NewReader(file))
		newBars, err := reader.ReadAll()
		if err != nil {
			var recordErr *RecordError
			if errors.As(err, &recordErr) {
				recordErr.Path = path
			}
			return err
		}

		bars = append(bars, newBars...)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read bars from %s", path)
	}

	// files of one directory may come in any name order
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})

	return bars, nil
}
