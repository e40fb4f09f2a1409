package csvsource

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode"

	"github.com/c9s/trendplay/pkg/types"
)

var _ BarReader = (*CSVBarReader)(nil)

// BarReader is an interface for reading bars.
type BarReader interface {
	Read() (types.Bar, error)
	ReadAll() ([]types.Bar, error)
}

// CSVBarReader is a BarReader that reads from a CSV file. A first record
// without any digit in its first column is taken as a header and skipped.
type CSVBarReader struct {
	csv     *csv.Reader
	decoder CSVBarDecoder

	started bool
	dropped int
}

// MakeCSVBarReader is a factory method type that creates a new CSVBarReader.
type MakeCSVBarReader func(csv *csv.Reader) *CSVBarReader

// NewCSVBarReader creates a new CSVBarReader with the default Binance decoder.
func NewCSVBarReader(csv *csv.Reader) *CSVBarReader {
	return NewCSVBarReaderWithDecoder(csv, BinanceCSVBarDecoder)
}

// NewCSVBarReaderWithDecoder creates a new CSVBarReader with the given decoder.
func NewCSVBarReaderWithDecoder(csv *csv.Reader, decoder CSVBarDecoder) *CSVBarReader {
	csv.FieldsPerRecord = -1
	csv.TrimLeadingSpace = true
	return &CSVBarReader{
		csv:     csv,
		decoder: decoder,
	}
}

// NewBinanceCSVBarReader creates a new CSVBarReader for Binance CSV files.
func NewBinanceCSVBarReader(csv *csv.Reader) *CSVBarReader {
	return NewCSVBarReaderWithDecoder(csv, BinanceCSVBarDecoder)
}

// NewYahooCSVBarReader creates a new CSVBarReader for Yahoo Finance CSV exports.
func NewYahooCSVBarReader(csv *csv.Reader) *CSVBarReader {
	return NewCSVBarReaderWithDecoder(csv, YahooCSVBarDecoder)
}

// Read reads the next bar from the underlying CSV data.
func (r *CSVBarReader) Read() (types.Bar, error) {
	rec, err := r.csv.Read()
	if err != nil {
		return types.Bar{}, err
	}

	if !r.started {
		r.started = true
		if isHeader(rec) {
			return r.Read()
		}
	}

	return r.decoder(rec)
}

// ReadAll reads all the bars, dropping records with missing values.
func (r *CSVBarReader) ReadAll() ([]types.Bar, error) {
	var bars []types.Bar
	for {
		bar, err := r.Read()
		if err == io.EOF {
			break
		}

		if errors.Is(err, ErrNullRecord) {
			r.dropped++
			continue
		}

		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &RecordError{Line: parseErr.Line, Err: err}
			}

			line, _ := r.csv.FieldPos(0)
			return nil, &RecordError{Line: line, Err: err}
		}

		bars = append(bars, bar)
	}

	if r.dropped > 0 {
		log.Debugf("dropped %d csv records with missing values", r.dropped)
	}

	return bars, nil
}

// Dropped is the number of records skipped for missing values.
func (r *CSVBarReader) Dropped() int {
	return r.dropped
}

func isHeader(rec []string) bool {
	if len(rec) == 0 {
		return false
	}

	return !strings.ContainsFunc(rec[0], unicode.IsDigit)
}
