package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/c9s/trendplay/pkg/config"
	"github.com/c9s/trendplay/pkg/datasource/csvsource"
	"github.com/c9s/trendplay/pkg/datasource/parquetsource"
	"github.com/c9s/trendplay/pkg/types"
)

const dateFormat = "2006-01-02"

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "", "input format: binance, yahoo or parquet, detected from the file when empty")
	cmd.Flags().String("interval", "", "bar interval of the input, e.g. 5m, 1h, 1d")
	cmd.Flags().String("since", "", "drop bars before this time (yyyy-mm-dd or RFC3339)")
	cmd.Flags().String("until", "", "drop bars after this time (yyyy-mm-dd or RFC3339)")
	cmd.Flags().Bool("skip-zero-volume", false, "drop bars without volume")
}

// sourceOptions merges the source flags over the loaded config.
type sourceOptions struct {
	config.Source

	since, until time.Time
}

func parseSourceFlags(cmd *cobra.Command) (*sourceOptions, error) {
	opts := &sourceOptions{Source: userConfig.Source}

	if cmd.Flags().Changed("format") {
		opts.Format, _ = cmd.Flags().GetString("format")
	}

	if cmd.Flags().Changed("interval") {
		rawInterval, _ := cmd.Flags().GetString("interval")
		interval, err := types.ParseInterval(rawInterval)
		if err != nil {
			return nil, err
		}
		opts.Interval = interval
	}

	if cmd.Flags().Changed("skip-zero-volume") {
		skip, _ := cmd.Flags().GetBool("skip-zero-volume")
		opts.IncludeZeroVolume = !skip
	}

	var err error
	since, _ := cmd.Flags().GetString("since")
	if opts.since, err = parseTimeFlag(since); err != nil {
		return nil, fmt.Errorf("invalid since time %s: %w", since, err)
	}

	until, _ := cmd.Flags().GetString("until")
	if opts.until, err = parseTimeFlag(until); err != nil {
		return nil, fmt.Errorf("invalid until time %s: %w", until, err)
	}

	if !opts.until.IsZero() && len(until) == len(dateFormat) {
		// a date includes the whole day
		opts.until = opts.until.Add(24*time.Hour - time.Nanosecond)
	}

	return opts, nil
}

func parseTimeFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(dateFormat, s); err == nil {
		return t, nil
	}

	return time.Parse(time.RFC3339, s)
}

// loadSeries reads the bars of one file or directory and builds the
// validated series.
func loadSeries(path string, opts *sourceOptions) (*types.BarSeries, error) {
	format := opts.Format
	if format == "" {
		format = detectFormat(path)
	}

	var bars []types.Bar
	var err error
	switch format {
	case config.FormatParquet:
		bars, err = parquetsource.ReadBars(path)
	case config.FormatYahoo:
		bars, err = csvsource.ReadBarsFromCSVWithDecoder(path, csvsource.NewYahooCSVBarReader)
	case config.FormatBinance:
		bars, err = csvsource.ReadBarsFromCSV(path)
	default:
		return nil, fmt.Errorf("unknown source format %q", format)
	}
	if err != nil {
		return nil, err
	}

	bars = filterTimeRange(bars, opts.since, opts.until)

	series, err := types.NewBarSeries(bars,
		types.WithZeroVolume(opts.IncludeZeroVolume),
		types.WithInterval(opts.Interval))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid bars in %s", path)
	}

	log.WithFields(log.Fields{
		"path":   path,
		"format": format,
		"bars":   series.Len(),
	}).Infof("loaded %d bars from %s", series.Len(), filepath.Base(path))

	return series, nil
}

func filterTimeRange(bars []types.Bar, since, until time.Time) []types.Bar {
	if since.IsZero() && until.IsZero() {
		return bars
	}

	var out []types.Bar
	for _, bar := range bars {
		if !since.IsZero() && bar.Time.Before(since) {
			continue
		}
		if !until.IsZero() && bar.Time.After(until) {
			continue
		}
		out = append(out, bar)
	}
	return out
}

// detectFormat picks parquet by extension and tells yahoo exports from
// binance dumps by their Date header.
func detectFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return config.FormatParquet
	}

	f, err := os.Open(path)
	if err != nil {
		return config.FormatBinance
	}
	defer f.Close()

	if info, err := f.Stat(); err != nil || info.IsDir() {
		return config.FormatBinance
	}

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return config.FormatBinance
	}

	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "date") {
		return config.FormatYahoo
	}

	return config.FormatBinance
}
