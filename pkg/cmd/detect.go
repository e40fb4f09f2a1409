package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/c9s/trendplay/pkg/metrics"
	"github.com/c9s/trendplay/pkg/style"
	"github.com/c9s/trendplay/pkg/trendline"
	"github.com/c9s/trendplay/pkg/types"
)

func init() {
	addSourceFlags(DetectCmd)
	addDetectionFlags(DetectCmd)
	DetectCmd.Flags().Bool("baseline", false, "also print the least squares regression of the closes")
	DetectCmd.Flags().Bool("candidates", false, "print every candidate line instead of the selection")
	DetectCmd.Flags().Int("concurrency", 4, "number of files analyzed at the same time")
	RootCmd.AddCommand(DetectCmd)
}

var DetectCmd = &cobra.Command{
	Use:   "detect [--pivot-window=3] [--tolerance=0] [--max-lines=4] [FILE...]",
	Short: "detect trend lines in bar files",
	Long:  "detect trend lines in bar files, falling back to source.paths of the config file",
	RunE:  detect,
}

func addDetectionFlags(cmd *cobra.Command) {
	cmd.Flags().Int("pivot-window", 0, "bars on each side a pivot must dominate")
	cmd.Flags().Float64("min-prominence", 0, "drop pivots less prominent than this fraction of the median close")
	cmd.Flags().Float64("tolerance", 0, "allowed penetration as a fraction of the median close")
	cmd.Flags().Int("max-violations", 0, "bars allowed to break a line between its anchors")
	cmd.Flags().Int("max-lines", 0, "maximum number of lines to keep")
	cmd.Flags().Bool("require-direction", false, "keep only rising support and falling resistance")
}

// detectionConfig merges the detection flags over the loaded config.
func detectionConfig(cmd *cobra.Command) trendline.Config {
	c := userConfig.Detection
	if cmd.Flags().Changed("pivot-window") {
		c.PivotWindow, _ = cmd.Flags().GetInt("pivot-window")
	}
	if cmd.Flags().Changed("min-prominence") {
		c.MinProminence, _ = cmd.Flags().GetFloat64("min-prominence")
	}
	if cmd.Flags().Changed("tolerance") {
		c.Tolerance, _ = cmd.Flags().GetFloat64("tolerance")
	}
	if cmd.Flags().Changed("max-violations") {
		c.MaxViolations, _ = cmd.Flags().GetInt("max-violations")
	}
	if cmd.Flags().Changed("max-lines") {
		c.MaxLines, _ = cmd.Flags().GetInt("max-lines")
	}
	if cmd.Flags().Changed("require-direction") {
		c.RequireDirection, _ = cmd.Flags().GetBool("require-direction")
	}
	return c
}

type detectResult struct {
	path     string
	series   *types.BarSeries
	analysis *trendline.Analysis
	baseline *trendline.Baseline
	err      error
}

func detect(cmd *cobra.Command, args []string) error {
	opts, err := parseSourceFlags(cmd)
	if err != nil {
		return err
	}

	detector, err := trendline.NewDetector(detectionConfig(cmd))
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if args, err = userConfig.Source.Paths.Expand(); err != nil {
			return err
		}
	}

	if len(args) == 0 {
		return fmt.Errorf("no input file, pass one or set source.paths in the config file")
	}

	withBaseline, _ := cmd.Flags().GetBool("baseline")
	showCandidates, _ := cmd.Flags().GetBool("candidates")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	results := make([]detectResult, len(args))

	eg, ctx := errgroup.WithContext(cmd.Context())
	eg.SetLimit(max(1, concurrency))
	for i, path := range args {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := detectFile(detector, path, opts, withBaseline)
			if err != nil {
				return err
			}

			results[i] = result
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	for _, result := range results {
		lines := result.analysis.Lines
		if showCandidates {
			lines = result.analysis.Candidates
		}
		printLines(result, lines)
	}

	return nil
}

func detectFile(detector *trendline.Detector, path string, opts *sourceOptions, withBaseline bool) (detectResult, error) {
	result := detectResult{path: path}

	series, err := loadSeries(path, opts)
	if err != nil {
		return result, err
	}
	result.series = series

	source := filepath.Base(path)
	startTime := time.Now()
	result.analysis, result.err = detector.Analyze(series)
	metrics.DetectionDurationMetrics.WithLabelValues(source).Observe(time.Since(startTime).Seconds())

	if trendline.IsInsufficientData(result.err) {
		metrics.InsufficientDataMetrics.WithLabelValues(source).Inc()
		log.WithError(result.err).Warnf("no trend lines in %s", source)
	} else if result.err != nil {
		return result, result.err
	}

	metrics.DetectedLinesMetrics.WithLabelValues(source, trendline.Support.String()).
		Set(float64(len(result.analysis.Lines.OfKind(trendline.Support))))
	metrics.DetectedLinesMetrics.WithLabelValues(source, trendline.Resistance.String()).
		Set(float64(len(result.analysis.Lines.OfKind(trendline.Resistance))))

	if withBaseline {
		baseline, err := trendline.FitBaseline(series)
		if err != nil {
			log.WithError(err).Warnf("no baseline for %s", source)
		}
		result.baseline = baseline
	}

	return result, nil
}

func printLines(result detectResult, lines []trendline.Line) {
	color.Green("%s: %d bars, %d pivots, %d candidates, price scale %.4f",
		result.path, result.series.Len(), len(result.analysis.Pivots),
		len(result.analysis.Candidates), result.analysis.PriceScale)

	if result.err != nil {
		color.Yellow("%s", result.err)
	}

	if len(lines) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		if color.NoColor {
			t.SetStyle(*style.NewPlainTableStyle())
		} else {
			t.SetStyle(*style.NewDefaultTableStyle())
		}

		t.AppendHeader(table.Row{"#", "kind", "slope", "from", "to", "anchors", "touches", "violations", "last value"})
		last := result.series.Len() - 1
		for i, line := range lines {
			t.AppendRow(table.Row{
				i + 1,
				style.LineKindString(line.Kind),
				fmt.Sprintf("%s %.6f", style.SlopeArrow(line.Slope), line.Slope),
				result.series.At(line.Start).Time.Format(time.RFC3339),
				result.series.At(line.AnchorEnd).Time.Format(time.RFC3339),
				len(line.Anchors),
				line.TouchCount,
				line.ViolationCount,
				fmt.Sprintf("%.4f", line.ValueAt(float64(last))),
			})
		}
		t.Render()
	}

	if result.baseline != nil {
		color.Cyan("baseline: slope %.6f, intercept %.4f, r2 %.4f",
			result.baseline.Slope, result.baseline.Intercept, result.baseline.R2)
	}
}
