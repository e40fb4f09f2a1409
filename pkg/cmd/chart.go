package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/c9s/trendplay/pkg/render"
	"github.com/c9s/trendplay/pkg/trendline"
)

func init() {
	addSourceFlags(ChartCommand)
	addDetectionFlags(ChartCommand)
	addRenderFlags(ChartCommand)
	ChartCommand.Flags().StringP("output", "o", "", "output png file, defaults to FILE.png")
	ChartCommand.Flags().Int("last", 0, "only chart the last N bars")
	RootCmd.AddCommand(ChartCommand)
}

var ChartCommand = &cobra.Command{
	Use:   "chart [--since=yyyy-mm-dd] [--until=yyyy-mm-dd] [--last=N] [-o OUTPUT] FILE",
	Short: "render one chart of the bars with their trend lines",
	Args:  cobra.ExactArgs(1),
	RunE:  chart,
}

func chart(cmd *cobra.Command, args []string) error {
	path := args[0]

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = path + ".png"
	}

	opts, err := parseSourceFlags(cmd)
	if err != nil {
		return err
	}

	detector, err := trendline.NewDetector(detectionConfig(cmd))
	if err != nil {
		return err
	}

	series, err := loadSeries(path, opts)
	if err != nil {
		return err
	}

	if last, _ := cmd.Flags().GetInt("last"); last > 0 && last < series.Len() {
		series = series.Slice(series.Len()-last, series.Len())
	}

	if series.Len() == 0 {
		return fmt.Errorf("no bars to chart in %s", path)
	}

	lines, err := detector.Detect(series)
	if err != nil {
		if !trendline.IsInsufficientData(err) {
			return err
		}
		log.WithError(err).Warn("charting without trend lines")
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("cannot create on path %s: %w", output, err)
	}
	defer f.Close()

	renderer := render.NewRenderer(renderOptions(cmd, filepath.Base(path)))
	if err := renderer.RenderPNG(f, series, lines); err != nil {
		return err
	}

	log.Infof("chart with %d trend lines written to %s", len(lines), output)
	return nil
}
