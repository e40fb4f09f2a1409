package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/c9s/trendplay/pkg/encoder"
	"github.com/c9s/trendplay/pkg/metrics"
	"github.com/c9s/trendplay/pkg/playback"
	"github.com/c9s/trendplay/pkg/render"
	"github.com/c9s/trendplay/pkg/trendline"
)

func init() {
	addSourceFlags(PlaybackCmd)
	addDetectionFlags(PlaybackCmd)
	addRenderFlags(PlaybackCmd)
	PlaybackCmd.Flags().StringP("output", "o", "", "output .gif file, or a directory for numbered png frames")
	PlaybackCmd.Flags().Int("window", 0, "bars visible in each frame")
	PlaybackCmd.Flags().Int("step", 0, "bars advanced between frames")
	PlaybackCmd.Flags().Int("start", 0, "cursor of the first frame")
	PlaybackCmd.Flags().String("speed", "", "speed preset: slow, normal, fast or very-fast")
	PlaybackCmd.Flags().Bool("overlay", true, "recompute and draw trend lines on every frame")
	PlaybackCmd.Flags().Bool("reveal", false, "grow the window from the first bar instead of sliding it")
	PlaybackCmd.Flags().String("metrics-bind", "", "serve prometheus metrics on this address while rendering, e.g. :9090")
	RootCmd.AddCommand(PlaybackCmd)
}

var PlaybackCmd = &cobra.Command{
	Use:   "playback [--window=60] [--step=1] [--speed=normal] -o OUTPUT FILE",
	Short: "render the bars frame by frame with their trend lines",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlayback,
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().Int("width", 0, "image width in pixels")
	cmd.Flags().Int("height", 0, "image height in pixels")
	cmd.Flags().String("title", "", "chart title, defaults to the file name")
	cmd.Flags().Bool("baseline", false, "draw the least squares regression of the closes")
}

func renderOptions(cmd *cobra.Command, defaultTitle string) render.Options {
	options := render.Options{
		Width:        userConfig.Playback.Width,
		Height:       userConfig.Playback.Height,
		ShowBaseline: userConfig.Playback.ShowBaseline,
		Title:        defaultTitle,
	}

	if cmd.Flags().Changed("width") {
		options.Width, _ = cmd.Flags().GetInt("width")
	}
	if cmd.Flags().Changed("height") {
		options.Height, _ = cmd.Flags().GetInt("height")
	}
	if cmd.Flags().Changed("title") {
		options.Title, _ = cmd.Flags().GetString("title")
	}
	if cmd.Flags().Changed("baseline") {
		options.ShowBaseline, _ = cmd.Flags().GetBool("baseline")
	}
	return options
}

// playbackConfig merges the playback flags over the loaded config. The
// speed preset applies first so explicit step flags win.
func playbackConfig(cmd *cobra.Command) (playback.Config, error) {
	p := userConfig.Playback
	if cmd.Flags().Changed("speed") {
		rawSpeed, _ := cmd.Flags().GetString("speed")
		speed, err := playback.ParseSpeed(rawSpeed)
		if err != nil {
			return playback.Config{}, err
		}
		p.Speed = speed
	}

	c, err := p.Resolved()
	if err != nil {
		return c, err
	}

	if cmd.Flags().Changed("window") {
		c.WindowSize, _ = cmd.Flags().GetInt("window")
	}
	if cmd.Flags().Changed("step") {
		c.StepSize, _ = cmd.Flags().GetInt("step")
	}
	if cmd.Flags().Changed("start") {
		c.Start, _ = cmd.Flags().GetInt("start")
	}
	if cmd.Flags().Changed("overlay") {
		c.Overlay, _ = cmd.Flags().GetBool("overlay")
	}
	if cmd.Flags().Changed("reveal") {
		c.RevealFromStart, _ = cmd.Flags().GetBool("reveal")
	}
	return c, c.Validate()
}

func runPlayback(cmd *cobra.Command, args []string) error {
	path := args[0]

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = userConfig.Playback.Output
	}
	if output == "" {
		return fmt.Errorf("--output is required")
	}

	opts, err := parseSourceFlags(cmd)
	if err != nil {
		return err
	}

	playbackCfg, err := playbackConfig(cmd)
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

	sequencer, err := playback.NewSequencer(series, playbackCfg, detector)
	if err != nil {
		return err
	}

	if sequencer.Len() == 0 {
		return fmt.Errorf("%s has %d bars, fewer than the window size %d", path, series.Len(), playbackCfg.WindowSize)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if bind, _ := cmd.Flags().GetString("metrics-bind"); bind != "" {
		server := serveMetrics(bind)
		defer shutdownServer(server)
	}

	runID := uuid.New().String()
	logger := log.WithFields(log.Fields{"run": runID, "output": output})
	logger.Infof("rendering %d frames of %s", sequencer.Len(), path)

	sink, err := encoder.New(output)
	if err != nil {
		return err
	}

	renderer := render.NewRenderer(renderOptions(cmd, filepath.Base(path)))
	framesRendered := metrics.FramesRenderedMetrics.WithLabelValues(runID)

	bar := pb.Full.Start(sequencer.Len())
	defer bar.Finish()

	for frame := range sequencer.Frames() {
		if err := ctx.Err(); err != nil {
			logger.Warnf("playback interrupted at frame %d", frame.Index)
			return abortSink(sink, err)
		}

		startTime := time.Now()
		img, err := renderer.Render(frame)
		if err != nil {
			return abortSink(sink, err)
		}

		if err := sink.Add(img, frame.Duration); err != nil {
			return abortSink(sink, err)
		}

		metrics.FrameRenderDurationMetrics.Observe(time.Since(startTime).Seconds())
		framesRendered.Inc()
		bar.Increment()
	}

	if err := sink.Close(); err != nil {
		return err
	}

	logger.Infof("playback written to %s", output)
	return nil
}

func abortSink(sink encoder.Sink, err error) error {
	if abortErr := sink.Abort(); abortErr != nil {
		log.WithError(abortErr).Error("unable to abort the output")
	}
	return err
}

func serveMetrics(bind string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: bind, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Errorf("metrics server error")
		}
	}()

	log.Infof("serving metrics on %s/metrics", bind)
	return server
}

func shutdownServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Errorf("metrics server shutdown error")
	}
}
