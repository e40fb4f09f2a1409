package metrics

import "github.com/prometheus/client_golang/prometheus"

var FramesRenderedMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "trendplay_frames_rendered_total",
		Help: "rendered playback frames",
	}, []string{"run_id"})

var FrameRenderDurationMetrics = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "trendplay_frame_render_duration_seconds",
		Help:    "time spent rendering and encoding one frame",
		Buckets: prometheus.DefBuckets,
	})

func init() {
	prometheus.MustRegister(FramesRenderedMetrics, FrameRenderDurationMetrics)
}
