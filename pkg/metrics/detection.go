package metrics

import "github.com/prometheus/client_golang/prometheus"

var DetectionDurationMetrics = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "trendplay_detection_duration_seconds",
		Help:    "trend line detection duration per series",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"source"})

var DetectedLinesMetrics = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "trendplay_detected_lines",
		Help: "number of selected trend lines of the last detection",
	}, []string{"source", "kind"})

var InsufficientDataMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "trendplay_insufficient_data_total",
		Help: "detections that produced no line for lack of data",
	}, []string{"source"})

func init() {
	prometheus.MustRegister(DetectionDurationMetrics, DetectedLinesMetrics, InsufficientDataMetrics)
}
