package playback

import (
	"iter"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/c9s/trendplay/pkg/trendline"
	"github.com/c9s/trendplay/pkg/types"
)

var log = logrus.WithField("component", "playback")

// Frame is one step of the playback. Window is a read view over the source
// series. Lines is nil when overlays are disabled and empty when the window
// does not produce any line.
type Frame struct {
	Index  int
	Cursor int

	Window *types.BarSeries
	Lines  trendline.LineSet

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Sequencer walks a series forward and produces one frame per step.
// It is not safe for concurrent use; the series may be shared.
type Sequencer struct {
	series   *types.BarSeries
	config   Config
	detector *trendline.Detector

	cursor int
	index  int
	done   bool
}

func NewSequencer(series *types.BarSeries, config Config, detector *trendline.Detector) (*Sequencer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Overlay && detector == nil {
		return nil, errors.New("overlay requires a trend line detector")
	}

	s := &Sequencer{
		series:   series,
		config:   config,
		detector: detector,
		cursor:   config.start(series.Len()),
	}

	if s.cursor > series.Len() {
		log.Debugf("start %d is past the last bar %d, no frames", s.cursor, series.Len())
		s.done = true
	}

	return s, nil
}

// Len is the total number of frames the sequencer produces.
func (s *Sequencer) Len() int {
	n := s.series.Len()
	start := s.config.start(n)
	if start > n {
		return 0
	}

	step := s.config.StepSize
	return (n-start+step-1)/step + 1
}

// Remaining is the number of frames not yet returned by Next.
func (s *Sequencer) Remaining() int {
	return s.Len() - s.index
}

// Next returns the frame at the cursor and advances it. The second value is
// false once the frame ending at the last bar has been returned.
func (s *Sequencer) Next() (Frame, bool) {
	if s.done {
		return Frame{}, false
	}

	frame := s.frameAt(s.cursor)

	n := s.series.Len()
	if s.cursor >= n {
		s.done = true
	} else {
		s.cursor = min(s.cursor+s.config.StepSize, n)
	}
	s.index++

	return frame, true
}

// Frames yields the remaining frames. Stopping the range stops the
// playback; the frames already consumed are not produced again.
func (s *Sequencer) Frames() iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		for {
			frame, ok := s.Next()
			if !ok || !yield(frame) {
				return
			}
		}
	}
}

func (s *Sequencer) frameAt(cursor int) Frame {
	from := 0
	if !s.config.RevealFromStart {
		from = cursor - s.config.WindowSize
	}

	window := s.series.Slice(from, cursor)
	frame := Frame{
		Index:     s.index,
		Cursor:    cursor,
		Window:    window,
		StartTime: window.StartTime(),
		EndTime:   window.EndTime(),
		Duration:  s.config.FrameDuration,
	}

	if s.config.Overlay {
		lines, err := s.detector.Detect(window)
		if err != nil {
			// only insufficient data is possible here, the detector config
			// is validated at construction
			log.WithError(err).Debugf("frame %d has no trend lines", s.index)
			lines = trendline.LineSet{}
		}
		frame.Lines = lines
	}

	return frame
}
