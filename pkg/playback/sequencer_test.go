package playback

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/trendplay/pkg/fixedpoint"
	"github.com/c9s/trendplay/pkg/trendline"
	"github.com/c9s/trendplay/pkg/types"
)

var startTime = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

func randomSeries(t *testing.T, n int) *types.BarSeries {
	rnd := rand.New(rand.NewSource(int64(n)))

	var bars []types.Bar
	price := 50.0
	for i := 0; i < n; i++ {
		open := price
		price = math.Max(1, price+rnd.NormFloat64())
		bars = append(bars, types.Bar{
			Time:   startTime.Add(time.Duration(i) * time.Minute),
			Open:   fixedpoint.NewFromFloat(open),
			High:   fixedpoint.NewFromFloat(math.Max(open, price) + rnd.Float64()),
			Low:    fixedpoint.NewFromFloat(math.Min(open, price) - rnd.Float64()),
			Close:  fixedpoint.NewFromFloat(price),
			Volume: 100,
		})
	}

	series, err := types.NewBarSeries(bars, types.WithInterval(types.Interval1m))
	require.NoError(t, err)
	return series
}

func collect(t *testing.T, s *Sequencer) []Frame {
	var frames []Frame
	for f := range s.Frames() {
		frames = append(frames, f)
	}
	return frames
}

func TestSequencer_WindowAndStep(t *testing.T) {
	series := randomSeries(t, 100)

	config := DefaultConfig()
	config.WindowSize = 20
	config.StepSize = 5
	config.Overlay = false

	s, err := NewSequencer(series, config, nil)
	require.NoError(t, err)
	assert.Equal(t, 17, s.Len())

	frames := collect(t, s)
	require.Len(t, frames, 17)

	for i, f := range frames {
		assert.Equal(t, i, f.Index)
		assert.Equal(t, 20+5*i, f.Cursor)
		assert.Equal(t, 20, f.Window.Len())
		assert.Equal(t, series.At(f.Cursor-1), f.Window.Last())
		assert.Equal(t, series.At(f.Cursor-20).Time, f.StartTime)
		assert.Equal(t, series.At(f.Cursor-1).Time, f.EndTime)
		assert.Nil(t, f.Lines)
		assert.Equal(t, DefaultFrameDuration, f.Duration)
	}

	assert.Equal(t, 100, frames[len(frames)-1].Cursor)
	assert.Equal(t, 0, s.Remaining())
}

func TestSequencer_FrameCount(t *testing.T) {
	testcases := []struct {
		bars, window, step int
		cursors            []int
	}{
		{bars: 10, window: 3, step: 4, cursors: []int{3, 7, 10}},
		{bars: 10, window: 10, step: 1, cursors: []int{10}},
		{bars: 10, window: 11, step: 1, cursors: nil},
		{bars: 5, window: 2, step: 1, cursors: []int{2, 3, 4, 5}},
		{bars: 12, window: 2, step: 5, cursors: []int{2, 7, 12}},
	}

	for _, tc := range testcases {
		series := randomSeries(t, tc.bars)
		config := Config{WindowSize: tc.window, StepSize: tc.step}

		s, err := NewSequencer(series, config, nil)
		require.NoError(t, err)
		assert.Equal(t, len(tc.cursors), s.Len())

		var cursors []int
		for f := range s.Frames() {
			cursors = append(cursors, f.Cursor)
		}
		assert.Equal(t, tc.cursors, cursors, "%d bars, window %d, step %d", tc.bars, tc.window, tc.step)

		expected := 0
		if tc.window <= tc.bars {
			expected = int(math.Ceil(float64(tc.bars-tc.window)/float64(tc.step))) + 1
		}
		assert.Equal(t, expected, len(cursors))
	}
}

func TestSequencer_RevealFromStart(t *testing.T) {
	series := randomSeries(t, 30)

	s, err := NewSequencer(series, Config{WindowSize: 60, StepSize: 10, RevealFromStart: true}, nil)
	require.NoError(t, err)

	frames := collect(t, s)
	require.Len(t, frames, 3)
	for i, cursor := range []int{10, 20, 30} {
		assert.Equal(t, cursor, frames[i].Cursor)
		assert.Equal(t, cursor, frames[i].Window.Len())
		assert.Equal(t, series.First(), frames[i].Window.First())
	}
}

func TestSequencer_RevealFirstFrame(t *testing.T) {
	testcases := []struct {
		bars  int
		first int
	}{
		{bars: 5, first: 5},
		{bars: 10, first: 10},
		{bars: 150, first: 10},
		{bars: 400, first: 20},
		{bars: 1000, first: 50},
	}

	for _, tc := range testcases {
		s, err := NewSequencer(randomSeries(t, tc.bars), Config{WindowSize: 60, StepSize: 1000, RevealFromStart: true}, nil)
		require.NoError(t, err)

		frame, ok := s.Next()
		require.True(t, ok)
		assert.Equal(t, tc.first, frame.Cursor, "%d bars", tc.bars)
		assert.Equal(t, tc.first, frame.Window.Len(), "%d bars", tc.bars)
	}

	s, err := NewSequencer(randomSeries(t, 400), Config{WindowSize: 60, StepSize: 1, Start: 3, RevealFromStart: true}, nil)
	require.NoError(t, err)
	frame, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, 3, frame.Cursor)
}

func TestSequencer_Start(t *testing.T) {
	series := randomSeries(t, 50)

	s, err := NewSequencer(series, Config{WindowSize: 10, StepSize: 20, Start: 25}, nil)
	require.NoError(t, err)

	var cursors []int
	for f := range s.Frames() {
		cursors = append(cursors, f.Cursor)
	}
	assert.Equal(t, []int{25, 45, 50}, cursors)

	_, err = NewSequencer(series, Config{WindowSize: 10, StepSize: 1, Start: 5}, nil)
	assert.Error(t, err)
}

func TestSequencer_Overlay(t *testing.T) {
	series := randomSeries(t, 120)

	detector, err := trendline.NewDetector(trendline.DefaultConfig())
	require.NoError(t, err)

	config := Config{WindowSize: 40, StepSize: 20, Overlay: true}
	s, err := NewSequencer(series, config, detector)
	require.NoError(t, err)

	for f := range s.Frames() {
		require.NotNil(t, f.Lines)

		expected, _ := detector.Detect(f.Window)
		assert.Equal(t, expected, f.Lines)

		for _, line := range f.Lines {
			assert.Equal(t, f.Window.Len()-1, line.End)
		}
	}

	_, err = NewSequencer(series, config, nil)
	assert.Error(t, err)
}

func TestSequencer_OverlayTinyWindow(t *testing.T) {
	series := randomSeries(t, 10)

	detector, err := trendline.NewDetector(trendline.DefaultConfig())
	require.NoError(t, err)

	s, err := NewSequencer(series, Config{WindowSize: 3, StepSize: 3, Overlay: true}, detector)
	require.NoError(t, err)

	for f := range s.Frames() {
		assert.NotNil(t, f.Lines)
		assert.Empty(t, f.Lines)
	}
}

func TestSequencer_ForwardOnly(t *testing.T) {
	series := randomSeries(t, 30)

	s, err := NewSequencer(series, Config{WindowSize: 10, StepSize: 5}, nil)
	require.NoError(t, err)

	first, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, 10, first.Cursor)
	assert.Equal(t, 4, s.Remaining())

	// a range picks up where Next left off and can stop early
	for f := range s.Frames() {
		assert.Equal(t, 15, f.Cursor)
		break
	}

	rest := collect(t, s)
	require.Len(t, rest, 3)
	assert.Equal(t, 20, rest[0].Cursor)
	assert.Equal(t, 30, rest[2].Cursor)

	_, ok = s.Next()
	assert.False(t, ok)
	assert.Empty(t, collect(t, s))
}

func TestSequencer_EmptySeries(t *testing.T) {
	s, err := NewSequencer(nil, Config{WindowSize: 60, StepSize: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, collect(t, s))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	err := Config{WindowSize: 0, StepSize: 0, FrameDuration: -time.Second}.Validate()
	assert.ErrorContains(t, err, "windowSize")
	assert.ErrorContains(t, err, "stepSize")
	assert.ErrorContains(t, err, "frameDuration")
}

func TestConfig_WithSpeed(t *testing.T) {
	config, err := DefaultConfig().WithSpeed(SpeedFast)
	require.NoError(t, err)
	assert.Equal(t, 5, config.StepSize)
	assert.Equal(t, 50*time.Millisecond, config.FrameDuration)
	assert.Equal(t, DefaultWindowSize, config.WindowSize)

	_, err = DefaultConfig().WithSpeed("warp")
	assert.Error(t, err)
}

func TestParseSpeed(t *testing.T) {
	for input, expected := range map[string]Speed{
		"slow":      SpeedSlow,
		"Normal":    SpeedNormal,
		" fast ":    SpeedFast,
		"very_fast": SpeedVeryFast,
		"very-fast": SpeedVeryFast,
	} {
		speed, err := ParseSpeed(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, speed)
	}

	_, err := ParseSpeed("ludicrous")
	assert.Error(t, err)
}
