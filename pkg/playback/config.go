package playback

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
)

const (
	DefaultWindowSize    = 60
	DefaultStepSize      = 1
	DefaultFrameDuration = 100 * time.Millisecond

	// MinRevealBars is the smallest first frame in reveal mode.
	MinRevealBars = 10
)

type Config struct {
	// WindowSize is the number of bars visible in each frame.
	WindowSize int `json:"windowSize" yaml:"windowSize"`

	// StepSize is the number of bars the cursor advances between frames.
	StepSize int `json:"stepSize" yaml:"stepSize"`

	// Start overrides the first cursor position. Zero means WindowSize in
	// sliding mode and max(MinRevealBars, bars/20) in reveal mode.
	Start int `json:"start,omitempty" yaml:"start,omitempty"`

	// Overlay recomputes the trend lines on every window.
	Overlay bool `json:"overlay" yaml:"overlay"`

	// RevealFromStart shows every bar from the beginning of the series up
	// to the cursor instead of a sliding window.
	RevealFromStart bool `json:"revealFromStart" yaml:"revealFromStart"`

	FrameDuration time.Duration `json:"frameDuration" yaml:"frameDuration"`
}

func DefaultConfig() Config {
	return Config{
		WindowSize:    DefaultWindowSize,
		StepSize:      DefaultStepSize,
		Overlay:       true,
		FrameDuration: DefaultFrameDuration,
	}
}

// WithSpeed returns a copy of the config using the step and frame duration
// of the speed preset.
func (c Config) WithSpeed(speed Speed) (Config, error) {
	preset, ok := speed.Preset()
	if !ok {
		return c, fmt.Errorf("unknown playback speed %q", speed)
	}

	c.StepSize = preset.Step
	c.FrameDuration = preset.FrameDuration
	return c, nil
}

// start is the first cursor position for a series of n bars.
func (c Config) start(n int) int {
	if c.Start > 0 {
		return c.Start
	}

	if c.RevealFromStart {
		// a series shorter than the first frame is shown whole
		return max(1, min(n, max(MinRevealBars, n/20)))
	}

	return c.WindowSize
}

func (c Config) Validate() (err error) {
	if c.WindowSize < 1 {
		err = multierr.Append(err, fmt.Errorf("windowSize must be >= 1, got %d", c.WindowSize))
	}
	if c.StepSize < 1 {
		err = multierr.Append(err, fmt.Errorf("stepSize must be >= 1, got %d", c.StepSize))
	}
	if c.Start < 0 {
		err = multierr.Append(err, fmt.Errorf("start must be >= 0, got %d", c.Start))
	}
	if c.Start > 0 && !c.RevealFromStart && c.Start < c.WindowSize {
		err = multierr.Append(err, fmt.Errorf("start %d is before the end of the first window %d", c.Start, c.WindowSize))
	}
	if c.FrameDuration < 0 {
		err = multierr.Append(err, fmt.Errorf("frameDuration must be >= 0, got %s", c.FrameDuration))
	}
	return err
}
