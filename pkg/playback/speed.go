package playback

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Speed string

const (
	SpeedSlow     Speed = "slow"
	SpeedNormal   Speed = "normal"
	SpeedFast     Speed = "fast"
	SpeedVeryFast Speed = "very-fast"
)

// SpeedPreset is the number of bars revealed per frame and how long each
// frame stays on screen.
type SpeedPreset struct {
	Step          int
	FrameDuration time.Duration
}

var SpeedPresets = map[Speed]SpeedPreset{
	SpeedSlow:     {Step: 1, FrameDuration: 200 * time.Millisecond},
	SpeedNormal:   {Step: 2, FrameDuration: 100 * time.Millisecond},
	SpeedFast:     {Step: 5, FrameDuration: 50 * time.Millisecond},
	SpeedVeryFast: {Step: 10, FrameDuration: 50 * time.Millisecond},
}

func ParseSpeed(a string) (Speed, error) {
	s := Speed(strings.ToLower(strings.TrimSpace(a)))
	s = Speed(strings.ReplaceAll(string(s), "_", "-"))
	if _, ok := SpeedPresets[s]; !ok {
		return "", fmt.Errorf("unknown playback speed %q", a)
	}
	return s, nil
}

func (s Speed) Preset() (SpeedPreset, bool) {
	p, ok := SpeedPresets[s]
	return p, ok
}

func (s *Speed) UnmarshalJSON(data []byte) error {
	var a string
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	speed, err := ParseSpeed(a)
	if err != nil {
		return err
	}

	*s = speed
	return nil
}

func (s *Speed) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var a string
	if err := unmarshal(&a); err != nil {
		return err
	}

	speed, err := ParseSpeed(a)
	if err != nil {
		return err
	}

	*s = speed
	return nil
}
