package types

import (
	"fmt"
	"time"

	"github.com/c9s/trendplay/pkg/fixedpoint"
)

var Two = fixedpoint.NewFromInt(2)

type Direction int

const DirectionUp = 1
const DirectionNone = 0
const DirectionDown = -1

// Bar is one OHLCV record. Bars are values and never mutated once they are
// part of a BarSeries.
type Bar struct {
	Time time.Time `json:"time"`

	Open   fixedpoint.Value `json:"open"`
	High   fixedpoint.Value `json:"high"`
	Low    fixedpoint.Value `json:"low"`
	Close  fixedpoint.Value `json:"close"`
	Volume int64            `json:"volume"`
}

// Validate checks low <= min(open, close) <= max(open, close) <= high and a
// non-negative volume.
func (b Bar) Validate() error {
	if b.Time.IsZero() {
		return fmt.Errorf("timestamp is zero")
	}

	if b.Low.Compare(b.High) > 0 {
		return fmt.Errorf("low %s is above high %s", b.Low, b.High)
	}

	bodyLow := fixedpoint.Min(b.Open, b.Close)
	bodyHigh := fixedpoint.Max(b.Open, b.Close)
	if b.Low.Compare(bodyLow) > 0 {
		return fmt.Errorf("low %s is above the candle body %s", b.Low, bodyLow)
	}

	if bodyHigh.Compare(b.High) > 0 {
		return fmt.Errorf("candle body %s is above high %s", bodyHigh, b.High)
	}

	if b.Volume < 0 {
		return fmt.Errorf("negative volume %d", b.Volume)
	}

	return nil
}

func (b Bar) Mid() fixedpoint.Value {
	return b.High.Add(b.Low).Div(Two)
}

func (b Bar) Direction() Direction {
	switch b.Close.Compare(b.Open) {
	case 1:
		return DirectionUp
	case -1:
		return DirectionDown
	}
	return DirectionNone
}

func (b Bar) GetMaxChange() fixedpoint.Value {
	return b.High.Sub(b.Low)
}

func (b Bar) String() string {
	return fmt.Sprintf("Bar %s O: %s H: %s L: %s C: %s V: %d",
		b.Time.Format(time.RFC3339), b.Open, b.High, b.Low, b.Close, b.Volume)
}
