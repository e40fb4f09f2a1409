package types

import (
	"encoding/json"
	"fmt"
	"time"
)

type Interval string

func (i Interval) Minutes() int {
	return SupportedIntervals[i]
}

func (i Interval) Duration() time.Duration {
	return time.Duration(i.Minutes()) * time.Minute
}

// IsIntraday reports whether bars of this interval are shorter than a day.
func (i Interval) IsIntraday() bool {
	m := i.Minutes()
	return m > 0 && m < 60*24
}

func (i *Interval) UnmarshalJSON(b []byte) (err error) {
	var a string
	err = json.Unmarshal(b, &a)
	if err != nil {
		return err
	}

	*i = Interval(a)
	return
}

func (i Interval) String() string {
	return string(i)
}

var Interval1m = Interval("1m")
var Interval2m = Interval("2m")
var Interval5m = Interval("5m")
var Interval15m = Interval("15m")
var Interval30m = Interval("30m")
var Interval60m = Interval("60m")
var Interval90m = Interval("90m")
var Interval1h = Interval("1h")
var Interval1d = Interval("1d")
var Interval1w = Interval("1wk")

var SupportedIntervals = map[Interval]int{
	Interval1m:  1,
	Interval2m:  2,
	Interval5m:  5,
	Interval15m: 15,
	Interval30m: 30,
	Interval60m: 60,
	Interval90m: 90,
	Interval1h:  60,
	Interval1d:  60 * 24,
	Interval1w:  60 * 24 * 7,
}

func ParseInterval(s string) (Interval, error) {
	i := Interval(s)
	if _, ok := SupportedIntervals[i]; !ok {
		return "", fmt.Errorf("unsupported interval %q", s)
	}
	return i, nil
}
