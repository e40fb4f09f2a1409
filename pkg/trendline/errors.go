package trendline

import (
	"errors"
	"fmt"
)

// ErrInsufficientData matches every *InsufficientDataError with errors.Is.
var ErrInsufficientData = errors.New("insufficient data")

// InsufficientDataError explains why a detection produced no lines. It is
// never fatal: it always comes with an empty, usable result.
type InsufficientDataError struct {
	Bars     int
	Required int
	Reason   string
}

func (e *InsufficientDataError) Error() string {
	if e.Required > 0 {
		return fmt.Sprintf("insufficient data: %d bars, need at least %d: %s", e.Bars, e.Required, e.Reason)
	}
	return fmt.Sprintf("insufficient data: %d bars: %s", e.Bars, e.Reason)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// IsInsufficientData reports whether err only says "no trend found".
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}
