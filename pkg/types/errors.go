package types

import (
	"errors"
	"fmt"
)

// ErrMalformedBar matches every *MalformedBarError with errors.Is.
var ErrMalformedBar = errors.New("malformed bar")

// MalformedBarError reports an input bar that breaks an ordering or OHLC
// invariant. Index is the position in the raw input.
type MalformedBarError struct {
	Index  int
	Bar    Bar
	Reason string
}

func (e *MalformedBarError) Error() string {
	return fmt.Sprintf("malformed bar at index %d: %s", e.Index, e.Reason)
}

func (e *MalformedBarError) Is(target error) bool {
	return target == ErrMalformedBar
}
