package calibration

import (
	"errors"
	"fmt"
)

var (
	// ErrTooFewPoints indicates a table with fewer than two reference points.
	ErrTooFewPoints = errors.New("calibration: table needs at least two points")

	// ErrMalformed indicates a table that cannot be interpolated: temperature
	// not strictly increasing or voltage decreasing somewhere along the table.
	ErrMalformed = errors.New("calibration: table is not monotonic")
)

// Error reports the table entry at which validation failed.
type Error struct {
	Index   int
	Point   Point
	Reason  string
	Wrapped error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: point %d (%.2f C, %.3f mV): %s",
		e.Wrapped.Error(), e.Index, e.Point.Temperature, e.Point.Voltage, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}
