package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrNoChannels indicates a driver built without any channel.
	ErrNoChannels = errors.New("sim: no channels")

	// ErrDuplicateChannel indicates two channels sharing an id.
	ErrDuplicateChannel = errors.New("sim: duplicate channel id")

	// ErrUnknownChannel indicates a lookup for an id the driver does not own.
	ErrUnknownChannel = errors.New("sim: unknown channel")

	// ErrIncomplete indicates Components with a missing table or controller.
	ErrIncomplete = errors.New("sim: incomplete components")
)

// TickError wraps an error with the tick it occurred at.
type TickError struct {
	Tick    int
	Time    float64
	Wrapped error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (t=%.2fs): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
