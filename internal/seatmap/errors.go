package seatmap

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidLayoutSpec      = errors.New("invalid layout spec")
	ErrInvalidSeatLayout      = errors.New("seat layout does not match the generated layout")
	ErrNotASeat               = errors.New("cell is not a seat")
	ErrSeatUnavailable        = errors.New("seat unavailable")
	ErrSelectionLimitExceeded = errors.New("selection limit exceeded")
	ErrNoSeatsSelected        = errors.New("no seats selected")
)

// SeatError ties a selection failure to the seat the user clicked.
type SeatError struct {
	Label string
	Limit int
	Err   error
}

func (e *SeatError) Error() string {
	switch {
	case errors.Is(e.Err, ErrSeatUnavailable):
		return fmt.Sprintf("seat %s is not available", e.Label)
	case errors.Is(e.Err, ErrSelectionLimitExceeded):
		return fmt.Sprintf("cannot select seat %s: at most %d seats per booking", e.Label, e.Limit)
	default:
		return fmt.Sprintf("seat %s: %v", e.Label, e.Err)
	}
}

func (e *SeatError) Unwrap() error {
	return e.Err
}

func invalidSpec(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidLayoutSpec, fmt.Sprintf(format, args...))
}
