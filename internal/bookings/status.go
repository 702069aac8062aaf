package bookings

import "buslane/internal/seatmap"

type Status string

const (
	StatusPending   Status = "pending"
	StatusBooked    Status = "booked"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the booking status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusBooked, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsActive reports whether a booking in this status holds its seats
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusBooked
}

// CanTransitionTo allows pending -> booked and any active status -> cancelled
func (s Status) CanTransitionTo(next Status) bool {
	switch next {
	case StatusBooked:
		return s == StatusPending
	case StatusCancelled:
		return s.IsActive()
	}
	return false
}

func (s Status) seatmap() seatmap.BookingStatus {
	return seatmap.BookingStatus(s)
}

func activeStatuses() []Status {
	return []Status{StatusPending, StatusBooked}
}
