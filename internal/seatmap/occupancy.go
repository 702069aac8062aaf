package seatmap

// BookingStatus mirrors the lifecycle of a booking record.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingBooked    BookingStatus = "booked"
	BookingCancelled BookingStatus = "cancelled"
)

// IsValid checks if the booking status is known
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingBooked, BookingCancelled:
		return true
	}
	return false
}

// IsActive reports whether the booking still occupies its seats.
func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingBooked
}

// BookingRecord is the slice of a booking the reconciler needs.
type BookingRecord struct {
	ID         string
	Seats      []string
	Status     BookingStatus
	HolderName string
}

// BookingRef identifies the booking that occupies a seat.
type BookingRef struct {
	BookingID  string `json:"bookingId"`
	HolderName string `json:"holderName"`
}

// SeatState is the status of one included seat.
type SeatState struct {
	Status  SeatStatus  `json:"status"`
	Booking *BookingRef `json:"booking,omitempty"`
}

// OccupancyState classifies every included seat of a schedule. It is derived on
// every read and never stored.
type OccupancyState struct {
	Seats map[string]SeatState `json:"seats"`
	// Unplaced lists booked labels that are not included seats of the layout.
	Unplaced []string `json:"unplaced,omitempty"`
}

// Reconcile starts every included seat as available and marks the seats of each
// active booking as booked. When two active bookings claim the same seat the
// one processed last wins; the input is expected to be consistent.
func Reconcile(inclusion *Inclusion, bookings []BookingRecord) OccupancyState {
	state := OccupancyState{Seats: make(map[string]SeatState, inclusion.TotalSeats())}
	for _, label := range inclusion.Labels() {
		state.Seats[label] = SeatState{Status: StatusAvailable}
	}

	for _, b := range bookings {
		if !b.Status.IsActive() {
			continue
		}
		for _, label := range b.Seats {
			if _, ok := state.Seats[label]; !ok {
				state.Unplaced = append(state.Unplaced, label)
				continue
			}
			state.Seats[label] = SeatState{
				Status:  StatusBooked,
				Booking: &BookingRef{BookingID: b.ID, HolderName: b.HolderName},
			}
		}
	}
	return state
}

// Status returns the status of label, or false when it is not an included seat.
func (o OccupancyState) Status(label string) (SeatStatus, bool) {
	s, ok := o.Seats[label]
	return s.Status, ok
}

// AvailableCount counts seats still open for selection.
func (o OccupancyState) AvailableCount() int {
	n := 0
	for _, s := range o.Seats {
		if s.Status == StatusAvailable {
			n++
		}
	}
	return n
}

// BookedCount counts seats held by an active booking.
func (o OccupancyState) BookedCount() int {
	return len(o.Seats) - o.AvailableCount()
}

// Statuses flattens the state into label -> status.
func (o OccupancyState) Statuses() map[string]SeatStatus {
	out := make(map[string]SeatStatus, len(o.Seats))
	for label, s := range o.Seats {
		out[label] = s.Status
	}
	return out
}
