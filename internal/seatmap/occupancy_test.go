package seatmap

import (
	"testing"
)

func includedLayout(t *testing.T) *Inclusion {
	t.Helper()
	layout := mustGenerate(t, LayoutSpec{Rows: 2, Columns: 3, AisleColumn: 1, IncludeBackRow: true, BackRowSeats: 3})
	inclusion := NewInclusion(layout)
	inclusion.SelectAll()
	// A2 is not sold on this bus.
	if err := inclusion.Set(1, 0, false); err != nil {
		t.Fatalf("Set: %v", err)
	}
	return inclusion
}

func TestReconcileClassifiesEverySeat(t *testing.T) {
	t.Parallel()

	inclusion := includedLayout(t)
	bookings := []BookingRecord{
		{ID: "b1", Seats: []string{"A1", "B1"}, Status: BookingBooked, HolderName: "Ana Lima"},
		{ID: "b2", Seats: []string{"C3"}, Status: BookingPending, HolderName: "Raj Patel"},
		{ID: "b3", Seats: []string{"B2"}, Status: BookingCancelled, HolderName: "Old Holder"},
	}

	state := Reconcile(inclusion, bookings)

	if len(state.Seats) != inclusion.TotalSeats() {
		t.Fatalf("state has %d seats, inclusion has %d", len(state.Seats), inclusion.TotalSeats())
	}
	for label, seat := range state.Seats {
		switch seat.Status {
		case StatusAvailable:
			if seat.Booking != nil {
				t.Errorf("%s: available seat carries booking %+v", label, seat.Booking)
			}
		case StatusBooked:
			if seat.Booking == nil {
				t.Errorf("%s: booked seat without booking reference", label)
			}
		default:
			t.Errorf("%s: unexpected status %q", label, seat.Status)
		}
	}

	if s := state.Seats["A1"]; s.Status != StatusBooked || s.Booking.BookingID != "b1" || s.Booking.HolderName != "Ana Lima" {
		t.Errorf("A1 = %+v, want booked by b1", s)
	}
	if s := state.Seats["C3"]; s.Status != StatusBooked || s.Booking.BookingID != "b2" {
		t.Errorf("C3 = %+v, want booked by pending b2", s)
	}
	if s := state.Seats["B2"]; s.Status != StatusAvailable {
		t.Errorf("B2 = %+v, cancelled booking should not occupy it", s)
	}
	if _, ok := state.Seats["A2"]; ok {
		t.Error("A2 is not included and should not appear in the state")
	}
	if state.BookedCount() != 3 || state.AvailableCount() != inclusion.TotalSeats()-3 {
		t.Errorf("booked=%d available=%d", state.BookedCount(), state.AvailableCount())
	}
}

func TestReconcileReportsUnplacedSeats(t *testing.T) {
	t.Parallel()

	inclusion := includedLayout(t)
	state := Reconcile(inclusion, []BookingRecord{
		{ID: "b1", Seats: []string{"A2", "Q9", "B1"}, Status: BookingBooked},
	})

	if len(state.Unplaced) != 2 || state.Unplaced[0] != "A2" || state.Unplaced[1] != "Q9" {
		t.Errorf("Unplaced = %v, want [A2 Q9]", state.Unplaced)
	}
	if status, _ := state.Status("B1"); status != StatusBooked {
		t.Errorf("B1 status = %q, want booked", status)
	}
}

func TestReconcileLastBookingWinsOnConflict(t *testing.T) {
	t.Parallel()

	inclusion := includedLayout(t)
	state := Reconcile(inclusion, []BookingRecord{
		{ID: "first", Seats: []string{"A1"}, Status: BookingBooked},
		{ID: "second", Seats: []string{"A1"}, Status: BookingPending},
	})
	if got := state.Seats["A1"].Booking.BookingID; got != "second" {
		t.Errorf("A1 booking = %s, want second", got)
	}
}

func TestReconcileDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	inclusion := includedLayout(t)
	before := inclusion.TotalSeats()
	bookings := []BookingRecord{{ID: "b1", Seats: []string{"A1"}, Status: BookingBooked}}

	first := Reconcile(inclusion, bookings)
	second := Reconcile(inclusion, bookings)

	if inclusion.TotalSeats() != before {
		t.Error("Reconcile changed the inclusion")
	}
	if first.BookedCount() != second.BookedCount() || first.AvailableCount() != second.AvailableCount() {
		t.Error("Reconcile is not repeatable on the same inputs")
	}
}
