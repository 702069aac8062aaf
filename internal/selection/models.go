package selection

import (
	"time"

	"buslane/internal/seatmap"
)

// Selection is a server-held seat selection. The seat statuses are the ones
// the user saw when the selection was opened or last refreshed; checkout is
// still guarded against concurrent bookings.
type Selection struct {
	ID        string                        `json:"id"`
	UserID    string                        `json:"user_id"`
	Session   seatmap.SessionSnapshot       `json:"session"`
	Statuses  map[string]seatmap.SeatStatus `json:"statuses"`
	Departure time.Time                     `json:"departure"`
	CreatedAt time.Time                     `json:"created_at"`
	ExpiresAt time.Time                     `json:"expires_at"`
}

func (s *Selection) restore() *seatmap.Session {
	return seatmap.RestoreSession(s.Session)
}

// markBooked records seats as taken and drops them from the selection.
// It returns the labels that were removed.
func (s *Selection) markBooked(labels []string) []string {
	taken := make(map[string]bool, len(labels))
	for _, label := range labels {
		if _, ok := s.Statuses[label]; ok {
			s.Statuses[label] = seatmap.StatusBooked
		}
		taken[label] = true
	}
	return s.keepSelected(func(label string) bool { return !taken[label] })
}

// applyStatuses replaces the status snapshot and releases selected seats that
// are no longer available.
func (s *Selection) applyStatuses(statuses map[string]seatmap.SeatStatus) []string {
	s.Statuses = statuses
	return s.keepSelected(func(label string) bool {
		return statuses[label] == seatmap.StatusAvailable
	})
}

func (s *Selection) keepSelected(keep func(string) bool) []string {
	var kept, released []string
	for _, label := range s.Session.Selected {
		if keep(label) {
			kept = append(kept, label)
		} else {
			released = append(released, label)
		}
	}
	s.Session.Selected = kept
	return released
}
