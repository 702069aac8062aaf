package seatmap

import (
	"time"
)

const (
	DefaultMaxSeats       = 4
	DefaultDebounceWindow = 300 * time.Millisecond
)

// SessionState is the coarse state of a selection session.
type SessionState string

const (
	StateEmpty             SessionState = "empty"
	StatePartiallySelected SessionState = "partially_selected"
	StateFull              SessionState = "full"
)

// ToggleAction says what a toggle did to the selection.
type ToggleAction string

const (
	ActionAdded     ToggleAction = "added"
	ActionRemoved   ToggleAction = "removed"
	ActionCoalesced ToggleAction = "coalesced"
	ActionRejected  ToggleAction = "rejected"
)

// Debouncer coalesces bursts of toggles on the same seat. A burst opens with
// an applied toggle and lasts while further toggles on that seat keep arriving
// less than window apart.
type Debouncer struct {
	window time.Duration
	last   map[string]time.Time
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window, last: make(map[string]time.Time)}
}

// Coalesced reports whether a toggle on key at time at falls inside the
// current burst on key, extending the burst when it does.
func (d *Debouncer) Coalesced(key string, at time.Time) bool {
	prev, seen := d.last[key]
	if !seen || d.window <= 0 {
		return false
	}
	if gap := at.Sub(prev); gap < 0 || gap >= d.window {
		return false
	}
	d.last[key] = at
	return true
}

// Record opens a burst on key with a toggle applied at time at.
func (d *Debouncer) Record(key string, at time.Time) {
	d.last[key] = at
}

// Session is the selection a user builds on one seat map before checkout.
type Session struct {
	ScheduleRef string
	Price       float64
	MaxSeats    int

	selected []string
	debounce *Debouncer
}

// ToggleResult is the state after a toggle.
type ToggleResult struct {
	Action   ToggleAction `json:"action"`
	Label    string       `json:"seat"`
	Selected []string     `json:"selected"`
	Total    float64      `json:"totalPrice"`
	State    SessionState `json:"state"`
}

// NewSession opens an empty selection. maxSeats <= 0 falls back to DefaultMaxSeats.
func NewSession(scheduleRef string, price float64, maxSeats int) *Session {
	if maxSeats <= 0 {
		maxSeats = DefaultMaxSeats
	}
	return &Session{
		ScheduleRef: scheduleRef,
		Price:       price,
		MaxSeats:    maxSeats,
		debounce:    NewDebouncer(DefaultDebounceWindow),
	}
}

// WithDebounceWindow replaces the burst window; zero disables coalescing.
func (s *Session) WithDebounceWindow(window time.Duration) *Session {
	s.debounce = NewDebouncer(window)
	return s
}

// Toggle applies one click on label whose status was read from the seat map.
// Errors leave the selection and the debounce history untouched.
func (s *Session) Toggle(label string, status SeatStatus, at time.Time) (ToggleResult, error) {
	if s.debounce.Coalesced(label, at) {
		return s.result(ActionCoalesced, label), nil
	}

	if status != StatusAvailable {
		return s.result(ActionRejected, label), &SeatError{Label: label, Err: ErrSeatUnavailable}
	}

	if i := s.indexOf(label); i >= 0 {
		s.selected = append(s.selected[:i], s.selected[i+1:]...)
		s.debounce.Record(label, at)
		return s.result(ActionRemoved, label), nil
	}

	if len(s.selected) >= s.MaxSeats {
		return s.result(ActionRejected, label), &SeatError{Label: label, Limit: s.MaxSeats, Err: ErrSelectionLimitExceeded}
	}

	s.selected = append(s.selected, label)
	s.debounce.Record(label, at)
	return s.result(ActionAdded, label), nil
}

// Selected returns the chosen labels in click order.
func (s *Session) Selected() []string {
	out := make([]string, len(s.selected))
	copy(out, s.selected)
	return out
}

func (s *Session) contains(label string) bool {
	return s.indexOf(label) >= 0
}

// Total is the fare for the current selection.
func (s *Session) Total() float64 {
	return float64(len(s.selected)) * s.Price
}

// State reports Empty, PartiallySelected or Full.
func (s *Session) State() SessionState {
	switch n := len(s.selected); {
	case n == 0:
		return StateEmpty
	case n >= s.MaxSeats:
		return StateFull
	default:
		return StatePartiallySelected
	}
}

func (s *Session) indexOf(label string) int {
	for i, l := range s.selected {
		if l == label {
			return i
		}
	}
	return -1
}

func (s *Session) result(action ToggleAction, label string) ToggleResult {
	return ToggleResult{
		Action:   action,
		Label:    label,
		Selected: s.Selected(),
		Total:    s.Total(),
		State:    s.State(),
	}
}

// SessionSnapshot is the serialisable form of a Session.
type SessionSnapshot struct {
	ScheduleRef    string               `json:"schedule_ref"`
	Price          float64              `json:"price"`
	MaxSeats       int                  `json:"max_seats"`
	Selected       []string             `json:"selected"`
	DebounceWindow time.Duration        `json:"debounce_window"`
	LastToggle     map[string]time.Time `json:"last_toggle,omitempty"`
}

// Snapshot captures the session, including the debounce history.
func (s *Session) Snapshot() SessionSnapshot {
	last := make(map[string]time.Time, len(s.debounce.last))
	for k, v := range s.debounce.last {
		last[k] = v
	}
	return SessionSnapshot{
		ScheduleRef:    s.ScheduleRef,
		Price:          s.Price,
		MaxSeats:       s.MaxSeats,
		Selected:       s.Selected(),
		DebounceWindow: s.debounce.window,
		LastToggle:     last,
	}
}

// RestoreSession rebuilds a session from a snapshot.
func RestoreSession(snap SessionSnapshot) *Session {
	s := NewSession(snap.ScheduleRef, snap.Price, snap.MaxSeats).WithDebounceWindow(snap.DebounceWindow)
	s.selected = append([]string(nil), snap.Selected...)
	for k, v := range snap.LastToggle {
		s.debounce.last[k] = v
	}
	return s
}
