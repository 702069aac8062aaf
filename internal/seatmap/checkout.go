package seatmap

// CheckoutRequest is handed to the booking submission flow.
type CheckoutRequest struct {
	ScheduleID string   `json:"scheduleId"`
	Seats      []string `json:"seats"`
	TotalPrice float64  `json:"totalPrice"`
}

// Handoff packages a non-empty selection for checkout.
func Handoff(s *Session) (*CheckoutRequest, error) {
	if s == nil || len(s.selected) == 0 {
		return nil, ErrNoSeatsSelected
	}
	return &CheckoutRequest{
		ScheduleID: s.ScheduleRef,
		Seats:      s.Selected(),
		TotalPrice: s.Total(),
	}, nil
}
