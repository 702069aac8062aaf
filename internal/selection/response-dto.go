package selection

import (
	"time"

	"buslane/internal/seatmap"
)

type SelectionResponse struct {
	ID         string               `json:"id"`
	ScheduleID string               `json:"scheduleId"`
	Seats      []string             `json:"seats"`
	TotalPrice float64              `json:"totalPrice"`
	State      seatmap.SessionState `json:"state"`
	Price      float64              `json:"price"`
	MaxSeats   int                  `json:"maxSeats"`
	ExpiresAt  time.Time            `json:"expiresAt"`
	// Released lists selected seats dropped because they were booked meanwhile.
	Released []string `json:"released,omitempty"`
}

type ToggleResponse struct {
	SelectionID string `json:"selectionId"`
	seatmap.ToggleResult
}

func toSelectionResponse(sel *Selection, released []string) *SelectionResponse {
	session := sel.restore()
	return &SelectionResponse{
		ID:         sel.ID,
		ScheduleID: session.ScheduleRef,
		Seats:      session.Selected(),
		TotalPrice: session.Total(),
		State:      session.State(),
		Price:      session.Price,
		MaxSeats:   session.MaxSeats,
		ExpiresAt:  sel.ExpiresAt,
		Released:   released,
	}
}
