package buses

import (
	"time"

	"buslane/internal/seatmap"
)

type BusResponse struct {
	ID             string    `json:"id"`
	Number         string    `json:"number"`
	Type           BusType   `json:"type"`
	Features       []string  `json:"features"`
	TotalSeats     int       `json:"totalSeats"`
	HasLayout      bool      `json:"hasLayout"`
	IncludeBackRow bool      `json:"includeBackRow"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// LayoutResponse is what the admin layout editor loads and saves.
type LayoutResponse struct {
	BusID          string                 `json:"busId,omitempty"`
	Rows           int                    `json:"rows"`
	Columns        int                    `json:"columns"`
	AisleColumn    int                    `json:"aisleColumn"`
	IncludeBackRow bool                   `json:"includeBackRow"`
	BackRowSeats   int                    `json:"backRowSeats"`
	TotalSeats     int                    `json:"totalSeats"`
	Grid           [][]seatmap.EditorCell `json:"grid"`
	SeatLayout     seatmap.RawGrid        `json:"seatLayout"`
}

func toBusResponse(bus *Bus) BusResponse {
	features := bus.Features
	if features == nil {
		features = []string{}
	}
	return BusResponse{
		ID:             bus.ID.String(),
		Number:         bus.Number,
		Type:           bus.Type,
		Features:       features,
		TotalSeats:     bus.TotalSeats,
		HasLayout:      bus.HasLayout(),
		IncludeBackRow: bus.IncludeBackRow,
		CreatedAt:      bus.CreatedAt,
		UpdatedAt:      bus.UpdatedAt,
	}
}

func toLayoutResponse(busID string, inclusion *seatmap.Inclusion) *LayoutResponse {
	spec := inclusion.Layout().Spec
	backRowSeats := spec.BackRowSeats
	if !spec.IncludeBackRow {
		backRowSeats = 0
	}
	return &LayoutResponse{
		BusID:          busID,
		Rows:           spec.Rows,
		Columns:        spec.Columns,
		AisleColumn:    spec.AisleColumn,
		IncludeBackRow: spec.IncludeBackRow,
		BackRowSeats:   backRowSeats,
		TotalSeats:     inclusion.TotalSeats(),
		Grid:           seatmap.EditorGrid(inclusion),
		SeatLayout:     inclusion.Grid(),
	}
}
