package buses

import "buslane/internal/seatmap"

type CreateBusRequest struct {
	Number   string               `json:"number" binding:"required,max=32" validate:"required,max=32"`
	Type     BusType              `json:"type" binding:"required" validate:"required"`
	Features []string             `json:"features"`
	Layout   *UpdateLayoutRequest `json:"layout,omitempty"`
}

// LayoutSpecRequest drives the editor's "generate" action.
type LayoutSpecRequest struct {
	Rows           int  `json:"rows" binding:"required,min=1" validate:"required,min=1"`
	Columns        int  `json:"columns" binding:"required,min=1,max=27" validate:"required,min=1,max=27"`
	AisleColumn    int  `json:"aisleColumn" binding:"min=0" validate:"min=0"`
	IncludeBackRow bool `json:"includeBackRow"`
	BackRowSeats   int  `json:"backRowSeats" binding:"min=0,max=26" validate:"min=0,max=26"`
}

func (r LayoutSpecRequest) Spec() seatmap.LayoutSpec {
	return seatmap.LayoutSpec{
		Rows:           r.Rows,
		Columns:        r.Columns,
		AisleColumn:    r.AisleColumn,
		IncludeBackRow: r.IncludeBackRow,
		BackRowSeats:   r.BackRowSeats,
	}
}

// UpdateLayoutRequest is the persisted layout edit submitted by the editor.
type UpdateLayoutRequest struct {
	LayoutSpecRequest
	SeatLayout seatmap.RawGrid `json:"seatLayout" binding:"required" validate:"required"`
	TotalSeats int             `json:"totalSeats" binding:"min=0" validate:"min=0"`
}
