package seatmap

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SeatStatus is the read-time classification of an included seat.
type SeatStatus string

const (
	StatusAvailable SeatStatus = "available"
	StatusBooked    SeatStatus = "booked"
)

// RawCell is the wire form of a grid cell. A cell without a seat is a gap
// (aisle or unsellable) and is encoded as the literal 0.
type RawCell struct {
	Seat       string     `json:"seat"`
	Status     SeatStatus `json:"status,omitempty"`
	BookingID  string     `json:"bookingId,omitempty"`
	HolderName string     `json:"holderName,omitempty"`
}

// RawGrid is the rawGrid / seatLayout array exchanged with clients.
type RawGrid [][]RawCell

// IsGap reports whether the cell renders as a structural gap.
func (c RawCell) IsGap() bool {
	return c.Seat == ""
}

type rawCellAlias RawCell

func (c RawCell) MarshalJSON() ([]byte, error) {
	if c.IsGap() {
		return []byte("0"), nil
	}
	return json.Marshal(rawCellAlias(c))
}

func (c *RawCell) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "0", "null":
		*c = RawCell{}
		return nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("seat cell must be 0 or an object, got %s", trimmed)
	}
	var alias rawCellAlias
	if err := json.Unmarshal(trimmed, &alias); err != nil {
		return err
	}
	*c = RawCell(alias)
	return nil
}

// SeatCount counts the non-gap cells of the grid.
func (g RawGrid) SeatCount() int {
	n := 0
	for _, row := range g {
		for _, cell := range row {
			if !cell.IsGap() {
				n++
			}
		}
	}
	return n
}
