package seatmap

// EditorCell is what the admin layout editor renders for one position.
type EditorCell struct {
	Label    string `json:"label,omitempty"`
	Aisle    bool   `json:"aisle"`
	BackRow  bool   `json:"backRow,omitempty"`
	Included bool   `json:"included"`
}

// EditorGrid shows every generated cell with its inclusion flag.
func EditorGrid(inclusion *Inclusion) [][]EditorCell {
	layout := inclusion.Layout()
	grid := make([][]EditorCell, len(layout.Grid))
	for r, row := range layout.Grid {
		grid[r] = make([]EditorCell, len(row))
		for c, cell := range row {
			grid[r][c] = EditorCell{
				Label:    cell.Label,
				Aisle:    cell.Aisle,
				BackRow:  layout.IsBackRow(r),
				Included: inclusion.Included(r, c),
			}
		}
	}
	return grid
}

// PickerGrid is the customer seat picker: gaps for anything not sellable,
// status only for seats.
func PickerGrid(inclusion *Inclusion, state OccupancyState) RawGrid {
	return occupancyGrid(inclusion, state, false)
}

// OccupancyGrid is the admin viewer: booked seats also carry the booking
// so the cell can link to its detail view.
func OccupancyGrid(inclusion *Inclusion, state OccupancyState) RawGrid {
	return occupancyGrid(inclusion, state, true)
}

func occupancyGrid(inclusion *Inclusion, state OccupancyState, withBooking bool) RawGrid {
	layout := inclusion.Layout()
	grid := make(RawGrid, len(layout.Grid))
	for r, row := range layout.Grid {
		grid[r] = make([]RawCell, len(row))
		for c, cell := range row {
			if !inclusion.Included(r, c) {
				continue
			}
			seat, ok := state.Seats[cell.Label]
			if !ok {
				continue
			}
			raw := RawCell{Seat: cell.Label, Status: seat.Status}
			if withBooking && seat.Booking != nil {
				raw.BookingID = seat.Booking.BookingID
				raw.HolderName = seat.Booking.HolderName
			}
			grid[r][c] = raw
		}
	}
	return grid
}
