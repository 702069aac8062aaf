package seatmap

import "fmt"

// Inclusion marks which generated seat cells are real, sellable seats.
// A bus's total_seats is always TotalSeats(); there is no way to set it directly.
type Inclusion struct {
	layout   *Layout
	included [][]bool

	// OnChange runs synchronously after every mutation with the new total.
	OnChange func(total int)
}

// NewInclusion starts with no cell included.
func NewInclusion(layout *Layout) *Inclusion {
	included := make([][]bool, len(layout.Grid))
	for r, row := range layout.Grid {
		included[r] = make([]bool, len(row))
	}
	return &Inclusion{layout: layout, included: included}
}

// InclusionFromGrid rebuilds the inclusion persisted as a seatLayout grid.
// Every non-gap cell must sit on a generated seat and carry its label.
func InclusionFromGrid(layout *Layout, grid RawGrid) (*Inclusion, error) {
	if len(grid) != len(layout.Grid) {
		return nil, fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidSeatLayout, len(layout.Grid), len(grid))
	}
	in := NewInclusion(layout)
	for r, row := range grid {
		if len(row) != len(layout.Grid[r]) {
			return nil, fmt.Errorf("%w: row %d expected %d cells, got %d", ErrInvalidSeatLayout, r+1, len(layout.Grid[r]), len(row))
		}
		for c, raw := range row {
			if raw.IsGap() {
				continue
			}
			cell := layout.Grid[r][c]
			if !cell.IsSeat() {
				return nil, fmt.Errorf("%w: seat %s placed on an aisle at row %d column %d", ErrInvalidSeatLayout, raw.Seat, r+1, c+1)
			}
			if cell.Label != raw.Seat {
				return nil, fmt.Errorf("%w: expected seat %s at row %d column %d, got %s", ErrInvalidSeatLayout, cell.Label, r+1, c+1, raw.Seat)
			}
			in.included[r][c] = true
		}
	}
	return in, nil
}

// Layout returns the layout the inclusion was built for.
func (in *Inclusion) Layout() *Layout {
	return in.layout
}

// Toggle flips one seat cell and returns its new state.
func (in *Inclusion) Toggle(row, col int) (bool, error) {
	if err := in.checkSeat(row, col); err != nil {
		return false, err
	}
	in.included[row][col] = !in.included[row][col]
	in.changed()
	return in.included[row][col], nil
}

// Set includes or excludes one seat cell.
func (in *Inclusion) Set(row, col int, include bool) error {
	if err := in.checkSeat(row, col); err != nil {
		return err
	}
	in.included[row][col] = include
	in.changed()
	return nil
}

// SelectAll includes every non-aisle cell.
func (in *Inclusion) SelectAll() {
	in.fill(true)
}

// DeselectAll excludes every cell.
func (in *Inclusion) DeselectAll() {
	in.fill(false)
}

// Included reports whether (row, col) is a sellable seat.
func (in *Inclusion) Included(row, col int) bool {
	if row < 0 || row >= len(in.included) || col < 0 || col >= len(in.included[row]) {
		return false
	}
	return in.included[row][col]
}

// IncludedLabel reports whether the seat with label is sellable.
func (in *Inclusion) IncludedLabel(label string) bool {
	r, c, ok := in.layout.Locate(label)
	return ok && in.included[r][c]
}

// TotalSeats counts included cells.
func (in *Inclusion) TotalSeats() int {
	n := 0
	for _, row := range in.included {
		for _, on := range row {
			if on {
				n++
			}
		}
	}
	return n
}

// Labels lists included seat labels in row-major order.
func (in *Inclusion) Labels() []string {
	labels := make([]string, 0, in.TotalSeats())
	for r, row := range in.layout.Grid {
		for c, cell := range row {
			if in.included[r][c] {
				labels = append(labels, cell.Label)
			}
		}
	}
	return labels
}

// Grid renders the inclusion in its persisted seatLayout form.
func (in *Inclusion) Grid() RawGrid {
	grid := make(RawGrid, len(in.layout.Grid))
	for r, row := range in.layout.Grid {
		grid[r] = make([]RawCell, len(row))
		for c, cell := range row {
			if in.included[r][c] {
				grid[r][c] = RawCell{Seat: cell.Label, Status: StatusAvailable}
			}
		}
	}
	return grid
}

func (in *Inclusion) checkSeat(row, col int) error {
	cell, ok := in.layout.Cell(row, col)
	if !ok {
		return fmt.Errorf("%w: row %d column %d is outside the layout", ErrNotASeat, row, col)
	}
	if !cell.IsSeat() {
		return fmt.Errorf("%w: row %d column %d is an aisle", ErrNotASeat, row, col)
	}
	return nil
}

func (in *Inclusion) fill(include bool) {
	for r, row := range in.layout.Grid {
		for c, cell := range row {
			in.included[r][c] = include && cell.IsSeat()
		}
	}
	in.changed()
}

func (in *Inclusion) changed() {
	if in.OnChange != nil {
		in.OnChange(in.TotalSeats())
	}
}
