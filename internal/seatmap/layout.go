// Package seatmap generates bus seating grids, tracks which generated cells are
// sellable, reconciles them against bookings and drives seat selection up to checkout.
package seatmap

import (
	"strconv"
)

const (
	// MaxColumns allows 26 lettered seats plus the aisle in a body row.
	MaxColumns = 27
	// MaxBackRowSeats keeps back row letters within A..Z.
	MaxBackRowSeats = 26
)

// LayoutSpec is the parameter set a layout is generated from.
type LayoutSpec struct {
	Rows           int  `json:"rows"`
	Columns        int  `json:"columns"`
	AisleColumn    int  `json:"aisleColumn"`
	IncludeBackRow bool `json:"includeBackRow"`
	BackRowSeats   int  `json:"backRowSeats"`
}

// Validate rejects specs the generator cannot turn into a grid with unique labels.
func (s LayoutSpec) Validate() error {
	if s.Rows < 1 {
		return invalidSpec("rows must be at least 1, got %d", s.Rows)
	}
	if s.Columns < 1 {
		return invalidSpec("columns must be at least 1, got %d", s.Columns)
	}
	if s.Columns > MaxColumns {
		return invalidSpec("columns must be at most %d, got %d", MaxColumns, s.Columns)
	}
	if s.AisleColumn < 0 || s.AisleColumn >= s.Columns {
		return invalidSpec("aisle column %d outside [0, %d)", s.AisleColumn, s.Columns)
	}
	if s.IncludeBackRow {
		if s.BackRowSeats < 1 {
			return invalidSpec("back row seats must be at least 1, got %d", s.BackRowSeats)
		}
		if s.BackRowSeats > MaxBackRowSeats {
			return invalidSpec("back row seats must be at most %d, got %d", MaxBackRowSeats, s.BackRowSeats)
		}
	}
	return nil
}

// Cell is one position of the grid: an aisle or a labelled seat.
type Cell struct {
	Label string `json:"label,omitempty"`
	Aisle bool   `json:"aisle"`
}

// IsSeat reports whether the cell carries a seat label.
func (c Cell) IsSeat() bool {
	return !c.Aisle && c.Label != ""
}

// Layout is a generated grid together with the spec it came from.
type Layout struct {
	Spec LayoutSpec `json:"spec"`
	Grid [][]Cell   `json:"grid"`

	index map[string]position
}

type position struct {
	row, col int
}

// Generate builds the seat grid for spec. Labels are derived from (row, column)
// so the same spec always yields the same labels.
func Generate(spec LayoutSpec) (*Layout, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	grid := make([][]Cell, 0, spec.Rows+1)
	for r := 0; r < spec.Rows; r++ {
		row := make([]Cell, spec.Columns)
		for c := 0; c < spec.Columns; c++ {
			if c == spec.AisleColumn {
				row[c] = Cell{Aisle: true}
				continue
			}
			sc := c
			if c > spec.AisleColumn {
				sc = c - 1
			}
			row[c] = Cell{Label: seatLabel(sc, r+1)}
		}
		grid = append(grid, row)
	}

	if spec.IncludeBackRow {
		back := make([]Cell, spec.BackRowSeats)
		for c := 0; c < spec.BackRowSeats; c++ {
			back[c] = Cell{Label: seatLabel(c, spec.Rows+1)}
		}
		grid = append(grid, back)
	}

	l := &Layout{Spec: spec, Grid: grid}
	l.buildIndex()
	return l, nil
}

func seatLabel(seatColumn, rowNumber int) string {
	return string(rune('A'+seatColumn)) + strconv.Itoa(rowNumber)
}

func (l *Layout) buildIndex() {
	l.index = make(map[string]position)
	for r, row := range l.Grid {
		for c, cell := range row {
			if cell.IsSeat() {
				l.index[cell.Label] = position{row: r, col: c}
			}
		}
	}
}

// A layout decoded from JSON has no index yet.
func (l *Layout) ensureIndex() {
	if l.index == nil {
		l.buildIndex()
	}
}

// Cell returns the cell at (row, col) and whether the position exists.
func (l *Layout) Cell(row, col int) (Cell, bool) {
	if row < 0 || row >= len(l.Grid) || col < 0 || col >= len(l.Grid[row]) {
		return Cell{}, false
	}
	return l.Grid[row][col], true
}

// Locate returns the position of a seat label.
func (l *Layout) Locate(label string) (row, col int, ok bool) {
	l.ensureIndex()
	p, ok := l.index[label]
	return p.row, p.col, ok
}

// IsBackRow reports whether row is the generated back row.
func (l *Layout) IsBackRow(row int) bool {
	return l.Spec.IncludeBackRow && row == l.Spec.Rows
}

// Labels lists every seat label in row-major order.
func (l *Layout) Labels() []string {
	labels := make([]string, 0, l.SeatCount())
	for _, row := range l.Grid {
		for _, cell := range row {
			if cell.IsSeat() {
				labels = append(labels, cell.Label)
			}
		}
	}
	return labels
}

// SeatCount is the number of seat cells, before any inclusion is applied.
func (l *Layout) SeatCount() int {
	l.ensureIndex()
	return len(l.index)
}
