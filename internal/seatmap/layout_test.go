package seatmap

import (
	"errors"
	"reflect"
	"testing"
)

func labelGrid(l *Layout) [][]string {
	out := make([][]string, len(l.Grid))
	for r, row := range l.Grid {
		out[r] = make([]string, len(row))
		for c, cell := range row {
			if cell.Aisle {
				out[r][c] = "_"
			} else {
				out[r][c] = cell.Label
			}
		}
	}
	return out
}

func TestGenerateScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec LayoutSpec
		want [][]string
	}{
		{
			name: "two rows with middle aisle",
			spec: LayoutSpec{Rows: 2, Columns: 3, AisleColumn: 1},
			want: [][]string{{"A1", "_", "B1"}, {"A2", "_", "B2"}},
		},
		{
			name: "back row without aisle gap",
			spec: LayoutSpec{Rows: 1, Columns: 3, AisleColumn: 1, IncludeBackRow: true, BackRowSeats: 2},
			want: [][]string{{"A1", "_", "B1"}, {"A2", "B2"}},
		},
		{
			name: "aisle on the left edge",
			spec: LayoutSpec{Rows: 1, Columns: 4, AisleColumn: 0},
			want: [][]string{{"_", "A1", "B1", "C1"}},
		},
		{
			name: "aisle on the right edge",
			spec: LayoutSpec{Rows: 1, Columns: 3, AisleColumn: 2},
			want: [][]string{{"A1", "B1", "_"}},
		},
		{
			name: "wide back row",
			spec: LayoutSpec{Rows: 2, Columns: 5, AisleColumn: 2, IncludeBackRow: true, BackRowSeats: 5},
			want: [][]string{
				{"A1", "B1", "_", "C1", "D1"},
				{"A2", "B2", "_", "C2", "D2"},
				{"A3", "B3", "C3", "D3", "E3"},
			},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			layout, err := Generate(test.spec)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if got := labelGrid(layout); !reflect.DeepEqual(got, test.want) {
				t.Errorf("grid = %v, want %v", got, test.want)
			}
		})
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	t.Parallel()

	specs := []LayoutSpec{
		{Rows: 10, Columns: 5, AisleColumn: 2, IncludeBackRow: true, BackRowSeats: 5},
		{Rows: 1, Columns: 1, AisleColumn: 0},
		{Rows: 12, Columns: MaxColumns, AisleColumn: 13},
	}
	for _, spec := range specs {
		first, err := Generate(spec)
		if err != nil {
			t.Fatalf("Generate(%+v): %v", spec, err)
		}
		second, err := Generate(spec)
		if err != nil {
			t.Fatalf("Generate(%+v): %v", spec, err)
		}
		if !reflect.DeepEqual(labelGrid(first), labelGrid(second)) {
			t.Errorf("Generate(%+v) produced different grids on re-run", spec)
		}
	}
}

func TestGenerateLabelsAreUnique(t *testing.T) {
	t.Parallel()

	for rows := 1; rows <= 6; rows++ {
		for columns := 1; columns <= 8; columns++ {
			for aisle := 0; aisle < columns; aisle++ {
				for _, back := range []int{0, 1, 7} {
					spec := LayoutSpec{Rows: rows, Columns: columns, AisleColumn: aisle, IncludeBackRow: back > 0, BackRowSeats: back}
					layout, err := Generate(spec)
					if err != nil {
						t.Fatalf("Generate(%+v): %v", spec, err)
					}
					seen := make(map[string]bool)
					for _, label := range layout.Labels() {
						if seen[label] {
							t.Fatalf("Generate(%+v): duplicate label %s", spec, label)
						}
						seen[label] = true
					}
					want := rows * (columns - 1)
					if spec.IncludeBackRow {
						want += back
					}
					if layout.SeatCount() != want {
						t.Errorf("Generate(%+v): %d seats, want %d", spec, layout.SeatCount(), want)
					}
				}
			}
		}
	}
}

func TestGenerateRejectsInvalidSpecs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec LayoutSpec
	}{
		{"zero rows", LayoutSpec{Rows: 0, Columns: 3, AisleColumn: 1}},
		{"negative columns", LayoutSpec{Rows: 2, Columns: -1, AisleColumn: 0}},
		{"aisle past last column", LayoutSpec{Rows: 2, Columns: 3, AisleColumn: 3}},
		{"negative aisle", LayoutSpec{Rows: 2, Columns: 3, AisleColumn: -1}},
		{"back row without seats", LayoutSpec{Rows: 2, Columns: 3, AisleColumn: 1, IncludeBackRow: true}},
		{"too many columns", LayoutSpec{Rows: 2, Columns: MaxColumns + 1, AisleColumn: 1}},
		{"too many back row seats", LayoutSpec{Rows: 2, Columns: 3, AisleColumn: 1, IncludeBackRow: true, BackRowSeats: MaxBackRowSeats + 1}},
	}

	for _, test := range tests {
		layout, err := Generate(test.spec)
		if !errors.Is(err, ErrInvalidLayoutSpec) {
			t.Errorf("%s: error = %v, want ErrInvalidLayoutSpec", test.name, err)
		}
		if layout != nil {
			t.Errorf("%s: expected no partial layout", test.name)
		}
	}
}

func TestBackRowSeatsIgnoredWithoutFlag(t *testing.T) {
	t.Parallel()

	layout, err := Generate(LayoutSpec{Rows: 1, Columns: 3, AisleColumn: 1, BackRowSeats: 0})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(layout.Grid) != 1 {
		t.Errorf("expected 1 row, got %d", len(layout.Grid))
	}
	if layout.IsBackRow(0) {
		t.Error("row 0 should not be a back row")
	}
}

func TestLocate(t *testing.T) {
	t.Parallel()

	layout, err := Generate(LayoutSpec{Rows: 2, Columns: 3, AisleColumn: 1, IncludeBackRow: true, BackRowSeats: 3})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	row, col, ok := layout.Locate("B2")
	if !ok || row != 1 || col != 2 {
		t.Errorf("Locate(B2) = (%d, %d, %v), want (1, 2, true)", row, col, ok)
	}
	row, col, ok = layout.Locate("C3")
	if !ok || row != 2 || col != 2 {
		t.Errorf("Locate(C3) = (%d, %d, %v), want (2, 2, true)", row, col, ok)
	}
	if !layout.IsBackRow(2) {
		t.Error("row 2 should be the back row")
	}
	if _, _, ok := layout.Locate("Z9"); ok {
		t.Error("Locate(Z9) should fail")
	}
}
