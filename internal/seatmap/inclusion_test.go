package seatmap

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func mustGenerate(t *testing.T, spec LayoutSpec) *Layout {
	t.Helper()
	layout, err := Generate(spec)
	if err != nil {
		t.Fatalf("Generate(%+v): %v", spec, err)
	}
	return layout
}

func TestInclusionTotalTracksEveryMutation(t *testing.T) {
	t.Parallel()

	layout := mustGenerate(t, LayoutSpec{Rows: 3, Columns: 5, AisleColumn: 2, IncludeBackRow: true, BackRowSeats: 5})
	inclusion := NewInclusion(layout)

	var reported []int
	inclusion.OnChange = func(total int) { reported = append(reported, total) }

	check := func(step string) {
		t.Helper()
		count := 0
		for r := range layout.Grid {
			for c := range layout.Grid[r] {
				if inclusion.Included(r, c) {
					count++
				}
			}
		}
		if inclusion.TotalSeats() != count {
			t.Errorf("%s: TotalSeats = %d, counted %d", step, inclusion.TotalSeats(), count)
		}
		if len(reported) == 0 || reported[len(reported)-1] != count {
			t.Errorf("%s: OnChange last reported %v, want %d", step, reported, count)
		}
	}

	if _, err := inclusion.Toggle(0, 0); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	check("toggle on")

	inclusion.SelectAll()
	check("select all")
	if inclusion.TotalSeats() != layout.SeatCount() {
		t.Errorf("SelectAll included %d, want %d", inclusion.TotalSeats(), layout.SeatCount())
	}

	if _, err := inclusion.Toggle(3, 4); err != nil {
		t.Fatalf("Toggle back row: %v", err)
	}
	check("toggle off")

	inclusion.DeselectAll()
	check("deselect all")
	if inclusion.TotalSeats() != 0 {
		t.Errorf("DeselectAll left %d seats", inclusion.TotalSeats())
	}

	if err := inclusion.Set(1, 1, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	check("set")
}

func TestInclusionRejectsAisleAndOutOfRange(t *testing.T) {
	t.Parallel()

	layout := mustGenerate(t, LayoutSpec{Rows: 2, Columns: 3, AisleColumn: 1})
	inclusion := NewInclusion(layout)
	calls := 0
	inclusion.OnChange = func(int) { calls++ }

	if _, err := inclusion.Toggle(0, 1); !errors.Is(err, ErrNotASeat) {
		t.Errorf("toggle aisle: error = %v, want ErrNotASeat", err)
	}
	if _, err := inclusion.Toggle(5, 0); !errors.Is(err, ErrNotASeat) {
		t.Errorf("toggle out of range: error = %v, want ErrNotASeat", err)
	}
	if calls != 0 {
		t.Errorf("OnChange fired %d times for rejected toggles", calls)
	}
	if inclusion.TotalSeats() != 0 {
		t.Errorf("rejected toggles changed the total to %d", inclusion.TotalSeats())
	}
}

func TestInclusionGridRoundTripsThroughPersistedForm(t *testing.T) {
	t.Parallel()

	layout := mustGenerate(t, LayoutSpec{Rows: 2, Columns: 3, AisleColumn: 1, IncludeBackRow: true, BackRowSeats: 2})
	inclusion := NewInclusion(layout)
	inclusion.SelectAll()
	if _, err := inclusion.Toggle(1, 2); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	data, err := json.Marshal(inclusion.Grid())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var grid RawGrid
	if err := json.Unmarshal(data, &grid); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	rebuilt, err := InclusionFromGrid(layout, grid)
	if err != nil {
		t.Fatalf("InclusionFromGrid: %v", err)
	}
	if !reflect.DeepEqual(rebuilt.Labels(), inclusion.Labels()) {
		t.Errorf("labels = %v, want %v", rebuilt.Labels(), inclusion.Labels())
	}
	if rebuilt.IncludedLabel("B2") {
		t.Error("B2 was excluded and should stay excluded")
	}
}

func TestInclusionFromGridRejectsMismatches(t *testing.T) {
	t.Parallel()

	layout := mustGenerate(t, LayoutSpec{Rows: 2, Columns: 3, AisleColumn: 1})
	seat := func(label string) RawCell { return RawCell{Seat: label, Status: StatusAvailable} }

	tests := []struct {
		name string
		grid RawGrid
	}{
		{"missing row", RawGrid{{seat("A1"), {}, seat("B1")}}},
		{"short row", RawGrid{{seat("A1"), {}}, {seat("A2"), {}, seat("B2")}}},
		{"seat on aisle", RawGrid{{seat("A1"), seat("X1"), seat("B1")}, {seat("A2"), {}, seat("B2")}}},
		{"wrong label", RawGrid{{seat("B1"), {}, seat("A1")}, {seat("A2"), {}, seat("B2")}}},
	}
	for _, test := range tests {
		if _, err := InclusionFromGrid(layout, test.grid); !errors.Is(err, ErrInvalidSeatLayout) {
			t.Errorf("%s: error = %v, want ErrInvalidSeatLayout", test.name, err)
		}
	}
}
