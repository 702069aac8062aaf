package schedules

import (
	"time"

	"buslane/internal/buses"
	"buslane/internal/seatmap"
)

type RouteResponse struct {
	ID          string `json:"id,omitempty"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	DistanceKm  int    `json:"distanceKm,omitempty"`
}

type BusSummary struct {
	ID             string        `json:"id"`
	Number         string        `json:"number"`
	Type           buses.BusType `json:"type"`
	Features       []string      `json:"features"`
	TotalSeats     int           `json:"totalSeats"`
	AvailableSeats *int          `json:"availableSeats,omitempty"`
}

type ScheduleResponse struct {
	ID        string        `json:"id"`
	Price     float64       `json:"price"`
	Departure time.Time     `json:"departure"`
	Arrival   time.Time     `json:"arrival"`
	Route     RouteResponse `json:"route"`
	Bus       *BusSummary   `json:"bus,omitempty"`
}

type LayoutView struct {
	Rows           int             `json:"rows"`
	Columns        int             `json:"columns"`
	AisleColumn    int             `json:"aisleColumn"`
	IncludeBackRow bool            `json:"includeBackRow"`
	BackRowSeats   int             `json:"backRowSeats"`
	RawGrid        seatmap.RawGrid `json:"rawGrid"`
}

// SeatMapResponse is the customer seat picker payload for one schedule.
type SeatMapResponse struct {
	Schedule ScheduleResponse `json:"schedule"`
	Layout   LayoutView       `json:"layout"`
}

type HolderView struct {
	FullName string `json:"fullName"`
}

type OccupancyBooking struct {
	ID     string                `json:"id"`
	Seats  []string              `json:"seats"`
	Status seatmap.BookingStatus `json:"status"`
	User   HolderView            `json:"user"`
}

// OccupancyResponse is the admin occupancy viewer payload.
type OccupancyResponse struct {
	Schedule       ScheduleResponse   `json:"schedule"`
	Layout         LayoutView         `json:"layout"`
	Bookings       []OccupancyBooking `json:"bookings"`
	BookedSeats    int                `json:"bookedSeats"`
	AvailableSeats int                `json:"availableSeats"`
	Unplaced       []string           `json:"unplaced,omitempty"`
}

// SeatStatuses is the availability snapshot a selection session is opened with.
type SeatStatuses struct {
	ScheduleID string                        `json:"scheduleId"`
	Price      float64                       `json:"price"`
	Departure  time.Time                     `json:"departure"`
	Statuses   map[string]seatmap.SeatStatus `json:"statuses"`
}

func toRouteResponse(r *Route) RouteResponse {
	return RouteResponse{
		ID:          r.ID.String(),
		Source:      r.Source,
		Destination: r.Destination,
		DistanceKm:  r.DistanceKm,
	}
}

func toScheduleResponse(s *Schedule, bus *buses.Bus) ScheduleResponse {
	resp := ScheduleResponse{
		ID:        s.ID.String(),
		Price:     s.Price,
		Departure: s.DepartureTime,
		Arrival:   s.ArrivalTime,
		Route:     RouteResponse{Source: s.Route.Source, Destination: s.Route.Destination},
	}
	if bus != nil {
		features := bus.Features
		if features == nil {
			features = []string{}
		}
		resp.Bus = &BusSummary{
			ID:         bus.ID.String(),
			Number:     bus.Number,
			Type:       bus.Type,
			Features:   features,
			TotalSeats: bus.TotalSeats,
		}
	}
	return resp
}

func toLayoutView(inclusion *seatmap.Inclusion, grid seatmap.RawGrid) LayoutView {
	spec := inclusion.Layout().Spec
	backRowSeats := spec.BackRowSeats
	if !spec.IncludeBackRow {
		backRowSeats = 0
	}
	return LayoutView{
		Rows:           spec.Rows,
		Columns:        spec.Columns,
		AisleColumn:    spec.AisleColumn,
		IncludeBackRow: spec.IncludeBackRow,
		BackRowSeats:   backRowSeats,
		RawGrid:        grid,
	}
}
