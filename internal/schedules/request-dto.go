package schedules

import "time"

type CreateRouteRequest struct {
	Source      string `json:"source" binding:"required,max=100"`
	Destination string `json:"destination" binding:"required,max=100"`
	DistanceKm  int    `json:"distanceKm" binding:"min=0"`
}

type CreateScheduleRequest struct {
	RouteID   string    `json:"routeId" binding:"required,uuid"`
	BusID     string    `json:"busId" binding:"required,uuid"`
	Departure time.Time `json:"departure" binding:"required"`
	Arrival   time.Time `json:"arrival" binding:"required"`
	Price     float64   `json:"price" binding:"required,gt=0"`
}

type SearchQuery struct {
	Source      string `form:"source"`
	Destination string `form:"destination"`
	// Date is a YYYY-MM-DD departure day in UTC
	Date string `form:"date"`
}
