package schedules

import (
	"time"

	"github.com/google/uuid"
)

type Route struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Source      string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_route_pair" json:"source"`
	Destination string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_route_pair" json:"destination"`
	DistanceKm  int       `gorm:"not null;default:0" json:"distanceKm"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Route) TableName() string {
	return "routes"
}

// Schedule is one departure of a bus on a route. Its seats are the bus layout's
// included seats, priced uniformly.
type Schedule struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RouteID       uuid.UUID `gorm:"type:uuid;index;not null" json:"routeId"`
	BusID         uuid.UUID `gorm:"type:uuid;index;not null" json:"busId"`
	DepartureTime time.Time `gorm:"index;not null" json:"departure"`
	ArrivalTime   time.Time `gorm:"not null" json:"arrival"`
	Price         float64   `gorm:"not null" json:"price"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Route Route `gorm:"foreignKey:RouteID" json:"route"`
}

func (Schedule) TableName() string {
	return "schedules"
}

func (s *Schedule) HasDeparted(now time.Time) bool {
	return !now.Before(s.DepartureTime)
}
