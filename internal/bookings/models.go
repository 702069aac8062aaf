package bookings

import (
	"time"

	"buslane/internal/seatmap"

	"github.com/google/uuid"
)

// Booking holds seat labels of one schedule for one user.
type Booking struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"userId"`
	ScheduleID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"scheduleId"`
	Seats       []string   `gorm:"type:jsonb;serializer:json;not null" json:"seats"`
	TotalPrice  float64    `gorm:"not null" json:"totalPrice"`
	Status      Status     `gorm:"type:varchar(20);index;check:status IN ('pending', 'booked', 'cancelled');default:'pending'" json:"status"`
	BookingRef  string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"bookingRef"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// Record is the view of the booking the occupancy reconciler consumes.
func (b *Booking) Record(holderName string) seatmap.BookingRecord {
	return seatmap.BookingRecord{
		ID:         b.ID.String(),
		Seats:      append([]string(nil), b.Seats...),
		Status:     b.Status.seatmap(),
		HolderName: holderName,
	}
}

// SeatPlan is what checkout needs to know about a schedule: its fare, when it
// leaves and which seats exist on its bus.
type SeatPlan struct {
	ScheduleID string
	Price      float64
	Departure  time.Time
	Inclusion  *seatmap.Inclusion
}
