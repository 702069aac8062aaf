package bookings

import "time"

type BookingResponse struct {
	ID          string     `json:"id"`
	BookingRef  string     `json:"bookingRef"`
	ScheduleID  string     `json:"scheduleId"`
	UserID      string     `json:"userId"`
	Seats       []string   `json:"seats"`
	TotalPrice  float64    `json:"totalPrice"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
}

type HolderResponse struct {
	FullName string `json:"fullName"`
}

// ScheduleBookingResponse is one row of the admin bookings list for a schedule.
type ScheduleBookingResponse struct {
	ID         string         `json:"id"`
	BookingRef string         `json:"bookingRef"`
	Seats      []string       `json:"seats"`
	Status     Status         `json:"status"`
	TotalPrice float64        `json:"totalPrice"`
	User       HolderResponse `json:"user"`
	CreatedAt  time.Time      `json:"createdAt"`
}

type PaginatedBookings struct {
	Bookings   []BookingResponse `json:"bookings"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
}

func toBookingResponse(b *Booking) *BookingResponse {
	return &BookingResponse{
		ID:          b.ID.String(),
		BookingRef:  b.BookingRef,
		ScheduleID:  b.ScheduleID.String(),
		UserID:      b.UserID.String(),
		Seats:       b.Seats,
		TotalPrice:  b.TotalPrice,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		CancelledAt: b.CancelledAt,
	}
}
