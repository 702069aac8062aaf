package bookings

// CheckoutRequest is the payload built from a seat selection.
type CheckoutRequest struct {
	ScheduleID string   `json:"scheduleId" binding:"required,uuid" validate:"required,uuid"`
	Seats      []string `json:"seats" binding:"required,min=1,dive,required" validate:"required,min=1,dive,required"`
	TotalPrice float64  `json:"totalPrice" binding:"gte=0" validate:"gte=0"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

type BookingListQuery struct {
	Status string `form:"status"`
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=10" binding:"min=1,max=100"`
}

func (q BookingListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}
