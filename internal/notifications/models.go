package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type BookingEventType string

const (
	BookingEventCreated       BookingEventType = "BOOKING_CREATED"
	BookingEventStatusChanged BookingEventType = "BOOKING_STATUS_CHANGED"
)

// BookingEvent carries enough of a booking for downstream consumers to act on
// it without reading the primary database.
type BookingEvent struct {
	ID             uuid.UUID        `json:"id"`
	Type           BookingEventType `json:"type"`
	BookingID      string           `json:"booking_id"`
	BookingRef     string           `json:"booking_ref"`
	ScheduleID     string           `json:"schedule_id"`
	UserID         string           `json:"user_id"`
	Seats          []string         `json:"seats"`
	TotalPrice     float64          `json:"total_price"`
	Status         string           `json:"status"`
	PreviousStatus string           `json:"previous_status,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

func NewBookingEvent(eventType BookingEventType) *BookingEvent {
	return &BookingEvent{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
	}
}

// PartitionKey keeps every event of a schedule on one partition so consumers
// see them in order.
func (e *BookingEvent) PartitionKey() string {
	return e.ScheduleID
}

func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ParseBookingEvent(data []byte) (*BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
