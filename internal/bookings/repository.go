package bookings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// CreateWithSeatGuard inserts the booking unless an active booking of the
	// same schedule already holds one of its seats.
	CreateWithSeatGuard(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByUser(ctx context.Context, userID string, query BookingListQuery) ([]Booking, int64, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]Booking, error)
	// UpdateStatus moves a booking from one status to another and fails with
	// ErrStatusConflict if it is no longer in from.
	UpdateStatus(ctx context.Context, id string, from, to Status, cancelledAt *time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateWithSeatGuard(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the schedule row so concurrent checkouts for it serialize here
		var schedule struct {
			ID uuid.UUID `gorm:"column:id"`
		}
		err := tx.Table("schedules").
			Select("id").
			Where("id = ?", booking.ScheduleID).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&schedule).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrScheduleNotFound
			}
			return fmt.Errorf("failed to lock schedule: %w", err)
		}

		// 2. Seats held by active bookings of the schedule
		var active []Booking
		err = tx.Select("id", "seats").
			Where("schedule_id = ? AND status IN ?", booking.ScheduleID, activeStatuses()).
			Find(&active).Error
		if err != nil {
			return fmt.Errorf("failed to load active bookings: %w", err)
		}
		if taken := takenSeats(active, booking.Seats); len(taken) > 0 {
			return &SeatConflictError{Seats: taken}
		}

		// 3. Create the booking
		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id string) (*Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrBookingNotFound
	}
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string, query BookingListQuery) ([]Booking, int64, error) {
	db := r.db.WithContext(ctx).Model(&Booking{}).Where("user_id = ?", userID)
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []Booking
	err := db.Order("created_at DESC").
		Limit(query.Limit).
		Offset(query.Offset()).
		Find(&bookings).Error
	return bookings, total, err
}

func (r *repository) ListBySchedule(ctx context.Context, scheduleID string) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("created_at ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) UpdateStatus(ctx context.Context, id string, from, to Status, cancelledAt *time.Time) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if cancelledAt != nil {
		updates["cancelled_at"] = *cancelledAt
	}

	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// takenSeats returns the requested seats already held by one of active.
func takenSeats(active []Booking, requested []string) []string {
	held := make(map[string]bool)
	for _, b := range active {
		for _, seat := range b.Seats {
			held[seat] = true
		}
	}
	var taken []string
	for _, seat := range requested {
		if held[seat] {
			taken = append(taken, seat)
		}
	}
	return taken
}

// Helper function to calculate total pages
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
