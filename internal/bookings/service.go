package bookings

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"buslane/internal/notifications"
	"buslane/internal/seatmap"
	"buslane/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrScheduleNotFound  = errors.New("schedule not found")
	ErrScheduleDeparted  = errors.New("schedule has already departed")
	ErrDuplicateSeat     = errors.New("seat listed more than once")
	ErrUnknownSeat       = errors.New("seat does not exist on this bus")
	ErrPriceMismatch     = errors.New("total price does not match the fare")
	ErrSeatAlreadyBooked = errors.New("seat already booked")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrInvalidTransition = errors.New("booking status change not allowed")
	ErrStatusConflict    = errors.New("booking status changed concurrently")
	ErrForbidden         = errors.New("booking belongs to another user")
)

// priceTolerance absorbs float rounding of per-seat fares.
const priceTolerance = 0.005

// SeatConflictError names the seats another active booking already holds.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat already booked: %s", strings.Join(e.Seats, ", "))
}

func (e *SeatConflictError) Unwrap() error {
	return ErrSeatAlreadyBooked
}

// ScheduleCatalog resolves the fare and seat inventory of a schedule.
type ScheduleCatalog interface {
	SeatPlan(ctx context.Context, scheduleID string) (*SeatPlan, error)
}

// HolderDirectory resolves booking owners to display names.
type HolderDirectory interface {
	FullNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

type Service interface {
	Checkout(ctx context.Context, userID string, req *CheckoutRequest) (*BookingResponse, error)
	GetBooking(ctx context.Context, id, userID string, isAdmin bool) (*BookingResponse, error)
	ListUserBookings(ctx context.Context, userID string, query BookingListQuery) (*PaginatedBookings, error)
	CancelBooking(ctx context.Context, id, userID string) (*BookingResponse, error)

	// Admin
	ListScheduleBookings(ctx context.Context, scheduleID string) ([]ScheduleBookingResponse, error)
	UpdateStatus(ctx context.Context, id string, next Status) (*BookingResponse, error)
}

type service struct {
	repo      Repository
	schedules ScheduleCatalog
	holders   HolderDirectory
	publisher notifications.Publisher
	log       *logger.Logger
	now       func() time.Time
}

func NewService(repo Repository, schedules ScheduleCatalog, holders HolderDirectory, publisher notifications.Publisher) Service {
	return &service{
		repo:      repo,
		schedules: schedules,
		holders:   holders,
		publisher: publisher,
		log:       logger.GetDefault(),
		now:       time.Now,
	}
}

func (s *service) Checkout(ctx context.Context, userID string, req *CheckoutRequest) (*BookingResponse, error) {
	seats, err := normalizeSeats(req.Seats)
	if err != nil {
		return nil, err
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	scheduleID, err := uuid.Parse(req.ScheduleID)
	if err != nil {
		return nil, ErrScheduleNotFound
	}

	plan, err := s.schedules.SeatPlan(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}

	if !plan.Departure.IsZero() && !s.now().Before(plan.Departure) {
		return nil, ErrScheduleDeparted
	}

	for _, seat := range seats {
		if !plan.Inclusion.IncludedLabel(seat) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSeat, seat)
		}
	}

	expected := float64(len(seats)) * plan.Price
	if math.Abs(req.TotalPrice-expected) > priceTolerance {
		return nil, fmt.Errorf("%w: expected %.2f, got %.2f", ErrPriceMismatch, expected, req.TotalPrice)
	}

	ref, err := generateBookingReference(s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	booking := &Booking{
		UserID:     uid,
		ScheduleID: scheduleID,
		Seats:      seats,
		TotalPrice: expected,
		Status:     StatusPending,
		BookingRef: ref,
	}
	if err := s.repo.CreateWithSeatGuard(ctx, booking); err != nil {
		return nil, err
	}

	s.log.LogBookingCreated(ctx, booking.ID.String(), req.ScheduleID, userID, seats)
	s.publish(ctx, notifications.BookingEventCreated, booking, "")

	return toBookingResponse(booking), nil
}

func (s *service) GetBooking(ctx context.Context, id, userID string, isAdmin bool) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && booking.UserID.String() != userID {
		return nil, ErrForbidden
	}
	return toBookingResponse(booking), nil
}

func (s *service) ListUserBookings(ctx context.Context, userID string, query BookingListQuery) (*PaginatedBookings, error) {
	if query.Status != "" && !Status(query.Status).IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, query.Status)
	}

	bookings, total, err := s.repo.ListByUser(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, *toBookingResponse(&bookings[i]))
	}
	return &PaginatedBookings{
		Bookings:   out,
		Total:      total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: CalculateTotalPages(total, query.Limit),
	}, nil
}

// CancelBooking lets the owner release the seats of an active booking before
// the bus departs.
func (s *service) CancelBooking(ctx context.Context, id, userID string) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID.String() != userID {
		return nil, ErrForbidden
	}

	plan, err := s.schedules.SeatPlan(ctx, booking.ScheduleID.String())
	if err != nil {
		return nil, err
	}
	if !plan.Departure.IsZero() && !s.now().Before(plan.Departure) {
		return nil, ErrScheduleDeparted
	}
	return s.transition(ctx, booking, StatusCancelled)
}

func (s *service) ListScheduleBookings(ctx context.Context, scheduleID string) ([]ScheduleBookingResponse, error) {
	bookings, err := s.repo.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule bookings: %w", err)
	}

	names, err := s.holders.FullNames(ctx, userIDs(bookings))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve booking holders: %w", err)
	}

	out := make([]ScheduleBookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, ScheduleBookingResponse{
			ID:         b.ID.String(),
			BookingRef: b.BookingRef,
			Seats:      b.Seats,
			Status:     b.Status,
			TotalPrice: b.TotalPrice,
			User:       HolderResponse{FullName: names[b.UserID.String()]},
			CreatedAt:  b.CreatedAt,
		})
	}
	return out, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, next Status) (*BookingResponse, error) {
	if !next.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, next)
	}
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, booking, next)
}

func (s *service) transition(ctx context.Context, booking *Booking, next Status) (*BookingResponse, error) {
	prev := booking.Status
	if !prev.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, next)
	}

	now := s.now().UTC()
	var cancelledAt *time.Time
	if next == StatusCancelled {
		cancelledAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, booking.ID.String(), prev, next, cancelledAt); err != nil {
		return nil, err
	}

	booking.Status = next
	booking.UpdatedAt = now
	booking.CancelledAt = cancelledAt

	s.log.LogBookingStatusChanged(ctx, booking.ID.String(), prev.String(), next.String())
	s.publish(ctx, notifications.BookingEventStatusChanged, booking, prev)

	return toBookingResponse(booking), nil
}

// publish is best effort: the booking is already committed.
func (s *service) publish(ctx context.Context, eventType notifications.BookingEventType, booking *Booking, prev Status) {
	event := notifications.NewBookingEvent(eventType)
	event.BookingID = booking.ID.String()
	event.BookingRef = booking.BookingRef
	event.ScheduleID = booking.ScheduleID.String()
	event.UserID = booking.UserID.String()
	event.Seats = booking.Seats
	event.TotalPrice = booking.TotalPrice
	event.Status = booking.Status.String()
	event.PreviousStatus = prev.String()

	if err := s.publisher.PublishBookingEvent(ctx, event); err != nil {
		s.log.WithError(err).Error("failed to publish booking event", "booking_id", event.BookingID, "type", eventType)
	}
}

// normalizeSeats trims and upper-cases labels and rejects empty or repeated ones.
func normalizeSeats(seats []string) ([]string, error) {
	if len(seats) == 0 {
		return nil, seatmap.ErrNoSeatsSelected
	}
	seen := make(map[string]bool, len(seats))
	out := make([]string, 0, len(seats))
	for _, raw := range seats {
		seat := strings.ToUpper(strings.TrimSpace(raw))
		if seat == "" {
			return nil, fmt.Errorf("%w: empty label", ErrUnknownSeat)
		}
		if seen[seat] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSeat, seat)
		}
		seen[seat] = true
		out = append(out, seat)
	}
	return out, nil
}

func userIDs(bookings []Booking) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, b := range bookings {
		id := b.UserID.String()
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// generateBookingReference -> "BUS-20260314-QWERTY"
func generateBookingReference(at time.Time) (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)
	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}
	return fmt.Sprintf("BUS-%s-%s", at.Format("20060102"), string(randomPart)), nil
}
