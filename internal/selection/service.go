package selection

import (
	"context"
	"errors"
	"strings"
	"time"

	"buslane/internal/bookings"
	"buslane/internal/schedules"
	"buslane/internal/seatmap"
	"buslane/internal/shared/config"
	"buslane/pkg/logger"

	"github.com/google/uuid"
)

// SeatSource reads the live seat statuses of a schedule.
type SeatSource interface {
	SeatStatuses(ctx context.Context, scheduleID string) (*schedules.SeatStatuses, error)
}

// CheckoutSubmitter turns a handed off selection into a booking.
type CheckoutSubmitter interface {
	Checkout(ctx context.Context, userID string, req *bookings.CheckoutRequest) (*bookings.BookingResponse, error)
}

type Service interface {
	Open(ctx context.Context, userID, scheduleID string) (*SelectionResponse, error)
	Get(ctx context.Context, userID, id string) (*SelectionResponse, error)
	Toggle(ctx context.Context, userID, id, seat string) (*ToggleResponse, error)
	Refresh(ctx context.Context, userID, id string) (*SelectionResponse, error)
	Checkout(ctx context.Context, userID, id string) (*bookings.BookingResponse, error)
	Discard(ctx context.Context, userID, id string) error
}

type service struct {
	store    Store
	seats    SeatSource
	checkout CheckoutSubmitter
	cfg      config.SelectionConfig
	log      *logger.Logger
	now      func() time.Time
}

func NewService(store Store, seats SeatSource, checkout CheckoutSubmitter, cfg config.SelectionConfig) Service {
	return &service{
		store:    store,
		seats:    seats,
		checkout: checkout,
		cfg:      cfg,
		log:      logger.GetDefault(),
		now:      time.Now,
	}
}

func (s *service) Open(ctx context.Context, userID, scheduleID string) (*SelectionResponse, error) {
	seats, err := s.seats.SeatStatuses(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if !now.Before(seats.Departure) {
		return nil, bookings.ErrScheduleDeparted
	}

	session := seatmap.NewSession(seats.ScheduleID, seats.Price, s.cfg.MaxSeats).
		WithDebounceWindow(s.cfg.DebounceWindow)
	sel := &Selection{
		ID:        uuid.NewString(),
		UserID:    userID,
		Session:   session.Snapshot(),
		Statuses:  seats.Statuses,
		Departure: seats.Departure,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.TTL),
	}
	if err := s.store.Create(ctx, sel, s.cfg.TTL); err != nil {
		return nil, err
	}

	s.log.DebugWithContext(ctx, "Selection Opened", map[string]interface{}{
		"selection_id": sel.ID,
		"schedule_id":  seats.ScheduleID,
		"user_id":      userID,
	})
	return toSelectionResponse(sel, nil), nil
}

func (s *service) Get(ctx context.Context, userID, id string) (*SelectionResponse, error) {
	sel, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return toSelectionResponse(sel, nil), nil
}

// Toggle applies a click using the status snapshot. A rejected click returns
// the unchanged selection alongside the seat error.
func (s *service) Toggle(ctx context.Context, userID, id, seat string) (*ToggleResponse, error) {
	label := strings.ToUpper(strings.TrimSpace(seat))
	at := s.now()

	var result seatmap.ToggleResult
	_, err := s.update(ctx, userID, id, func(sel *Selection) error {
		session := sel.restore()
		status, ok := sel.Statuses[label]
		if !ok {
			result = seatmap.ToggleResult{
				Action:   seatmap.ActionRejected,
				Label:    label,
				Selected: session.Selected(),
				Total:    session.Total(),
				State:    session.State(),
			}
			return &seatmap.SeatError{Label: label, Err: seatmap.ErrNotASeat}
		}
		var err error
		result, err = session.Toggle(label, status, at)
		if err != nil {
			return err
		}
		sel.Session = session.Snapshot()
		return nil
	})

	var seatErr *seatmap.SeatError
	if err != nil && !errors.As(err, &seatErr) {
		return nil, err
	}
	return &ToggleResponse{SelectionID: id, ToggleResult: result}, err
}

// Refresh reloads the seat statuses and releases selected seats that were
// booked since the selection was opened.
func (s *service) Refresh(ctx context.Context, userID, id string) (*SelectionResponse, error) {
	current, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	seats, err := s.seats.SeatStatuses(ctx, current.Session.ScheduleRef)
	if err != nil {
		return nil, err
	}

	var released []string
	sel, err := s.update(ctx, userID, id, func(sel *Selection) error {
		released = sel.applyStatuses(seats.Statuses)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSelectionResponse(sel, released), nil
}

// Checkout hands the selection to the booking flow. Seats lost to a
// concurrent booking are released from the selection so the user can pick again.
func (s *service) Checkout(ctx context.Context, userID, id string) (*bookings.BookingResponse, error) {
	sel, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	req, err := seatmap.Handoff(sel.restore())
	if err != nil {
		return nil, err
	}

	booking, err := s.checkout.Checkout(ctx, userID, &bookings.CheckoutRequest{
		ScheduleID: req.ScheduleID,
		Seats:      req.Seats,
		TotalPrice: req.TotalPrice,
	})
	if err != nil {
		var conflict *bookings.SeatConflictError
		if errors.As(err, &conflict) {
			s.releaseSeats(ctx, userID, id, conflict.Seats)
		}
		return nil, err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.log.WithError(err).Warn("failed to discard checked out selection", "selection_id", id)
	}
	return booking, nil
}

func (s *service) Discard(ctx context.Context, userID, id string) error {
	if _, err := s.load(ctx, userID, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *service) releaseSeats(ctx context.Context, userID, id string, labels []string) {
	_, err := s.update(ctx, userID, id, func(sel *Selection) error {
		sel.markBooked(labels)
		return nil
	})
	if err != nil {
		s.log.WithError(err).Warn("failed to release conflicting seats", "selection_id", id)
	}
}

// load hides other users' selections behind not found.
func (s *service) load(ctx context.Context, userID, id string) (*Selection, error) {
	sel, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sel.UserID != userID {
		return nil, ErrSelectionNotFound
	}
	return sel, nil
}

func (s *service) update(ctx context.Context, userID, id string, fn func(*Selection) error) (*Selection, error) {
	now := s.now().UTC()
	return s.store.Update(ctx, id, s.cfg.TTL, func(sel *Selection) error {
		if sel.UserID != userID {
			return ErrSelectionNotFound
		}
		if err := fn(sel); err != nil {
			return err
		}
		sel.ExpiresAt = now.Add(s.cfg.TTL)
		return nil
	})
}
