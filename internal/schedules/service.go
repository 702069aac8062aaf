package schedules

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"buslane/internal/bookings"
	"buslane/internal/buses"
	"buslane/internal/seatmap"
	"buslane/internal/shared/constants"
	"buslane/pkg/cache"
	"buslane/pkg/logger"

	"github.com/google/uuid"
)

var (
	// ErrScheduleNotFound is shared with checkout so both report a missing
	// schedule the same way.
	ErrScheduleNotFound    = bookings.ErrScheduleNotFound
	ErrRouteNotFound       = errors.New("route not found")
	ErrRouteExists         = errors.New("route already exists")
	ErrInvalidSchedule     = errors.New("invalid schedule")
	ErrInvalidSearchDate   = errors.New("date must be formatted as YYYY-MM-DD")
	ErrLayoutFetchFailed   = errors.New("failed to load bus layout")
	ErrBookingsFetchFailed = errors.New("failed to load schedule bookings")
)

// BusCatalog resolves the bus and seat inclusion a schedule runs with.
type BusCatalog interface {
	LoadInclusion(ctx context.Context, id string) (*buses.Bus, *seatmap.Inclusion, error)
}

// BookingSource lists the bookings recorded against a schedule.
type BookingSource interface {
	RecordsForSchedule(ctx context.Context, scheduleID string) ([]seatmap.BookingRecord, error)
}

type Service interface {
	CreateRoute(ctx context.Context, req *CreateRouteRequest) (*RouteResponse, error)
	ListRoutes(ctx context.Context) ([]RouteResponse, error)

	CreateSchedule(ctx context.Context, req *CreateScheduleRequest) (*ScheduleResponse, error)
	GetSchedule(ctx context.Context, id string) (*ScheduleResponse, error)
	SearchSchedules(ctx context.Context, query *SearchQuery) ([]ScheduleResponse, error)

	// Seat map readers, derived from live bookings on every call
	SeatMap(ctx context.Context, id string) (*SeatMapResponse, error)
	Occupancy(ctx context.Context, id string) (*OccupancyResponse, error)
	SeatStatuses(ctx context.Context, id string) (*SeatStatuses, error)

	// SeatPlan implements bookings.ScheduleCatalog.
	SeatPlan(ctx context.Context, id string) (*bookings.SeatPlan, error)
}

type service struct {
	repo     Repository
	buses    BusCatalog
	bookings BookingSource
	cache    cache.Service
	log      *logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, busCatalog BusCatalog, bookingSource BookingSource, cacheService cache.Service) Service {
	return &service{
		repo:     repo,
		buses:    busCatalog,
		bookings: bookingSource,
		cache:    cacheService,
		log:      logger.GetDefault(),
		now:      time.Now,
	}
}

func (s *service) CreateRoute(ctx context.Context, req *CreateRouteRequest) (*RouteResponse, error) {
	source := strings.TrimSpace(req.Source)
	destination := strings.TrimSpace(req.Destination)
	if source == "" || destination == "" || strings.EqualFold(source, destination) {
		return nil, fmt.Errorf("%w: source and destination must differ", ErrInvalidSchedule)
	}

	existing, err := s.repo.GetRouteByPair(ctx, source, destination)
	if err != nil && !errors.Is(err, ErrRouteNotFound) {
		return nil, fmt.Errorf("failed to check route: %w", err)
	}
	if existing != nil {
		return nil, ErrRouteExists
	}

	route := &Route{Source: source, Destination: destination, DistanceKm: req.DistanceKm}
	if err := s.repo.CreateRoute(ctx, route); err != nil {
		return nil, fmt.Errorf("failed to create route: %w", err)
	}

	if err := s.cache.Delete(ctx, constants.CACHE_KEY_ROUTES_ALL); err != nil {
		s.log.WithError(err).Warn("failed to invalidate routes cache")
	}

	resp := toRouteResponse(route)
	return &resp, nil
}

func (s *service) ListRoutes(ctx context.Context) ([]RouteResponse, error) {
	var routes []RouteResponse
	err := s.cache.GetOrSet(ctx, constants.CACHE_KEY_ROUTES_ALL, constants.TTL_ROUTES_ALL, func() (interface{}, error) {
		rows, err := s.repo.ListRoutes(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]RouteResponse, 0, len(rows))
		for i := range rows {
			out = append(out, toRouteResponse(&rows[i]))
		}
		return out, nil
	}, &routes)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	return routes, nil
}

func (s *service) CreateSchedule(ctx context.Context, req *CreateScheduleRequest) (*ScheduleResponse, error) {
	if !req.Arrival.After(req.Departure) {
		return nil, fmt.Errorf("%w: arrival must be after departure", ErrInvalidSchedule)
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidSchedule)
	}

	route, err := s.repo.GetRouteByID(ctx, req.RouteID)
	if err != nil {
		return nil, err
	}
	// a bus without a layout has nothing to sell
	bus, _, err := s.buses.LoadInclusion(ctx, req.BusID)
	if err != nil {
		return nil, err
	}

	schedule := &Schedule{
		RouteID:       route.ID,
		BusID:         bus.ID,
		DepartureTime: req.Departure.UTC(),
		ArrivalTime:   req.Arrival.UTC(),
		Price:         req.Price,
	}
	if err := s.repo.CreateSchedule(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}
	schedule.Route = *route

	if err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_SCHEDULES_SEARCH); err != nil {
		s.log.WithError(err).Warn("failed to invalidate schedule search cache")
	}
	s.log.InfoWithContext(ctx, "Schedule Created", map[string]interface{}{
		"schedule_id": schedule.ID.String(),
		"route_id":    route.ID.String(),
		"bus_id":      bus.ID.String(),
	})

	resp := toScheduleResponse(schedule, bus)
	return &resp, nil
}

func (s *service) GetSchedule(ctx context.Context, id string) (*ScheduleResponse, error) {
	schedule, err := s.repo.GetScheduleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	bus, _, err := s.buses.LoadInclusion(ctx, schedule.BusID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLayoutFetchFailed, err)
	}
	resp := toScheduleResponse(schedule, bus)
	return &resp, nil
}

func (s *service) SearchSchedules(ctx context.Context, query *SearchQuery) ([]ScheduleResponse, error) {
	from, to, err := s.searchWindow(query.Date)
	if err != nil {
		return nil, err
	}
	source := strings.ToLower(strings.TrimSpace(query.Source))
	destination := strings.ToLower(strings.TrimSpace(query.Destination))

	var results []ScheduleResponse
	key := constants.BuildScheduleSearchKey(source, destination, from.Format(time.DateOnly))
	err = s.cache.GetOrSet(ctx, key, constants.TTL_SCHEDULES_SEARCH, func() (interface{}, error) {
		rows, err := s.repo.SearchSchedules(ctx, source, destination, from, to)
		if err != nil {
			return nil, err
		}
		out := make([]ScheduleResponse, 0, len(rows))
		for i := range rows {
			bus, _, err := s.buses.LoadInclusion(ctx, rows[i].BusID.String())
			if err != nil {
				s.log.WithError(err).Warn("skipping schedule without a usable bus", "schedule_id", rows[i].ID.String())
				continue
			}
			out = append(out, toScheduleResponse(&rows[i], bus))
		}
		return out, nil
	}, &results)
	if err != nil {
		return nil, fmt.Errorf("failed to search schedules: %w", err)
	}
	return results, nil
}

// searchWindow covers the whole UTC day when a date is given, otherwise the
// next week from now.
func (s *service) searchWindow(date string) (time.Time, time.Time, error) {
	if date == "" {
		from := s.now().UTC().Truncate(24 * time.Hour)
		return from, from.AddDate(0, 0, 7), nil
	}
	day, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidSearchDate
	}
	return day, day.AddDate(0, 0, 1), nil
}

// seatView gathers what every seat map reader needs: the schedule, its bus
// and inclusion, and the bookings reconciled onto them.
type seatView struct {
	schedule  *Schedule
	bus       *buses.Bus
	inclusion *seatmap.Inclusion
	records   []seatmap.BookingRecord
	state     seatmap.OccupancyState
}

func (s *service) loadSeatView(ctx context.Context, id string) (*seatView, error) {
	schedule, err := s.repo.GetScheduleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	bus, inclusion, err := s.buses.LoadInclusion(ctx, schedule.BusID.String())
	if err != nil {
		s.log.ErrorWithContext(ctx, "seat map layout fetch failed", err, map[string]interface{}{"schedule_id": id})
		return nil, fmt.Errorf("%w: %v", ErrLayoutFetchFailed, err)
	}

	records, err := s.bookings.RecordsForSchedule(ctx, schedule.ID.String())
	if err != nil {
		s.log.ErrorWithContext(ctx, "seat map bookings fetch failed", err, map[string]interface{}{"schedule_id": id})
		return nil, fmt.Errorf("%w: %v", ErrBookingsFetchFailed, err)
	}

	state := seatmap.Reconcile(inclusion, records)
	if len(state.Unplaced) > 0 {
		s.log.Warn("bookings reference seats outside the layout",
			"schedule_id", id, "seats", state.Unplaced)
	}

	return &seatView{
		schedule:  schedule,
		bus:       bus,
		inclusion: inclusion,
		records:   records,
		state:     state,
	}, nil
}

func (v *seatView) scheduleResponse() ScheduleResponse {
	resp := toScheduleResponse(v.schedule, v.bus)
	available := v.state.AvailableCount()
	resp.Bus.AvailableSeats = &available
	return resp
}

func (s *service) SeatMap(ctx context.Context, id string) (*SeatMapResponse, error) {
	view, err := s.loadSeatView(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SeatMapResponse{
		Schedule: view.scheduleResponse(),
		Layout:   toLayoutView(view.inclusion, seatmap.PickerGrid(view.inclusion, view.state)),
	}, nil
}

func (s *service) Occupancy(ctx context.Context, id string) (*OccupancyResponse, error) {
	view, err := s.loadSeatView(ctx, id)
	if err != nil {
		return nil, err
	}

	list := make([]OccupancyBooking, 0, len(view.records))
	for _, r := range view.records {
		list = append(list, OccupancyBooking{
			ID:     r.ID,
			Seats:  r.Seats,
			Status: r.Status,
			User:   HolderView{FullName: r.HolderName},
		})
	}

	return &OccupancyResponse{
		Schedule:       view.scheduleResponse(),
		Layout:         toLayoutView(view.inclusion, seatmap.OccupancyGrid(view.inclusion, view.state)),
		Bookings:       list,
		BookedSeats:    view.state.BookedCount(),
		AvailableSeats: view.state.AvailableCount(),
		Unplaced:       view.state.Unplaced,
	}, nil
}

func (s *service) SeatStatuses(ctx context.Context, id string) (*SeatStatuses, error) {
	view, err := s.loadSeatView(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SeatStatuses{
		ScheduleID: view.schedule.ID.String(),
		Price:      view.schedule.Price,
		Departure:  view.schedule.DepartureTime,
		Statuses:   view.state.Statuses(),
	}, nil
}

func (s *service) SeatPlan(ctx context.Context, id string) (*bookings.SeatPlan, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrScheduleNotFound
	}
	schedule, err := s.repo.GetScheduleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	_, inclusion, err := s.buses.LoadInclusion(ctx, schedule.BusID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLayoutFetchFailed, err)
	}
	return &bookings.SeatPlan{
		ScheduleID: schedule.ID.String(),
		Price:      schedule.Price,
		Departure:  schedule.DepartureTime,
		Inclusion:  inclusion,
	}, nil
}
