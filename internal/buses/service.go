package buses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"buslane/internal/seatmap"
	"buslane/internal/shared/constants"
	"buslane/pkg/cache"
	"buslane/pkg/logger"
)

var (
	ErrBusNotFound         = errors.New("bus not found")
	ErrBusNumberTaken      = errors.New("bus number already registered")
	ErrInvalidBusType      = errors.New("invalid bus type")
	ErrLayoutNotConfigured = errors.New("bus has no seat layout")
	ErrTotalSeatsMismatch  = errors.New("total seats does not match the included seats")
)

type Service interface {
	CreateBus(ctx context.Context, req *CreateBusRequest) (*BusResponse, error)
	GetBus(ctx context.Context, id string) (*BusResponse, error)
	ListBuses(ctx context.Context) ([]BusResponse, error)

	// Layout editor
	PreviewLayout(spec seatmap.LayoutSpec) (*LayoutResponse, error)
	GetLayout(ctx context.Context, id string) (*LayoutResponse, error)
	UpdateLayout(ctx context.Context, id string, req *UpdateLayoutRequest) (*LayoutResponse, error)

	// LoadInclusion serves the seat map readers from the layout cache.
	LoadInclusion(ctx context.Context, id string) (*Bus, *seatmap.Inclusion, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	log   *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{
		repo:  repo,
		cache: cacheService,
		log:   logger.GetDefault(),
	}
}

func (s *service) CreateBus(ctx context.Context, req *CreateBusRequest) (*BusResponse, error) {
	if !req.Type.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBusType, req.Type)
	}

	number := strings.ToUpper(strings.TrimSpace(req.Number))
	existing, err := s.repo.GetByNumber(ctx, number)
	if err != nil && !errors.Is(err, ErrBusNotFound) {
		return nil, fmt.Errorf("failed to check bus number: %w", err)
	}
	if existing != nil {
		return nil, ErrBusNumberTaken
	}

	bus := &Bus{
		Number:   number,
		Type:     req.Type,
		Features: req.Features,
	}
	if req.Layout != nil {
		inclusion, err := buildInclusion(req.Layout)
		if err != nil {
			return nil, err
		}
		bus.applyLayout(req.Layout.Spec(), inclusion)
	}

	if err := s.repo.Create(ctx, bus); err != nil {
		return nil, fmt.Errorf("failed to create bus: %w", err)
	}

	if bus.HasLayout() {
		s.log.LogLayoutUpdated(ctx, bus.ID.String(), bus.TotalSeats)
	}
	resp := toBusResponse(bus)
	return &resp, nil
}

func (s *service) GetBus(ctx context.Context, id string) (*BusResponse, error) {
	var bus Bus
	err := s.cache.GetOrSet(ctx, constants.BuildBusDetailKey(id), constants.TTL_BUS_DETAIL, func() (interface{}, error) {
		return s.repo.GetByID(ctx, id)
	}, &bus)
	if err != nil {
		return nil, err
	}
	resp := toBusResponse(&bus)
	return &resp, nil
}

func (s *service) ListBuses(ctx context.Context) ([]BusResponse, error) {
	buses, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list buses: %w", err)
	}
	out := make([]BusResponse, 0, len(buses))
	for i := range buses {
		out = append(out, toBusResponse(&buses[i]))
	}
	return out, nil
}

// PreviewLayout generates a fresh grid with every seat included, the state
// the editor starts from after pressing generate.
func (s *service) PreviewLayout(spec seatmap.LayoutSpec) (*LayoutResponse, error) {
	layout, err := seatmap.Generate(spec)
	if err != nil {
		return nil, err
	}
	inclusion := seatmap.NewInclusion(layout)
	inclusion.SelectAll()
	return toLayoutResponse("", inclusion), nil
}

func (s *service) GetLayout(ctx context.Context, id string) (*LayoutResponse, error) {
	bus, inclusion, err := s.LoadInclusion(ctx, id)
	if err != nil {
		return nil, err
	}
	return toLayoutResponse(bus.ID.String(), inclusion), nil
}

func (s *service) UpdateLayout(ctx context.Context, id string, req *UpdateLayoutRequest) (*LayoutResponse, error) {
	bus, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	inclusion, err := buildInclusion(req)
	if err != nil {
		return nil, err
	}

	bus.applyLayout(req.Spec(), inclusion)
	if err := s.repo.SaveLayout(ctx, bus); err != nil {
		return nil, fmt.Errorf("failed to save layout: %w", err)
	}

	s.invalidate(ctx, id)
	s.log.LogLayoutUpdated(ctx, id, bus.TotalSeats)

	return toLayoutResponse(id, inclusion), nil
}

func (s *service) LoadInclusion(ctx context.Context, id string) (*Bus, *seatmap.Inclusion, error) {
	var bus Bus
	err := s.cache.GetOrSet(ctx, constants.BuildBusLayoutKey(id), constants.TTL_BUS_LAYOUT, func() (interface{}, error) {
		return s.repo.GetByID(ctx, id)
	}, &bus)
	if err != nil {
		return nil, nil, err
	}

	inclusion, err := bus.Inclusion()
	if err != nil {
		return nil, nil, err
	}
	return &bus, inclusion, nil
}

func (s *service) invalidate(ctx context.Context, id string) {
	for _, key := range []string{constants.BuildBusLayoutKey(id), constants.BuildBusDetailKey(id)} {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.WithError(err).Warn("failed to invalidate bus cache", "key", key)
		}
	}
}

// buildInclusion regenerates the layout server side and checks the submitted
// grid and total against it.
func buildInclusion(req *UpdateLayoutRequest) (*seatmap.Inclusion, error) {
	layout, err := seatmap.Generate(req.Spec())
	if err != nil {
		return nil, err
	}
	inclusion, err := seatmap.InclusionFromGrid(layout, req.SeatLayout)
	if err != nil {
		return nil, err
	}
	if got := inclusion.TotalSeats(); req.TotalSeats != got {
		return nil, fmt.Errorf("%w: submitted %d, layout has %d", ErrTotalSeatsMismatch, req.TotalSeats, got)
	}
	return inclusion, nil
}
