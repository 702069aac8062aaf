package schedules

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateRoute(ctx context.Context, route *Route) error
	GetRouteByID(ctx context.Context, id string) (*Route, error)
	GetRouteByPair(ctx context.Context, source, destination string) (*Route, error)
	ListRoutes(ctx context.Context) ([]Route, error)

	CreateSchedule(ctx context.Context, schedule *Schedule) error
	GetScheduleByID(ctx context.Context, id string) (*Schedule, error)
	SearchSchedules(ctx context.Context, source, destination string, from, to time.Time) ([]Schedule, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateRoute(ctx context.Context, route *Route) error {
	return r.db.WithContext(ctx).Create(route).Error
}

func (r *repository) GetRouteByID(ctx context.Context, id string) (*Route, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrRouteNotFound
	}
	var route Route
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&route).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}
	return &route, nil
}

func (r *repository) GetRouteByPair(ctx context.Context, source, destination string) (*Route, error) {
	var route Route
	err := r.db.WithContext(ctx).
		Where("LOWER(source) = LOWER(?) AND LOWER(destination) = LOWER(?)", source, destination).
		First(&route).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}
	return &route, nil
}

func (r *repository) ListRoutes(ctx context.Context) ([]Route, error) {
	var routes []Route
	err := r.db.WithContext(ctx).Order("source ASC, destination ASC").Find(&routes).Error
	return routes, err
}

func (r *repository) CreateSchedule(ctx context.Context, schedule *Schedule) error {
	return r.db.WithContext(ctx).Omit("Route").Create(schedule).Error
}

func (r *repository) GetScheduleByID(ctx context.Context, id string) (*Schedule, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrScheduleNotFound
	}
	var schedule Schedule
	err := r.db.WithContext(ctx).Joins("Route").Where("schedules.id = ?", id).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *repository) SearchSchedules(ctx context.Context, source, destination string, from, to time.Time) ([]Schedule, error) {
	query := r.db.WithContext(ctx).Joins("Route").
		Where("schedules.departure_time >= ? AND schedules.departure_time < ?", from, to)
	if source != "" {
		query = query.Where(`LOWER("Route"."source") = LOWER(?)`, source)
	}
	if destination != "" {
		query = query.Where(`LOWER("Route"."destination") = LOWER(?)`, destination)
	}

	var schedules []Schedule
	err := query.Order("schedules.departure_time ASC").Find(&schedules).Error
	return schedules, err
}
